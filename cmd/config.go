// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/config"
)

const redacted = "<redacted>"

// NewCmdConfig creates a new config command
func NewCmdConfig() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  `Prints the configuration merged from flags, environment and config file as yaml. Secrets are redacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := logger.NewContextWithLogger(cmd.Context())
			defer cancel()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer func() { _ = enc.Close() }()
			if err = enc.Encode(redact(*cfg)); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			return nil
		},
	}
}

// redact returns a copy of cfg without secrets
func redact(cfg config.Config) config.Config {
	if cfg.Resolver.TSIG != nil {
		key := *cfg.Resolver.TSIG
		key.Secret = redacted
		cfg.Resolver.TSIG = &key
	}
	if cfg.Telemetry.Token != "" {
		cfg.Telemetry.Token = redacted
	}
	return cfg
}
