// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/telekom/proxydns/internal/helper"
	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/proxydns"
	"github.com/telekom/proxydns/pkg/resolver"
)

// ErrUnresolved is returned when at least one of the hostnames could not be resolved
var ErrUnresolved = errors.New("not all hostnames could be resolved")

// NewCmdResolve creates a new resolve command
func NewCmdResolve(version string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "resolve HOST...",
		Short: "Resolve hostnames like the proxy does",
		Long: "Resolves the hostnames with the configured resolver chain and prints the socket addresses.\n" +
			"Timed out queries are retried according to the retry configuration.",
		Args: cobra.MinimumNArgs(1),
		RunE: resolve(version, &port),
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port of the resolved socket addresses")
	NewFlag("retry.count", "retry-count").Int().Bind(cmd, 0, "retry: How often a timed out resolution is retried")
	NewFlag("retry.delay", "retry-delay").Duration().Bind(cmd, time.Second, "retry: The delay before the first retry, doubling with every further retry")

	return cmd
}

func resolve(version string, port *int) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := logger.NewContextWithLogger(cmd.Context())
		defer cancel()
		log := logger.FromContext(ctx)

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		p, err := proxydns.New(ctx, cfg, version)
		if err != nil {
			return fmt.Errorf("failed to set up proxydns: %w", err)
		}

		var resolutions []proxydns.Resolution
		var failed bool
		for _, host := range args {
			var res proxydns.Resolution
			resErr := helper.Retry(func(ctx context.Context) (rErr error) {
				res, rErr = p.Resolve(ctx, host, *port)
				return rErr
			}, cfg.Retry, isTimeout)(ctx)
			if resErr != nil {
				log.ErrorContext(ctx, "Failed to resolve host", "host", host, "error", resErr)
				failed = true
				continue
			}
			resolutions = append(resolutions, res)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer func() { _ = enc.Close() }()
		if err = enc.Encode(resolutions); err != nil {
			return fmt.Errorf("failed to write resolutions: %w", err)
		}

		if failed {
			return ErrUnresolved
		}
		return nil
	}
}

// isTimeout reports whether a resolution failed because the upstream did not answer in time
func isTimeout(err error) bool {
	return errors.Is(err, resolver.ErrTimeout)
}
