// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/config"
	"github.com/telekom/proxydns/pkg/resolver"
)

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "proxydns",
		Short: "proxydns, the hostname resolution of the proxy",
		Long: "proxydns resolves the hostnames requested through the proxy with a configurable\n" +
			"DNS resolver, optionally over HTTPS or with DNSSEC validation, and the local hosts database.",
		Version: version,
	}

	cobra.OnInitialize(func() {
		initConfig(cfgFile)
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.proxydns.yaml)")

	NewFlag("dns", "dns").String().Bind(rootCmd, "", "resolver: IPv4 or IPv6 address with optional port, or DNS-over-HTTPS URL")
	NewFlag("dns_preset", "dns-preset").String().Bind(rootCmd, string(resolver.PresetCustom),
		fmt.Sprintf("resolver: built-in resolver, one of %s", strings.Join(resolver.Presets(), ", ")))
	NewFlag("dnssec", "dnssec").Bool().Bind(rootCmd, false, "resolver: validate the DNSSEC signatures of plain DNS answers")
	NewFlag("allow_insecure", "allow-insecure").Bool().Bind(rootCmd, false, "resolver: allow DNS-over-HTTP without TLS")
	NewFlag("ignore_system_hosts", "ignore-system-hosts").Bool().Bind(rootCmd, false, "resolver: do not consult the hosts database")
	NewFlag("fallback", "fallback").Bool().Bind(rootCmd, true, "resolver: fall back to the system resolver if a hostname could not be resolved")
	NewFlag("timeout", "timeout").Duration().Bind(rootCmd, resolver.DefaultTimeout, "resolver: timeout of a single query")
	NewFlag("hosts_file", "hosts-file").String().Bind(rootCmd, "", "resolver: path of the hosts database (default is the platform's)")
	NewFlag("system.nameservers", "system-nameservers").StringSlice().Bind(rootCmd, nil, "system: nameservers replacing the ones of resolv.conf")
	NewFlag("system.searchPath", "system-search-path").StringSlice().Bind(rootCmd, nil, "system: search domains replacing the ones of resolv.conf")

	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	cmd := BuildCmd(version)

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func BuildCmd(version string) *cobra.Command {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdRun(version))
	cmd.AddCommand(NewCmdResolve(version))
	cmd.AddCommand(NewCmdConfig())
	return cmd
}

func initConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".proxydns" (without an extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".proxydns")
	}

	viper.SetOptions(viper.ExperimentalBindStruct())
	viper.SetEnvPrefix("proxydns")
	dotreplacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(dotreplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig parses and validates the startup configuration
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Error while validating the config", "error", err)
		return nil, fmt.Errorf("error while validating the config: %w", err)
	}
	return cfg, nil
}
