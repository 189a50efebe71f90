// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/proxydns"
)

// NewCmdRun creates a new run command
func NewCmdRun(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run proxydns",
		Long:  `Serves the resolution of proxydns through the API`,
		RunE:  run(version),
	}

	NewFlag("api.address", "api-address").String().Bind(cmd, ":8080", "api: The address the server is listening on")
	NewFlag("api.tls.enabled", "api-tls-enabled").Bool().Bind(cmd, false, "api: Serve the api over https")
	NewFlag("api.tls.certPath", "api-tls-cert-path").String().Bind(cmd, "", "api: The path to the tls certificate")
	NewFlag("api.tls.keyPath", "api-tls-key-path").String().Bind(cmd, "", "api: The path to the tls key")

	NewFlag("telemetry.enabled", "telemetry-enabled").Bool().Bind(cmd, false, "telemetry: Export traces of the resolutions")
	NewFlag("telemetry.exporter", "telemetry-exporter").String().Bind(cmd, "", "telemetry: The exporter of the traces, one of http, grpc, stdout or noop")
	NewFlag("telemetry.url", "telemetry-url").String().Bind(cmd, "", "telemetry: The url of the collector")
	NewFlag("telemetry.token", "telemetry-token").String().Bind(cmd, "", "telemetry: The token to authenticate with the collector")
	NewFlag("telemetry.sampleRatio", "telemetry-sample-ratio").Float64().Bind(cmd, 0, "telemetry: The share of resolutions to trace, 0 traces all")

	return cmd
}

// run is the entry point to start proxydns
func run(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
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

		cErr := make(chan error, 1)
		log.InfoContext(ctx, "Running proxydns", "version", version)
		go func() {
			cErr <- p.Run(ctx)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-sigChan:
			log.InfoContext(ctx, "Signal received, shutting down")
			cancel()
			<-cErr
			return nil
		case err := <-cErr:
			return err
		}
	}
}
