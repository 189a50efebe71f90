// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxydns

import (
	"context"
	"fmt"
	"time"

	"github.com/telekom/proxydns/internal/logger"
)

const shutdownTimeout = time.Second * 90

// Run starts the api server and blocks until the context is done
// or a component fails
func (p *ProxyDNS) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	err := p.metrics.InitTracing(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if p.api != nil {
		go func() {
			p.cErr <- p.startupAPI(ctx)
		}()
	} else {
		log.InfoContext(ctx, "No api listening address configured, serving nothing")
	}

	for {
		select {
		case <-ctx.Done():
			p.shutdown(ctx)
		case err := <-p.cErr:
			if err != nil {
				log.Error("Non-recoverable error in proxydns component", "error", err)
				p.shutdown(ctx)
			}
		case <-p.cDone:
			log.InfoContext(ctx, "proxydns was shut down")
			return ErrFinalShutdown
		}
	}
}

// startupAPI registers the routes and serves the api
func (p *ProxyDNS) startupAPI(ctx context.Context) error {
	if err := p.api.RegisterRoutes(ctx, p.routes()...); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Error while registering routes", "error", err)
		return fmt.Errorf("failed to register routes: %w", err)
	}
	return p.api.Run(ctx)
}

// shutdown shuts down proxydns and all managed components gracefully.
// Errors of the components are logged.
func (p *ProxyDNS) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	p.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down proxydns")
		var sErrs ErrShutdown
		if p.api != nil {
			sErrs.errAPI = p.api.Shutdown(ctx)
		}
		sErrs.errMetrics = p.metrics.Shutdown(ctx)

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "errors", sErrs)
		}

		// Signal that shutdown is complete
		p.cDone <- struct{}{}
	})
}
