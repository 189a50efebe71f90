// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/proxydns/internal/logger"
)

//go:generate go tool moq -out api_moq.go . API
type API interface {
	// Run serves the api until the context is done or the server fails
	Run(ctx context.Context) error
	// Shutdown gracefully stops the server
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds the routes to the router
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
	tls    TLSConfig
}

// Config is the configuration of the api server
type Config struct {
	// ListeningAddress is the address the server listens on, e.g. :8080
	ListeningAddress string `yaml:"address" mapstructure:"address"`
	// Tls is the tls configuration of the server
	Tls TLSConfig `yaml:"tls" mapstructure:"tls"` //nolint:revive // matches the config key
}

// TLSConfig is the configuration for tls
type TLSConfig struct {
	// Enabled serves https instead of http
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// CertPath is the path to the certificate file
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
	// KeyPath is the path to the key file
	KeyPath string `yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks if the api configuration is valid
func (c *Config) Validate() error {
	if c.ListeningAddress == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListeningAddress); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if c.Tls.Enabled && (c.Tls.CertPath == "" || c.Tls.KeyPath == "") {
		return ErrMissingCertificate
	}
	return nil
}

// Enabled returns true if the api server should be started
func (c *Config) Enabled() bool {
	return c.ListeningAddress != ""
}

const (
	readHeaderTimeout = 5 * time.Second
	requestTimeout    = 30 * time.Second
)

// New creates a new api server
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{
			Addr:              cfg.ListeningAddress,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		router: r,
		tls:    cfg.Tls,
	}
}

// Run serves the api.
// It blocks until the context is done or the server fails.
func (a *api) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	cErr := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Serving API", "address", a.server.Addr, "tls", a.tls.Enabled)
		var err error
		if a.tls.Enabled {
			err = a.server.ListenAndServeTLS(a.tls.CertPath, a.tls.KeyPath)
		} else {
			err = a.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Failed to serve API", "error", err)
		}
		cErr <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed serving API: %w", ctx.Err())
	case err := <-cErr:
		if errors.Is(err, http.ErrServerClosed) {
			log.InfoContext(ctx, "API server closed")
			return nil
		}
		return fmt.Errorf("failed serving API: %w", err)
	}
}

// Shutdown gracefully stops the api server
func (a *api) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed shutting down API: %w", errors.Join(err, ctx.Err()))
	}
	return nil
}

// Route is a handler served at a path
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// RegisterRoutes sets up the middlewares and adds the routes to the router
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
		logger.Middleware(ctx),
	)

	for _, route := range routes {
		switch route.Method {
		case http.MethodGet:
			a.router.Get(route.Path, route.Handler)
		case http.MethodPost:
			a.router.Post(route.Path, route.Handler)
		case http.MethodPut:
			a.router.Put(route.Path, route.Handler)
		case http.MethodDelete:
			a.router.Delete(route.Path, route.Handler)
		case http.MethodPatch:
			a.router.Patch(route.Path, route.Handler)
		case "*":
			a.router.HandleFunc(route.Path, route.Handler)
		default:
			return ErrInvalidMethod{Method: route.Method, Path: route.Path}
		}
	}

	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Debug("Route not found")
		WriteError(w, http.StatusNotFound, "not found")
	})
	return nil
}
