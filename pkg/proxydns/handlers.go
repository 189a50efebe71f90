// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxydns

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/api"
	"github.com/telekom/proxydns/pkg/resolver"
)

// HostsEntry is an address of the local hosts database
type HostsEntry struct {
	// Name is the requested hostname
	Name string `json:"name" yaml:"name"`
	// Type is the record type, A or AAAA
	Type string `json:"type" yaml:"type"`
	// Address is the address of the first matching entry
	Address string `json:"address" yaml:"address"`
}

func (p *ProxyDNS) routes() []api.Route {
	return []api.Route{
		{Path: "/v1/resolve", Method: http.MethodGet, Handler: p.handleResolve},
		{Path: "/v1/hosts", Method: http.MethodGet, Handler: p.handleHosts},
		{Path: "/openapi", Method: http.MethodGet, Handler: p.handleOpenAPI},
		{
			Path: "/metrics", Method: "*",
			Handler: func(w http.ResponseWriter, r *http.Request) {
				promhttp.HandlerFor(
					p.metrics.GetRegistry(),
					promhttp.HandlerOpts{Registry: p.metrics.GetRegistry()},
				).ServeHTTP(w, r)
			},
		},
	}
}

func (p *ProxyDNS) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	host := r.URL.Query().Get("host")
	if host == "" {
		api.WriteError(w, http.StatusBadRequest, "missing query parameter host")
		return
	}
	port := 0
	if raw := r.URL.Query().Get("port"); raw != "" {
		var err error
		port, err = strconv.Atoi(raw)
		if err != nil || port < 0 || port > 65535 {
			api.WriteError(w, http.StatusBadRequest, "port must be a number between 0 and 65535")
			return
		}
	}

	res, err := p.Resolve(ctx, host, port)
	if err != nil {
		log.DebugContext(ctx, "Resolution failed", "host", host, "error", err)
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (p *ProxyDNS) handleHosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if p.hosts == nil {
		api.WriteError(w, http.StatusNotFound, "hosts database is ignored")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		api.WriteError(w, http.StatusBadRequest, "missing query parameter name")
		return
	}
	typ := strings.ToUpper(r.URL.Query().Get("type"))
	if typ == "" {
		typ = dns.TypeToString[dns.TypeA]
	}

	addr, ok, err := p.hosts.Lookup(ctx, name, dns.StringToType[typ])
	switch {
	case errors.Is(err, resolver.ErrInvalidType), errors.Is(err, resolver.ErrInvalidName):
		api.WriteError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to look up hosts database", "name", name, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to read hosts database")
	case !ok:
		api.WriteError(w, http.StatusNotFound, "no hosts entry for "+name)
	default:
		api.WriteJSON(w, http.StatusOK, HostsEntry{Name: name, Type: typ, Address: addr.String()})
	}
}

func (p *ProxyDNS) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := p.openAPI()
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to create openapi document", "error", err)
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.Header.Get("Accept") == "application/json" {
		api.WriteJSON(w, http.StatusOK, doc)
		return
	}
	api.WriteYAML(w, http.StatusOK, doc)
}
