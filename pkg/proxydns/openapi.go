// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxydns

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/telekom/proxydns/pkg/api"
)

func schemaFor(name string, value any) (*openapi3.SchemaRef, error) {
	ref, err := openapi3gen.NewSchemaRefForValue(value, openapi3.Schemas{})
	if err != nil {
		return nil, api.ErrCreateOpenapiSchema{Name: name, Err: err}
	}
	return ref, nil
}

// openAPI describes the resolution endpoints
func (p *ProxyDNS) openAPI() (*openapi3.T, error) {
	resolution, err := schemaFor("resolution", Resolution{})
	if err != nil {
		return nil, err
	}
	entry, err := schemaFor("hosts entry", HostsEntry{})
	if err != nil {
		return nil, err
	}
	failure, err := schemaFor("error", api.ErrorResponse{})
	if err != nil {
		return nil, err
	}

	resolve := openapi3.NewOperation()
	resolve.OperationID = "resolve"
	resolve.Summary = "Resolves a hostname to a socket address"
	resolve.AddParameter(openapi3.NewQueryParameter("host").
		WithRequired(true).
		WithSchema(openapi3.NewStringSchema()))
	resolve.AddParameter(openapi3.NewQueryParameter("port").
		WithSchema(openapi3.NewIntegerSchema().WithMin(0).WithMax(65535)))
	resolve.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("The host was resolved").
		WithJSONSchemaRef(resolution))
	resolve.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
		WithDescription("Invalid query parameters").
		WithJSONSchemaRef(failure))
	resolve.AddResponse(http.StatusNotFound, openapi3.NewResponse().
		WithDescription("The host could not be resolved").
		WithJSONSchemaRef(failure))

	lookup := openapi3.NewOperation()
	lookup.OperationID = "lookupHosts"
	lookup.Summary = "Looks up a name in the local hosts database"
	lookup.AddParameter(openapi3.NewQueryParameter("name").
		WithRequired(true).
		WithSchema(openapi3.NewStringSchema()))
	lookup.AddParameter(openapi3.NewQueryParameter("type").
		WithSchema(openapi3.NewStringSchema().WithEnum("A", "AAAA")))
	lookup.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("The first matching hosts entry").
		WithJSONSchemaRef(entry))
	lookup.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
		WithDescription("Invalid name or type").
		WithJSONSchemaRef(failure))
	lookup.AddResponse(http.StatusNotFound, openapi3.NewResponse().
		WithDescription("No entry or hosts database ignored").
		WithJSONSchemaRef(failure))

	version := p.version
	if version == "" {
		version = "dev"
	}
	return &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "proxydns",
			Description: "Hostname resolution of the proxy",
			Version:     version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/v1/resolve", &openapi3.PathItem{Get: resolve}),
			openapi3.WithPath("/v1/hosts", &openapi3.PathItem{Get: lookup}),
		),
	}, nil
}
