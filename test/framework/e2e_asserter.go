// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/assert"
)

// e2eHttpAsserter is an HTTP asserter for end-to-end tests.
type e2eHttpAsserter struct {
	e2e    *E2E
	url    string
	want   any
	schema *openapi3.T
	router routers.Router
}

// HttpAssertion creates a new HTTP assertion for the given URL.
func (e *E2E) HttpAssertion(u string) *e2eHttpAsserter {
	return &e2eHttpAsserter{e2e: e, url: u}
}

// Assert asserts the status code and then runs schema and body validations.
func (a *e2eHttpAsserter) Assert(status int) {
	a.e2e.t.Helper()
	if !a.e2e.isRunning() {
		a.e2e.t.Fatal("e2eHttpAsserter.Assert must be called after E2E.Run")
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, a.url, http.NoBody)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.e2e.t.Errorf("Failed to get %s: %v", a.url, err)
		return
	}
	defer resp.Body.Close()

	assert.Equal(a.e2e.t, status, resp.StatusCode, "Unexpected status code for %s", a.url)
	a.e2e.t.Logf("Got status code %d for %s", resp.StatusCode, a.url)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		a.e2e.t.Errorf("Failed to read response body: %v", err)
		return
	}

	if a.schema != nil && a.router != nil {
		if err = a.assertSchema(req, resp.StatusCode, data); err != nil {
			a.e2e.t.Errorf("Response from %q does not match schema: %v", a.url, err)
		}
	}

	if a.want != nil && resp.StatusCode == http.StatusOK {
		want, mErr := json.Marshal(a.want)
		if mErr != nil {
			a.e2e.t.Fatalf("Failed to marshal expected body: %v", mErr)
		}
		assert.JSONEq(a.e2e.t, string(want), string(data), "Unexpected body for %s", a.url)
	}
}

// WithSchema fetches the OpenAPI schema and creates a router for response validation.
func (a *e2eHttpAsserter) WithSchema() *e2eHttpAsserter {
	a.e2e.t.Helper()
	schema, err := a.fetchSchema()
	if err != nil {
		a.e2e.t.Fatalf("Failed to fetch OpenAPI schema: %v", err)
	}

	router, err := gorillamux.NewRouter(schema)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create router from OpenAPI schema: %v", err)
	}

	a.schema = schema
	a.router = router
	return a
}

// WithBody sets the expected body of a successful response.
// It is compared as json.
func (a *e2eHttpAsserter) WithBody(want any) *e2eHttpAsserter {
	a.want = want
	return a
}

// fetchSchema retrieves the OpenAPI schema from the server.
func (a *e2eHttpAsserter) fetchSchema() (*openapi3.T, error) {
	ctx := context.Background()
	u, err := url.Parse(a.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.Path = "/openapi"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET OpenAPI schema: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI schema: %w", err)
	}

	loader := openapi3.NewLoader()
	schema, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema: %w", err)
	}

	if err = schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI schema validation error: %w", err)
	}

	return schema, nil
}

// assertSchema validates the response body against the OpenAPI schema.
func (a *e2eHttpAsserter) assertSchema(req *http.Request, status int, data []byte) error {
	route, _, err := a.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("failed to find route: %w", err)
	}

	responseRef := route.Operation.Responses.Status(status)
	if responseRef == nil || responseRef.Value == nil {
		return fmt.Errorf("no response defined in OpenAPI schema for status code %d", status)
	}

	mediaType := responseRef.Value.Content.Get("application/json")
	if mediaType == nil {
		return errors.New("no media type defined in OpenAPI schema for Content-Type 'application/json'")
	}

	var body map[string]any
	if err = json.NewDecoder(bytes.NewReader(data)).Decode(&body); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	// Validate the response body against the schema.
	if err = mediaType.Schema.Value.VisitJSON(body); err != nil {
		return fmt.Errorf("response body does not match schema: %w", err)
	}

	return nil
}
