// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when the listening address is not host:port
	ErrInvalidAddress = errors.New("invalid api listening address")
	// ErrMissingCertificate is returned when tls is enabled without certificate or key
	ErrMissingCertificate = errors.New("tls requires a certificate and a key")
)

// ErrInvalidMethod is returned when a route uses an unsupported http method
type ErrInvalidMethod struct {
	Method string
	Path   string
}

func (e ErrInvalidMethod) Error() string {
	return fmt.Sprintf("http method %q of route %s is not supported", e.Method, e.Path)
}

// ErrCreateOpenapiSchema is returned when the openapi schema of a type cannot be generated
type ErrCreateOpenapiSchema struct {
	Name string
	Err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for %s: %v", e.Name, e.Err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.Err
}
