// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/miekg/dns"
)

var (
	// ErrInvalidAddress is returned when a resolver address is none of
	// IPv4, IPv4:port, IPv6 or [IPv6]:port
	ErrInvalidAddress = errors.New("invalid DNS address")
	// ErrInvalidName is returned when a hostname cannot be converted into a domain name
	ErrInvalidName = errors.New("invalid hostname")
	// ErrInvalidType is returned when an address lookup is requested for a type other than A or AAAA
	ErrInvalidType = errors.New("type can only be A or AAAA")
	// ErrTimeout is matched by transport errors caused by a timeout
	ErrTimeout = errors.New("timed out")
)

// ErrInvalidConfig is returned when the resolver configuration is invalid
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid resolver configuration field %q: %s", e.Field, e.Reason)
}

// ErrTransport is returned when a query could not be exchanged with the upstream resolver.
// It identifies the query so that failures can be correlated with upstream logs.
type ErrTransport struct {
	ID    uint16
	Name  string
	Qtype uint16
	Err   error
}

func newTransportError(query *dns.Msg, err error) *ErrTransport {
	e := &ErrTransport{ID: query.Id, Err: err}
	if len(query.Question) > 0 {
		e.Name = query.Question[0].Name
		e.Qtype = query.Question[0].Qtype
	}
	return e
}

func (e *ErrTransport) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("query %d for %s/%s timed out", e.ID, e.Name, dns.TypeToString[e.Qtype])
	}
	return fmt.Sprintf("query %d for %s/%s failed: %v", e.ID, e.Name, dns.TypeToString[e.Qtype], e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// Is reports ErrTimeout for timed out queries
func (e *ErrTransport) Is(target error) bool {
	return target == ErrTimeout && e.Timeout()
}

// Timeout reports whether the query timed out
func (e *ErrTransport) Timeout() bool {
	return isTimeout(e.Err)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
