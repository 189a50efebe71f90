// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"github.com/telekom/proxydns/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// dnsMessageType is the media type of DNS wire format messages
	dnsMessageType = "application/dns-message"
	// maxMessageSize is the largest possible DNS message
	maxMessageSize = dns.MaxMsgSize
)

// DoHResolver implements DNS-over-HTTPS with GET requests.
// HTTP is always a reliable full-message transport, so port, TCP,
// truncation and EDNS settings have no effect.
type DoHResolver struct {
	url        string
	timeout    time.Duration
	tsig       *TSIGKey
	client     *http.Client
	ownsClient bool
	tracer     trace.Tracer
}

// DoHOption configures a DoHResolver
type DoHOption func(*DoHResolver)

// WithHTTPClient sends the requests with the given client.
// The client's transport is responsible for enforcing timeouts.
func WithHTTPClient(c *http.Client) DoHOption {
	return func(r *DoHResolver) {
		r.client = c
		r.ownsClient = false
	}
}

// NewDoHResolver creates a resolver for the DoH endpoint url, e.g. https://1.1.1.1/dns-query
func NewDoHResolver(url string, opts ...DoHOption) *DoHResolver {
	r := &DoHResolver{
		url:        url,
		ownsClient: true,
		tracer:     otel.Tracer("resolver.doh"),
	}
	r.SetTimeout(DefaultTimeout)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL returns the endpoint of the resolver
func (r *DoHResolver) URL() string {
	return r.url
}

// SetTimeout sets the connect timeout of the requests
func (r *DoHResolver) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
	if r.ownsClient {
		r.client = newHTTPClient(timeout)
	}
}

func (r *DoHResolver) SetTSIGKey(key *TSIGKey) {
	r.tsig = key
}

// SetPort has no effect, the port is part of the URL
func (r *DoHResolver) SetPort(int) {}

// SetTCP has no effect, HTTP always runs over a stream
func (r *DoHResolver) SetTCP(bool) {}

// SetIgnoreTruncation has no effect, HTTP responses are never truncated
func (r *DoHResolver) SetIgnoreTruncation(bool) {}

func (r *DoHResolver) SetEDNS(int, uint16, bool, ...dns.EDNS0) {}

// Send sends the query as GET request and decodes the response.
// A non-2xx HTTP status results in a SERVFAIL response, not an error.
func (r *DoHResolver) Send(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	log := logger.FromContext(ctx)
	q := query.Copy()
	ctx, span := r.tracer.Start(ctx, "Send", trace.WithAttributes(
		attribute.String("doh.url", r.url),
		attribute.Int("dns.id", int(q.Id)),
		attribute.String("dns.question", questionString(q)),
	))
	defer span.End()

	wire, mac, err := r.pack(q)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to pack query %d: %w", q.Id, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"?dns="+base64.RawURLEncoding.EncodeToString(wire), http.NoBody)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create DoH request: %w", err)
	}
	req.Header.Set("content-type", dnsMessageType)
	req.Header.Set("accept", dnsMessageType)

	resp, err := r.client.Do(req) //nolint:bodyclose // closed below
	if err != nil {
		tErr := newTransportError(q, err)
		span.RecordError(tErr)
		span.SetStatus(codes.Error, tErr.Error())
		log.DebugContext(ctx, "DoH request failed", "url", r.url, "error", tErr)
		return nil, tErr
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			log.DebugContext(ctx, "Failed to close DoH response body", "error", cErr)
		}
	}()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.DebugContext(ctx, "DoH server returned an error status, answering SERVFAIL",
			"url", r.url, "status", resp.StatusCode, "id", q.Id)
		span.SetStatus(codes.Error, resp.Status)
		return serverFailure(q), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize))
	if err != nil {
		tErr := newTransportError(q, err)
		span.SetStatus(codes.Error, tErr.Error())
		return nil, tErr
	}

	msg := new(dns.Msg)
	if err := msg.Unpack(body); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to unpack DoH response to query %d: %w", q.Id, err)
	}
	r.verifyTSIG(ctx, q, body, mac)
	span.SetAttributes(attribute.String("dns.rcode", dns.RcodeToString[msg.Rcode]))

	return msg, nil
}

// pack serializes the query, signing it if a TSIG key is set
func (r *DoHResolver) pack(q *dns.Msg) (wire []byte, mac string, err error) {
	if r.tsig != nil {
		return r.tsig.sign(q)
	}
	wire, err = q.Pack()
	return wire, "", err
}

// verifyTSIG logs whether the response signature matches.
// A mismatch does not fail the query, the caller decides what to do with unsigned data.
func (r *DoHResolver) verifyTSIG(ctx context.Context, q *dns.Msg, wire []byte, mac string) {
	if r.tsig == nil {
		return
	}
	result := "NOERROR"
	if err := r.tsig.verify(wire, mac); err != nil {
		result = err.Error()
	}
	logger.FromContext(ctx).DebugContext(ctx, "TSIG verify",
		"id", q.Id, "question", questionString(q), "result", result)
}

// serverFailure builds an empty SERVFAIL response to q
func serverFailure(q *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.Id = q.Id
	m.Response = true
	m.Opcode = q.Opcode
	m.Rcode = dns.RcodeServerFailure
	return m
}

func questionString(q *dns.Msg) string {
	if len(q.Question) == 0 {
		return ""
	}
	return q.Question[0].Name + "/" + dns.TypeToString[q.Question[0].Qtype]
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
