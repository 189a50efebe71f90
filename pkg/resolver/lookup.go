// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// maxIterations limits the number of CNAME links followed in a lookup
const maxIterations = 16

// Status is the outcome of a lookup
type Status int

const (
	// StatusSuccessful means at least one address was found
	StatusSuccessful Status = iota
	// StatusUnrecoverable means the upstream refused or failed permanently
	StatusUnrecoverable
	// StatusTryAgain means the upstream failed temporarily or could not be reached
	StatusTryAgain
	// StatusHostNotFound means the name does not exist
	StatusHostNotFound
	// StatusTypeNotFound means the name exists but has no record of the requested type
	StatusTypeNotFound
)

func (s Status) String() string {
	switch s {
	case StatusSuccessful:
		return "successful"
	case StatusUnrecoverable:
		return "unrecoverable"
	case StatusTryAgain:
		return "try again"
	case StatusHostNotFound:
		return "host not found"
	case StatusTypeNotFound:
		return "type not found"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result of a lookup
type Result struct {
	// Status tells whether the lookup was successful
	Status Status
	// Name is the canonical name the addresses belong to
	Name string
	// Addrs are the addresses found, in answer order
	Addrs []netip.Addr
}

// Found reports whether the lookup produced an address
func (r Result) Found() bool {
	return r.Status == StatusSuccessful && len(r.Addrs) > 0
}

type lookupOptions struct {
	search []string
	ndots  int
}

// LookupOption configures a lookup
type LookupOption func(*lookupOptions)

// WithSearchPath appends the domains to relative names that cannot be resolved as they are
func WithSearchPath(domains ...string) LookupOption {
	return func(o *lookupOptions) {
		o.search = domains
	}
}

// WithNdots sets the number of dots a name needs to be tried as absolute name first
func WithNdots(ndots int) LookupOption {
	return func(o *lookupOptions) {
		o.ndots = ndots
	}
}

// Lookup resolves the A or AAAA records of host with r.
//
// A host that does not exist or has no addresses is reported through
// the status of the result, the error is only set if the upstream could
// not be reached or the host is not a valid name.
func Lookup(ctx context.Context, r Resolver, host string, qtype uint16, opts ...LookupOption) (Result, error) {
	if qtype != dns.TypeA && qtype != dns.TypeAAAA {
		return Result{}, ErrInvalidType
	}
	o := lookupOptions{ndots: 1}
	for _, opt := range opts {
		opt(&o)
	}

	name, err := NormalizeName(host)
	if err != nil {
		return Result{Status: StatusHostNotFound}, err
	}

	result := Result{Status: StatusHostNotFound}
	var lastErr error
	for _, candidate := range candidates(name, o) {
		res, err := lookupName(ctx, r, candidate, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		if res.Status == StatusSuccessful {
			return res, nil
		}
		if result.Status == StatusHostNotFound {
			result = res
		}
	}
	if lastErr != nil {
		return Result{Status: StatusTryAgain}, lastErr
	}
	return result, nil
}

// NormalizeName converts a hostname into its ASCII form.
// Internationalized names are converted with IDNA, ASCII names are only validated.
// The name keeps a trailing dot if it had one.
func NormalizeName(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" || host == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, host)
	}
	fqdn := dns.IsFqdn(host)
	ascii := strings.TrimSuffix(host, ".")
	if !isASCII(ascii) {
		var err error
		if ascii, err = idna.Lookup.ToASCII(ascii); err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidName, host, err)
		}
	}
	if fqdn {
		ascii += "."
	}
	if !validName(ascii) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, host)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// candidates returns the absolute names to query for name in order
func candidates(name string, o lookupOptions) []string {
	if dns.IsFqdn(name) || len(o.search) == 0 {
		return []string{dns.Fqdn(name)}
	}

	var searched []string
	for _, domain := range o.search {
		if domain = strings.Trim(domain, "."); domain != "" {
			searched = append(searched, dns.Fqdn(name+"."+domain))
		}
	}
	if strings.Count(name, ".") >= o.ndots {
		return append([]string{dns.Fqdn(name)}, searched...)
	}
	return append(searched, dns.Fqdn(name))
}

// lookupName queries one absolute name, following CNAMEs the upstream did not resolve itself
func lookupName(ctx context.Context, r Resolver, name string, qtype uint16) (Result, error) {
	for range maxIterations {
		q := new(dns.Msg)
		q.SetQuestion(name, qtype)
		q.RecursionDesired = true

		resp, err := r.Send(ctx, q)
		if err != nil {
			return Result{Status: StatusTryAgain}, err
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return Result{Status: StatusHostNotFound, Name: name}, nil
		case dns.RcodeServerFailure:
			return Result{Status: StatusTryAgain, Name: name}, nil
		default:
			return Result{Status: StatusUnrecoverable, Name: name}, nil
		}

		owner, addrs := followAnswer(resp.Answer, name, qtype)
		if len(addrs) > 0 {
			return Result{Status: StatusSuccessful, Name: owner, Addrs: addrs}, nil
		}
		if owner == dns.CanonicalName(name) {
			return Result{Status: StatusTypeNotFound, Name: name}, nil
		}
		name = owner
	}
	return Result{Status: StatusUnrecoverable, Name: name}, nil
}

// followAnswer walks the CNAME chain starting at name through the answer section.
// It returns the last name reached and the addresses found for it.
func followAnswer(answer []dns.RR, name string, qtype uint16) (string, []netip.Addr) {
	cnames := map[string]string{}
	addrs := map[string][]netip.Addr{}
	for _, rr := range answer {
		owner := dns.CanonicalName(rr.Header().Name)
		switch v := rr.(type) {
		case *dns.CNAME:
			cnames[owner] = dns.CanonicalName(v.Target)
		case *dns.A:
			if qtype == dns.TypeA {
				if a, ok := netip.AddrFromSlice(v.A.To4()); ok {
					addrs[owner] = append(addrs[owner], a)
				}
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA {
				if a, ok := netip.AddrFromSlice(v.AAAA.To16()); ok {
					addrs[owner] = append(addrs[owner], a)
				}
			}
		}
	}

	cur := dns.CanonicalName(name)
	for range maxIterations {
		if found := addrs[cur]; len(found) > 0 {
			return cur, found
		}
		next, ok := cnames[cur]
		if !ok {
			break
		}
		cur = next
	}
	return cur, nil
}
