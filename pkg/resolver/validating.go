// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/telekom/proxydns/internal/logger"
)

// Security is the DNSSEC status of a response
type Security int

const (
	// Insecure responses carry no signatures
	Insecure Security = iota
	// Secure responses have valid signatures for every answer RRset
	Secure
	// Bogus responses have signatures that do not verify
	Bogus
)

func (s Security) String() string {
	switch s {
	case Secure:
		return "secure"
	case Bogus:
		return "bogus"
	default:
		return "insecure"
	}
}

// ValidatingResolver checks the DNSSEC signatures of the answers of another resolver.
//
// The signing keys of a zone are fetched through the wrapped resolver and must
// be signed by themselves. Trust anchors and DS delegation are not checked.
// Bogus answers are replaced by SERVFAIL responses.
type ValidatingResolver struct {
	inner Resolver
	now   func() time.Time
}

// NewValidatingResolver wraps inner
func NewValidatingResolver(inner Resolver) *ValidatingResolver {
	return &ValidatingResolver{inner: inner, now: time.Now}
}

// Inner returns the wrapped resolver
func (v *ValidatingResolver) Inner() Resolver {
	return v.inner
}

func (v *ValidatingResolver) SetTimeout(timeout time.Duration) { v.inner.SetTimeout(timeout) }
func (v *ValidatingResolver) SetTSIGKey(key *TSIGKey) { v.inner.SetTSIGKey(key) }
func (v *ValidatingResolver) SetPort(port int) { v.inner.SetPort(port) }
func (v *ValidatingResolver) SetTCP(enabled bool) { v.inner.SetTCP(enabled) }
func (v *ValidatingResolver) SetIgnoreTruncation(ignore bool) { v.inner.SetIgnoreTruncation(ignore) }

// SetEDNS is forwarded with the DO bit set, validation needs the signatures
func (v *ValidatingResolver) SetEDNS(version int, payloadSize uint16, _ bool, options ...dns.EDNS0) {
	v.inner.SetEDNS(version, payloadSize, true, options...)
}

// Send forwards the query with the DO and CD bits set and validates the answer
func (v *ValidatingResolver) Send(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	log := logger.FromContext(ctx)
	wantSigs := false
	if opt := query.IsEdns0(); opt != nil {
		wantSigs = opt.Do()
	}

	q := query.Copy()
	requestSignatures(q)
	resp, err := v.inner.Send(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return resp, nil
	}

	sec := v.validate(ctx, resp.Answer)
	switch sec {
	case Bogus:
		log.WarnContext(ctx, "DNSSEC validation failed", "id", query.Id, "question", questionString(query))
		return serverFailure(query), nil
	case Secure:
		resp.AuthenticatedData = true
	default:
		resp.AuthenticatedData = false
	}
	log.DebugContext(ctx, "DNSSEC validation finished", "id", query.Id, "question", questionString(query), "security", sec.String())

	resp.CheckingDisabled = query.CheckingDisabled
	if !wantSigs {
		resp.Answer = stripSignatures(resp.Answer)
		resp.Ns = stripSignatures(resp.Ns)
	}
	return resp, nil
}

// validate verifies every signed RRset of the section.
// The section is secure if all RRsets are signed and valid.
func (v *ValidatingResolver) validate(ctx context.Context, section []dns.RR) Security {
	rrsets, sigs := splitRRsets(section)
	if len(sigs) == 0 {
		return Insecure
	}

	keys := map[string][]*dns.DNSKEY{}
	result := Secure
	for key, rrset := range rrsets {
		covering := sigs[key]
		if len(covering) == 0 {
			result = Insecure
			continue
		}
		if !v.verifyAny(ctx, covering, rrset, keys) {
			return Bogus
		}
	}
	return result
}

// verifyAny reports whether one of the signatures verifies the RRset
func (v *ValidatingResolver) verifyAny(ctx context.Context, sigs []*dns.RRSIG, rrset []dns.RR, keys map[string][]*dns.DNSKEY) bool {
	for _, sig := range sigs {
		signer := dns.CanonicalName(sig.SignerName)
		zoneKeys, ok := keys[signer]
		if !ok {
			zoneKeys = v.fetchKeys(ctx, signer)
			keys[signer] = zoneKeys
		}
		if v.verify(sig, rrset, zoneKeys) {
			return true
		}
	}
	return false
}

func (v *ValidatingResolver) verify(sig *dns.RRSIG, rrset []dns.RR, keys []*dns.DNSKEY) bool {
	if !sig.ValidityPeriod(v.now()) {
		return false
	}
	for _, k := range keys {
		if k.KeyTag() != sig.KeyTag || k.Algorithm != sig.Algorithm {
			continue
		}
		if sig.Verify(k, rrset) == nil {
			return true
		}
	}
	return false
}

// fetchKeys queries the DNSKEY RRset of the zone and returns it if it is self-signed
func (v *ValidatingResolver) fetchKeys(ctx context.Context, zone string) []*dns.DNSKEY {
	log := logger.FromContext(ctx)

	q := new(dns.Msg)
	q.SetQuestion(zone, dns.TypeDNSKEY)
	requestSignatures(q)
	resp, err := v.inner.Send(ctx, q)
	if err != nil {
		log.DebugContext(ctx, "Failed to fetch DNSKEY", "zone", zone, "error", err)
		return nil
	}
	if resp.Rcode != dns.RcodeSuccess {
		log.DebugContext(ctx, "Failed to fetch DNSKEY", "zone", zone, "rcode", dns.RcodeToString[resp.Rcode])
		return nil
	}

	var keys []*dns.DNSKEY
	var keySet []dns.RR
	var keySigs []*dns.RRSIG
	for _, rr := range resp.Answer {
		if !strings.EqualFold(rr.Header().Name, zone) {
			continue
		}
		switch r := rr.(type) {
		case *dns.DNSKEY:
			keys = append(keys, r)
			keySet = append(keySet, r)
		case *dns.RRSIG:
			if r.TypeCovered == dns.TypeDNSKEY {
				keySigs = append(keySigs, r)
			}
		}
	}

	for _, sig := range keySigs {
		if v.verify(sig, keySet, keys) {
			return keys
		}
	}
	log.DebugContext(ctx, "DNSKEY RRset is not self-signed", "zone", zone)
	return nil
}

type rrsetKey struct {
	name  string
	class uint16
	rtype uint16
}

// splitRRsets groups the records of a section into RRsets and the signatures covering them
func splitRRsets(section []dns.RR) (map[rrsetKey][]dns.RR, map[rrsetKey][]*dns.RRSIG) {
	rrsets := map[rrsetKey][]dns.RR{}
	sigs := map[rrsetKey][]*dns.RRSIG{}
	for _, rr := range section {
		h := rr.Header()
		if sig, ok := rr.(*dns.RRSIG); ok {
			k := rrsetKey{name: dns.CanonicalName(h.Name), class: h.Class, rtype: sig.TypeCovered}
			sigs[k] = append(sigs[k], sig)
			continue
		}
		if h.Rrtype == dns.TypeOPT {
			continue
		}
		k := rrsetKey{name: dns.CanonicalName(h.Name), class: h.Class, rtype: h.Rrtype}
		rrsets[k] = append(rrsets[k], rr)
	}
	return rrsets, sigs
}

func stripSignatures(section []dns.RR) []dns.RR {
	out := section[:0:0]
	for _, rr := range section {
		switch rr.Header().Rrtype {
		case dns.TypeRRSIG, dns.TypeNSEC, dns.TypeNSEC3:
			continue
		}
		out = append(out, rr)
	}
	return out
}

// requestSignatures sets the DO and CD bits so the upstream returns
// signatures even for data it would consider bogus itself
func requestSignatures(q *dns.Msg) {
	q.CheckingDisabled = true
	if opt := q.IsEdns0(); opt != nil {
		opt.SetDo()
		return
	}
	q.SetEdns0(dns.DefaultMsgSize, true)
}
