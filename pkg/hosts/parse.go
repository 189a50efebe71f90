// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package hosts

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
	"github.com/telekom/proxydns/pkg/resolver"
)

// parseLine parses one line of the hosts database.
// Everything after a # is a comment. The first field is the address,
// the others are names for it. Names that cannot be decoded are skipped.
func parseLine(ctx context.Context, log *slog.Logger, number int, line string) (netip.Addr, uint16, []string, bool) {
	line, _, _ = strings.Cut(line, "#")
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return netip.Addr{}, 0, nil, false
	}

	addr, err := netip.ParseAddr(fields[0])
	if err != nil || addr.Zone() != "" {
		log.WarnContext(ctx, "Could not decode address, skipping line", "address", fields[0], "line", number)
		return netip.Addr{}, 0, nil, false
	}
	qtype := dns.TypeAAAA
	if addr.Is4() {
		qtype = dns.TypeA
	}

	names := make([]string, 0, len(fields)-1)
	for _, field := range fields[1:] {
		n, err := resolver.NormalizeName(field)
		if err != nil {
			log.WarnContext(ctx, "Could not decode name, skipping", "name", field, "line", number)
			continue
		}
		names = append(names, dns.CanonicalName(n))
	}
	return addr, qtype, names, true
}
