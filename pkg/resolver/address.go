// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// AddressSpec is a resolver address split into host and port
type AddressSpec struct {
	// Host is the IPv4 or IPv6 literal, without brackets
	Host string
	// Port is the explicit port, 0 if the address has none
	Port int
}

// HasPort returns true if the address has an explicit port
func (a AddressSpec) HasPort() bool {
	return a.Port != 0
}

func (a AddressSpec) String() string {
	if !a.HasPort() {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// IsIPv4 reports whether the address is a bare IPv4 literal
func IsIPv4(address string) bool {
	addr, err := netip.ParseAddr(address)
	return err == nil && addr.Is4()
}

// IsIPv4WithPort reports whether the address has the form IPv4:port
func IsIPv4WithPort(address string) bool {
	ap, ok := parseAddrPort(address)
	return ok && ap.Addr().Is4()
}

// IsIPv6 reports whether the address is a bare IPv6 literal
func IsIPv6(address string) bool {
	if strings.HasPrefix(address, "[") {
		return false
	}
	addr, err := netip.ParseAddr(address)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

// IsIPv6WithPort reports whether the address has the form [IPv6]:port
func IsIPv6WithPort(address string) bool {
	ap, ok := parseAddrPort(address)
	return ok && ap.Addr().Is6()
}

// HasPort reports whether the address carries a port.
// A bare IPv6 literal has colons but no port.
func HasPort(address string) bool {
	return IsIPv4WithPort(address) || IsIPv6WithPort(address)
}

// SplitAddress splits an address of one of the four literal forms into host and port.
// The host is returned in canonical form with or without a port.
// It returns false for malformed input, which callers treat as "no port override".
func SplitAddress(address string) (AddressSpec, bool) {
	if ap, ok := parseAddrPort(address); ok {
		return AddressSpec{Host: ap.Addr().String(), Port: int(ap.Port())}, true
	}
	if IsIPv4(address) || IsIPv6(address) {
		return AddressSpec{Host: netip.MustParseAddr(address).String()}, true
	}
	return AddressSpec{}, false
}

// ParseAddressSpec validates a plain resolver address and splits it
func ParseAddressSpec(address string) (AddressSpec, error) {
	spec, ok := SplitAddress(address)
	if !ok {
		return AddressSpec{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return spec, nil
}

// parseAddrPort parses IPv4:port and [IPv6]:port with a port in 1-65535
func parseAddrPort(address string) (netip.AddrPort, bool) {
	i := strings.LastIndexByte(address, ':')
	if i < 0 {
		return netip.AddrPort{}, false
	}
	host, port := address[:i], address[i+1:]

	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return netip.AddrPort{}, false
		}
		host = host[1 : len(host)-1]
		if !IsIPv6(host) {
			return netip.AddrPort{}, false
		}
	} else if !IsIPv4(host) {
		return netip.AddrPort{}, false
	}

	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil || p == 0 || port[0] == '+' {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(netip.MustParseAddr(host), uint16(p)), true
}
