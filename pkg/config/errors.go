// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidNameserver is returned when a system nameserver override is not an IP address with optional port
	ErrInvalidNameserver = errors.New("invalid system nameserver")
	// ErrInvalidSearchDomain is returned when a search domain override is not a domain name
	ErrInvalidSearchDomain = errors.New("invalid search domain")
)
