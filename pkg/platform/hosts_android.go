// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build android

package platform

func defaultHostsFile() string {
	return "/system/etc/hosts"
}
