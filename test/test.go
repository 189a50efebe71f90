// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test holds helpers shared by the long running tests
package test

import "testing"

// MarkAsLong marks a test as long running.
// Long running tests are skipped with -short.
func MarkAsLong(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping long running test")
	}
}
