// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package hosts

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/proxydns/pkg/platform"
)

var baseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// writeHosts writes content to the hosts file and sets its modification time
func writeHosts(t *testing.T, path, content string, modified time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

func newTestCache(t *testing.T, content string) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	writeHosts(t, path, content, baseTime)
	c, err := New(path)
	require.NoError(t, err)
	return c, path
}

func TestCache_Lookup(t *testing.T) {
	c, _ := newTestCache(t, `# local overrides
127.0.0.1   localhost foo.local
::1         localhost ip6-localhost
192.0.2.10  Mixed.Case.Example   # trailing comment
192.0.2.11  foo.local
not-an-ip   broken.local
192.0.2.12  bad..name good.local
fe80::1%lo0 zoned.local
192.0.2.13

  10.0.0.1	tabbed.local
`)

	tests := []struct {
		name   string
		host   string
		qtype  uint16
		want   string
		wantOk bool
	}{
		{name: "ipv4 entry", host: "foo.local", qtype: dns.TypeA, want: "127.0.0.1", wantOk: true},
		{name: "fqdn", host: "foo.local.", qtype: dns.TypeA, want: "127.0.0.1", wantOk: true},
		{name: "ipv6 entry", host: "localhost", qtype: dns.TypeAAAA, want: "::1", wantOk: true},
		{name: "alias", host: "ip6-localhost", qtype: dns.TypeAAAA, want: "::1", wantOk: true},
		{name: "names are case-insensitive", host: "mixed.case.EXAMPLE", qtype: dns.TypeA, want: "192.0.2.10", wantOk: true},
		{name: "type mismatch", host: "foo.local", qtype: dns.TypeAAAA},
		{name: "bad address skips the line", host: "broken.local", qtype: dns.TypeA},
		{name: "bad name skips only the name", host: "good.local", qtype: dns.TypeA, want: "192.0.2.12", wantOk: true},
		{name: "zoned address skips the line", host: "zoned.local", qtype: dns.TypeAAAA},
		{name: "tabs and leading whitespace", host: "tabbed.local", qtype: dns.TypeA, want: "10.0.0.1", wantOk: true},
		{name: "unknown name", host: "missing.local", qtype: dns.TypeA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := c.Lookup(t.Context(), tt.host, tt.qtype)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, netip.MustParseAddr(tt.want), got)
			}
		})
	}
}

func TestCache_Lookup_FirstOccurrenceWins(t *testing.T) {
	c, _ := newTestCache(t, "192.0.2.1 dup.local\n192.0.2.2 dup.local\n")

	got, ok, err := c.Lookup(t.Context(), "dup.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("192.0.2.1"), got)
}

func TestCache_Lookup_InvalidType(t *testing.T) {
	c, _ := newTestCache(t, "127.0.0.1 foo.local\n")

	_, _, err := c.Lookup(t.Context(), "foo.local", dns.TypeMX)
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Lookup_Invalidation(t *testing.T) {
	c, path := newTestCache(t, "127.0.0.1 foo.local\n")

	got, ok, err := c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), got)

	// same modification time, the complete cache is not re-read
	writeHosts(t, path, "127.0.0.2 foo.local\n127.0.0.3 bar.local\n", baseTime)
	got, _, err = c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), got)
	_, ok, err = c.Lookup(t.Context(), "bar.local", dns.TypeA)
	require.NoError(t, err)
	assert.False(t, ok, "complete cache must not re-read the file")

	writeHosts(t, path, "127.0.0.2 foo.local\n127.0.0.3 bar.local\n", baseTime.Add(time.Minute))
	got, ok, err = c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("127.0.0.2"), got)
	_, ok, err = c.Lookup(t.Context(), "bar.local", dns.TypeA)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_Lookup_DeletedFile(t *testing.T) {
	c, path := newTestCache(t, "127.0.0.1 foo.local\n")

	_, ok, err := c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Remove(path))
	_, ok, err = c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// recreated with an older modification time than the deletion sentinel
	writeHosts(t, path, "127.0.0.9 foo.local\n", baseTime)
	got, ok, err := c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("127.0.0.9"), got)
}

func TestCache_Lookup_MissingFile(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "hosts"))
	require.NoError(t, err)

	_, ok, err := c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Lookup_WithoutInvalidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	writeHosts(t, path, "127.0.0.1 foo.local\n", baseTime)
	c, err := New(path, WithoutInvalidation())
	require.NoError(t, err)

	_, ok, err := c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)

	writeHosts(t, path, "127.0.0.2 foo.local\n", baseTime.Add(time.Hour))
	got, ok, err := c.Lookup(t.Context(), "foo.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), got)
}

// largeHosts returns a hosts file bigger than maxFullCacheFileSize with n entries
func largeHosts(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "10.%d.%d.1 host-%d.large.local # padding to make the file bigger\n", i/256, i%256, i)
	}
	return b.String()
}

func TestCache_Lookup_LargeFile(t *testing.T) {
	const entries = 1000
	content := largeHosts(entries)
	require.Greater(t, len(content), maxFullCacheFileSize)
	c, path := newTestCache(t, content)

	got, ok, err := c.Lookup(t.Context(), "host-10.large.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.0.10.1"), got)
	assert.Equal(t, 11, c.Len(), "only the entries up to the match are cached")

	// entries seen along the way are cached
	got, ok, err = c.Lookup(t.Context(), "host-3.large.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.0.3.1"), got)
	assert.Equal(t, 11, c.Len())

	got, ok, err = c.Lookup(t.Context(), "host-999.large.local", dns.TypeA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.3.231.1"), got)
	assert.Equal(t, entries, c.Len())

	// a large file is never complete, new entries are found without a modification time change
	require.NoError(t, os.WriteFile(path, []byte(content+"192.0.2.1 appended.local\n"), 0o600))
	require.NoError(t, os.Chtimes(path, baseTime, baseTime))
	_, ok, err = c.Lookup(t.Context(), "appended.local", dns.TypeA)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = c.Lookup(t.Context(), "missing.large.local", dns.TypeA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Lookup_Concurrent(t *testing.T) {
	c, _ := newTestCache(t, "127.0.0.1 foo.local\n::1 foo.local\n")

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qtype := dns.TypeA
			if i%2 == 0 {
				qtype = dns.TypeAAAA
			}
			_, ok, err := c.Lookup(t.Context(), "foo.local", qtype)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, c.Len())
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New(t.TempDir())
	assert.Error(t, err, "directories are rejected")

	path := filepath.Join(t.TempDir(), "hosts")
	c, err := NewDefault(platform.Platform{HostsFile: path})
	require.NoError(t, err)
	assert.Equal(t, path, c.Path())
}

func TestCache_Lookup_FileLifecycle(t *testing.T) {
	c, path := newTestCache(t, "10.0.0.5 host5\n10.9.9.9 host5\n")
	lookup := func(name string) (netip.Addr, bool) {
		t.Helper()
		got, ok, err := c.Lookup(t.Context(), name, dns.TypeA)
		require.NoError(t, err)
		return got, ok
	}

	got, ok := lookup("host5")
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.0.0.5"), got)

	writeHosts(t, path, "127.0.0.9 host5\n", baseTime.Add(time.Hour))
	got, ok = lookup("host5")
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("127.0.0.9"), got)

	require.NoError(t, os.Remove(path))
	_, ok = lookup("host5")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	writeHosts(t, path, "127.0.0.7 host7\n", baseTime.Add(2*time.Hour))
	got, ok = lookup("host7")
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("127.0.0.7"), got)

	_, _, err := c.Lookup(t.Context(), "host7", dns.TypeMX)
	assert.ErrorIs(t, err, ErrInvalidType)
}
