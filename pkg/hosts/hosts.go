// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package hosts serves local overrides from the system's hosts database,
// otherwise known as /etc/hosts.
//
// Entries are parsed on demand. The cache is cleared as a whole when the
// modification time of the file advances or the file is deleted.
package hosts

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/platform"
	"github.com/telekom/proxydns/pkg/resolver"
)

const (
	// maxFullCacheFileSize is the largest file that is parsed and cached as a whole.
	// Bigger files are scanned for every lookup that misses the cache.
	maxFullCacheFileSize = 16 * 1024
	// maxLineLength limits a single line of the file
	maxLineLength = 1024 * 1024
)

// ErrInvalidType is returned for lookups of a type other than A or AAAA
var ErrInvalidType = resolver.ErrInvalidType

// deleted is the modification time assumed for a missing file.
// It lies after every real modification time so that a deletion always clears the cache.
var deleted = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

type key struct {
	name  string
	qtype uint16
}

// Cache is an on-demand cache of the hosts database.
// It is safe for concurrent use, lookups are serialized.
type Cache struct {
	path       string
	fsys       fs.FS
	file       string
	invalidate bool

	mu           sync.Mutex
	entries      map[key]netip.Addr
	lastModified time.Time
	complete     bool
}

// Option configures a Cache
type Option func(*Cache)

// WithoutInvalidation keeps cached entries when the file changes
func WithoutInvalidation() Option {
	return func(c *Cache) {
		c.invalidate = false
	}
}

// New creates a cache for the hosts database at path
func New(path string, opts ...Option) (*Cache, error) {
	if path == "" {
		return nil, errors.New("hosts database path is required")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("hosts database %s must be a file", path)
	}

	c := &Cache{
		path:       path,
		fsys:       os.DirFS(filepath.Dir(path)),
		file:       filepath.Base(path),
		invalidate: true,
		entries:    map[key]netip.Addr{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewDefault creates a cache for the hosts database of the platform
func NewDefault(p platform.Platform, opts ...Option) (*Cache, error) {
	return New(p.HostsFile, opts...)
}

// Path returns the location of the hosts database
func (c *Cache) Path() string {
	return c.path
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup returns the first address the hosts database maps name to.
// The boolean is false if the database has no entry for name and qtype,
// qtype must be A or AAAA.
func (c *Cache) Lookup(ctx context.Context, name string, qtype uint16) (netip.Addr, bool, error) {
	if qtype != dns.TypeA && qtype != dns.TypeAAAA {
		return netip.Addr{}, false, ErrInvalidType
	}
	n, err := resolver.NormalizeName(name)
	if err != nil {
		return netip.Addr{}, false, err
	}
	k := key{name: dns.CanonicalName(n), qtype: qtype}

	c.mu.Lock()
	defer c.mu.Unlock()

	fi, err := c.validate(ctx)
	if err != nil {
		return netip.Addr{}, false, err
	}

	if addr, ok := c.entries[k]; ok {
		return addr, true, nil
	}
	if c.complete || fi == nil {
		return netip.Addr{}, false, nil
	}

	if fi.Size() <= maxFullCacheFileSize {
		err = c.read(ctx, nil)
	} else {
		err = c.read(ctx, &k)
	}
	if err != nil {
		return netip.Addr{}, false, err
	}

	addr, ok := c.entries[k]
	return addr, ok, nil
}

// validate clears the cache if the file was modified or deleted since it was last read.
// It returns nil file info if the file does not exist.
func (c *Cache) validate(ctx context.Context) (fs.FileInfo, error) {
	fi, err := fs.Stat(c.fsys, c.file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat hosts database: %w", err)
		}
		fi = nil
	}
	if !c.invalidate {
		return fi, nil
	}

	modified := deleted
	if fi != nil {
		modified = fi.ModTime()
	}
	recreated := fi != nil && c.lastModified.Equal(deleted)
	if !modified.After(c.lastModified) && !recreated {
		return fi, nil
	}

	if len(c.entries) > 0 {
		logger.FromContext(ctx).InfoContext(ctx, "Local hosts database has changed, clearing cache",
			"path", c.path, "modified", modified)
		clear(c.entries)
	}
	c.complete = false
	c.lastModified = modified
	return fi, nil
}

// read parses the file and caches its entries.
// If want is set, reading stops as soon as want is found and the cache is not marked complete.
func (c *Cache) read(ctx context.Context, want *key) (err error) {
	log := logger.FromContext(ctx).With("path", c.path)

	f, err := c.fsys.Open(c.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open hosts database: %w", err)
	}
	defer func() {
		cErr := f.Close()
		if cErr != nil {
			log.Error("Failed to close hosts database", "error", cErr)
		}
		err = errors.Join(err, cErr)
	}()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 4096), maxLineLength)
	line := 0
	for s.Scan() {
		line++
		addr, qtype, names, ok := parseLine(ctx, log, line, s.Text())
		if !ok {
			continue
		}
		for _, n := range names {
			k := key{name: n, qtype: qtype}
			if _, exists := c.entries[k]; !exists {
				c.entries[k] = addr
			}
			if want != nil && k == *want {
				return nil
			}
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to read hosts database: %w", err)
	}

	if want == nil {
		c.complete = true
	}
	return nil
}
