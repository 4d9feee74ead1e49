// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package versioncat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/codec"
)

// Cached decorates a catalog with an on-disk CBOR cache. Version
// listings change rarely; caching keeps the interactive picker
// responsive and `dcc tools versions` usable offline within the TTL.
type Cached struct {
	inner Catalog
	dir   string
	ttl   time.Duration
	now   func() time.Time
}

// cacheEntry is the per-tool cache file.
type cacheEntry struct {
	Fetched  time.Time `cbor:"fetched"`
	Versions []string  `cbor:"versions"`
}

// NewCached wraps inner with a cache directory and TTL.
func NewCached(inner Catalog, dir string, ttl time.Duration) *Cached {
	return &Cached{inner: inner, dir: dir, ttl: ttl, now: time.Now}
}

// Versions returns the cached listing when fresh, otherwise fetches
// from the inner catalog and rewrites the cache file. A stale or
// unreadable cache entry falls through to a fetch; a failed cache
// write is not an error (the listing is still returned).
func (c *Cached) Versions(ctx context.Context, tool string) ([]string, error) {
	path := c.path(tool)

	if data, err := os.ReadFile(path); err == nil {
		var entry cacheEntry
		if err := codec.Unmarshal(data, &entry); err == nil {
			if c.now().Sub(entry.Fetched) < c.ttl {
				return entry.Versions, nil
			}
		}
	}

	versions, err := c.inner.Versions(ctx, tool)
	if err != nil {
		return nil, err
	}

	entry := cacheEntry{Fetched: c.now(), Versions: versions}
	if data, err := codec.Marshal(entry); err == nil {
		if err := os.MkdirAll(c.dir, 0o755); err == nil {
			_ = os.WriteFile(path, data, 0o644)
		}
	}
	return versions, nil
}

// path returns the cache file for a tool. Tool names may contain
// characters unfit for filenames (mise backends like npm:prettier);
// those are replaced.
func (c *Cached) path(tool string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, tool)
	return filepath.Join(c.dir, fmt.Sprintf("%s.cbor", safe))
}
