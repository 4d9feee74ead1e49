// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package versioncat discovers the versions available for a tool. The
// composer never consults it — an unknown or misspelled version pins
// exactly what the user typed — so the catalog serves only the
// interactive picker's suggestions and `dcc tools versions`.
package versioncat

import (
	"context"
	"fmt"
	"sort"
)

// Catalog answers "which versions exist for this tool".
type Catalog interface {
	// Versions returns the known versions for a tool, oldest first.
	// An unknown tool returns an empty list, not an error.
	Versions(ctx context.Context, tool string) ([]string, error)
}

// Static is a fixed in-memory catalog for tests and offline use.
type Static map[string][]string

// Versions returns the configured versions for a tool, sorted.
func (s Static) Versions(_ context.Context, tool string) ([]string, error) {
	versions := append([]string(nil), s[tool]...)
	sort.Strings(versions)
	return versions, nil
}

// Latest returns the newest known version for a tool, or an error
// when the catalog knows none.
func Latest(ctx context.Context, catalog Catalog, tool string) (string, error) {
	versions, err := catalog.Versions(ctx, tool)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no known versions for %q", tool)
	}
	return versions[len(versions)-1], nil
}
