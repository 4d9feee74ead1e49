// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle provides the master configuration bundle: the two
// template documents the composers consume plus the static files the
// install step copies verbatim. The default bundle is embedded at
// compile time; --source points dcc at an on-disk bundle with the
// same layout instead:
//
//	templates/mise.toml          master tool manifest template
//	templates/devcontainer.json  devcontainer document template
//	templates/catalog.yaml       optional tool catalog override
//	static/...                   files installed verbatim
package bundle

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

//go:embed all:templates all:static
var embedded embed.FS

// Bundle is one source of templates and static files.
type Bundle struct {
	fsys fs.FS
}

// Embedded returns the bundle compiled into the binary.
func Embedded() *Bundle {
	return &Bundle{fsys: embedded}
}

// LoadDir returns a bundle rooted at an on-disk directory with the
// embedded layout. The directory must at least contain the two
// template documents.
func LoadDir(dir string) (*Bundle, error) {
	fsys := os.DirFS(dir)
	for _, required := range []string{"templates/mise.toml", "templates/devcontainer.json"} {
		if _, err := fs.Stat(fsys, required); err != nil {
			return nil, fmt.Errorf("bundle %s: missing %s: %w", dir, required, err)
		}
	}
	return &Bundle{fsys: fsys}, nil
}

// Manifest returns the raw master tool manifest template.
func (b *Bundle) Manifest() ([]byte, error) {
	data, err := fs.ReadFile(b.fsys, "templates/mise.toml")
	if err != nil {
		return nil, fmt.Errorf("reading manifest template: %w", err)
	}
	return data, nil
}

// Devcontainer returns the raw devcontainer document template.
func (b *Bundle) Devcontainer() ([]byte, error) {
	data, err := fs.ReadFile(b.fsys, "templates/devcontainer.json")
	if err != nil {
		return nil, fmt.Errorf("reading devcontainer template: %w", err)
	}
	return data, nil
}

// Catalog returns the bundle's catalog override, or nil when the
// bundle ships none (the embedded default catalog applies).
func (b *Bundle) Catalog() ([]byte, error) {
	data, err := fs.ReadFile(b.fsys, "templates/catalog.yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading bundle catalog: %w", err)
	}
	return data, nil
}

// Static returns the static file tree, or nil when the bundle has no
// static files.
func (b *Bundle) Static() fs.FS {
	static, err := fs.Sub(b.fsys, "static")
	if err != nil {
		return nil
	}
	if _, err := fs.Stat(static, "."); err != nil {
		return nil
	}
	return static
}
