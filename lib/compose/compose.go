// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package compose orchestrates a full composition run: parse both
// templates, run the manifest and devcontainer composers, and write
// the results. Both documents are built fully in memory and only
// written after both are complete, so an abort mid-composition leaves
// the target directory unchanged. Each document is written via a
// temp-file-and-rename in its destination directory; a crash between
// the two renames leaves one valid document and the other untouched,
// which is an accepted state since each document is independently
// valid. No cross-document atomicity, no locking: dcc assumes a
// single writer.
package compose

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/devcontainer"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/manifest"
)

// Inputs are the templates and user choices for one composition run.
type Inputs struct {
	// ManifestTemplate is the raw master tool manifest.
	ManifestTemplate []byte

	// DevcontainerTemplate is the raw devcontainer.json template.
	DevcontainerTemplate []byte

	// Selection is the user's chosen tools and version overrides.
	Selection feature.Selection

	// Features maps tools to devcontainer blocks.
	Features feature.Map

	// Options carries the devcontainer composer's non-selection
	// inputs (project name, company, header text).
	Options devcontainer.ComposeOptions

	// Logger receives composition warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Result is an immutable pair of composed documents.
type Result struct {
	// Manifest is the regenerated tool manifest document.
	Manifest string

	// Devcontainer is the regenerated devcontainer.json document.
	Devcontainer string
}

// Run executes both composers. Only parse-time structural errors fail
// the run; selection anomalies (unknown tools, ignored overrides,
// missing blocks) degrade gracefully inside the composers.
func Run(inputs Inputs) (*Result, error) {
	logger := inputs.Logger
	if logger == nil {
		logger = slog.Default()
	}

	blocks, err := manifest.Parse(inputs.ManifestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest template: %w", err)
	}

	template, err := devcontainer.Parse(inputs.DevcontainerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing devcontainer template: %w", err)
	}

	logIgnoredOverrides(blocks, inputs.Selection, logger)

	options := inputs.Options
	if options.Logger == nil {
		options.Logger = logger
	}

	manifestDocument := manifest.Compose(blocks, inputs.Selection)
	devcontainerDocument, err := template.Compose(inputs.Selection, inputs.Features, options)
	if err != nil {
		return nil, err
	}

	return &Result{
		Manifest:     manifestDocument,
		Devcontainer: devcontainerDocument,
	}, nil
}

// logIgnoredOverrides reports version overrides that cannot take
// effect: for unselected tools, unknown tools, or entries that are
// not version-configurable. All are dropped silently apart from a
// debug line.
func logIgnoredOverrides(blocks []manifest.Block, selection feature.Selection, logger *slog.Logger) {
	for tool := range selection.Versions {
		if !selection.Has(tool) {
			logger.Debug("version override for unselected tool ignored", "tool", tool)
			continue
		}
		entry, ok := manifest.Lookup(blocks, tool)
		if !ok {
			logger.Debug("selected tool not in manifest template, ignored", "tool", tool)
			continue
		}
		if !entry.VersionConfigurable {
			logger.Debug("version override for non-configurable tool ignored", "tool", tool)
		}
	}
}

// Paths are the destination file paths of a composition run, relative
// to the target directory.
type Paths struct {
	// Manifest is the tool manifest path (default "mise.toml").
	Manifest string

	// Devcontainer is the devcontainer document path (default
	// ".devcontainer/devcontainer.json").
	Devcontainer string
}

// DefaultPaths returns the standard destination layout.
func DefaultPaths() Paths {
	return Paths{
		Manifest:     "mise.toml",
		Devcontainer: filepath.Join(".devcontainer", "devcontainer.json"),
	}
}

// Write writes both documents under targetDir. The manifest is
// written first; each write is atomic for its own file.
func (r *Result) Write(targetDir string, paths Paths) error {
	if err := writeAtomic(filepath.Join(targetDir, paths.Manifest), []byte(r.Manifest)); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := writeAtomic(filepath.Join(targetDir, paths.Devcontainer), []byte(r.Devcontainer)); err != nil {
		return fmt.Errorf("writing devcontainer document: %w", err)
	}
	return nil
}

// writeAtomic writes data to path via a temp file in the destination
// directory, synced and renamed into place. Readers never observe a
// partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	temp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tempName := temp.Name()
	defer os.Remove(tempName)

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempName, 0o644); err != nil {
		return err
	}
	return os.Rename(tempName, path)
}
