// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package install copies a bundle's static files into the target
// directory. Files are copied verbatim; shell scripts are made
// executable; ignore patterns (doublestar globs against the path
// relative to the static root) skip files entirely. Existing files
// are preserved unless Force is set — install is additive by default
// so a re-run never clobbers local edits.
package install

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options control one install run.
type Options struct {
	// Force overwrites existing files instead of skipping them.
	Force bool

	// Ignore are doublestar glob patterns, matched against each
	// file's slash-separated path relative to the static root.
	Ignore []string

	// Logger receives one line per copied or skipped file. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Result summarizes an install run.
type Result struct {
	// Copied are the relative paths written.
	Copied []string

	// Skipped are the relative paths left alone (already present, or
	// matched an ignore pattern).
	Skipped []string
}

// Run copies the static tree into targetDir.
func Run(static fs.FS, targetDir string, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Validate patterns up front so a bad glob fails the run instead
	// of silently matching nothing.
	for _, pattern := range options.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	result := &Result{}
	err := fs.WalkDir(static, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		for _, pattern := range options.Ignore {
			if matched, _ := doublestar.Match(pattern, path); matched {
				logger.Debug("ignored by pattern", "file", path, "pattern", pattern)
				result.Skipped = append(result.Skipped, path)
				return nil
			}
		}

		destination := filepath.Join(targetDir, filepath.FromSlash(path))
		if !options.Force {
			if _, err := os.Stat(destination); err == nil {
				logger.Debug("exists, skipping (use force to overwrite)", "file", path)
				result.Skipped = append(result.Skipped, path)
				return nil
			}
		}

		data, err := fs.ReadFile(static, path)
		if err != nil {
			return fmt.Errorf("reading bundle file %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(destination, data, fileMode(path)); err != nil {
			return fmt.Errorf("writing %s: %w", destination, err)
		}

		logger.Debug("installed", "file", path)
		result.Copied = append(result.Copied, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fileMode returns the permission bits for an installed file. Shell
// scripts are executable.
func fileMode(path string) os.FileMode {
	if strings.HasSuffix(path, ".sh") {
		return 0o755
	}
	return 0o644
}
