// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"
)

var testStatic = fstest.MapFS{
	"scripts/setup.sh": &fstest.MapFile{Data: []byte("#!/bin/sh\necho hi\n")},
	".editorconfig":    &fstest.MapFile{Data: []byte("root = true\n")},
	"docs/README.md":   &fstest.MapFile{Data: []byte("# readme\n")},
}

func run(t *testing.T, target string, options Options) *Result {
	t.Helper()
	options.Logger = slog.New(slog.DiscardHandler)
	result, err := Run(testStatic, target, options)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result
}

func TestRunCopiesTree(t *testing.T) {
	target := t.TempDir()
	result := run(t, target, Options{})

	if len(result.Copied) != 3 {
		t.Fatalf("expected 3 copied files, got %v", result.Copied)
	}
	data, err := os.ReadFile(filepath.Join(target, ".editorconfig"))
	if err != nil {
		t.Fatalf("dotfile not installed: %v", err)
	}
	if string(data) != "root = true\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestRunScriptsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}
	target := t.TempDir()
	run(t, target, Options{})

	info, err := os.Stat(filepath.Join(target, "scripts", "setup.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("setup.sh not executable: %v", info.Mode())
	}
}

func TestRunSkipsExistingWithoutForce(t *testing.T) {
	target := t.TempDir()
	existing := filepath.Join(target, ".editorconfig")
	if err := os.WriteFile(existing, []byte("local edit\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := run(t, target, Options{})

	data, _ := os.ReadFile(existing)
	if string(data) != "local edit\n" {
		t.Error("existing file was overwritten without force")
	}
	found := false
	for _, path := range result.Skipped {
		if path == ".editorconfig" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected .editorconfig in skipped list: %v", result.Skipped)
	}
}

func TestRunForceOverwrites(t *testing.T) {
	target := t.TempDir()
	existing := filepath.Join(target, ".editorconfig")
	if err := os.WriteFile(existing, []byte("local edit\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	run(t, target, Options{Force: true})

	data, _ := os.ReadFile(existing)
	if string(data) != "root = true\n" {
		t.Errorf("force did not overwrite: %q", data)
	}
}

func TestRunIgnorePatterns(t *testing.T) {
	target := t.TempDir()
	result := run(t, target, Options{Ignore: []string{"**/*.md"}})

	if _, err := os.Stat(filepath.Join(target, "docs", "README.md")); !os.IsNotExist(err) {
		t.Error("ignored file was installed")
	}
	if len(result.Copied) != 2 {
		t.Errorf("expected 2 copied files, got %v", result.Copied)
	}
}

func TestRunInvalidIgnorePattern(t *testing.T) {
	_, err := Run(testStatic, t.TempDir(), Options{
		Ignore: []string{"[unclosed"},
		Logger: slog.New(slog.DiscardHandler),
	})
	if err == nil {
		t.Fatal("expected error for invalid ignore pattern")
	}
}
