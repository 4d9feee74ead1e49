// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for dcc.
//
// Configuration is loaded from a single YAML file specified by:
//   - DCC_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
// When neither is set, built-in defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable naming the config file.
const EnvConfigPath = "DCC_CONFIG"

// Config is the dcc configuration.
type Config struct {
	// Company is the company name used for synthesized file headers.
	// Empty disables header synthesis.
	Company string `yaml:"company"`

	// Target is the default target directory for compose and
	// install. Empty means the current working directory.
	Target string `yaml:"target"`

	// ManifestPath is the tool manifest path relative to the target
	// directory. Default "mise.toml".
	ManifestPath string `yaml:"manifest_path"`

	// DevcontainerPath is the devcontainer document path relative to
	// the target directory. Default ".devcontainer/devcontainer.json".
	DevcontainerPath string `yaml:"devcontainer_path"`

	// SnapshotRoot is where pre-compose snapshots are stored.
	// Default ~/.cache/dcc/snapshots.
	SnapshotRoot string `yaml:"snapshot_root"`

	// CacheRoot is where the version catalog cache lives.
	// Default ~/.cache/dcc/versions.
	CacheRoot string `yaml:"cache_root"`

	// MiseBinary is the mise executable used for version discovery.
	// Default "mise" (resolved via PATH).
	MiseBinary string `yaml:"mise_binary"`

	// InstallIgnore are doublestar glob patterns for bundle files the
	// install step must skip, relative to the bundle's static root.
	InstallIgnore []string `yaml:"install_ignore"`

	// Headers maps a language identifier to raw header text for the
	// header synthesizer. ${company} and ${year} are substituted.
	Headers map[string]string `yaml:"headers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cacheBase := cacheDir()
	return &Config{
		ManifestPath:     "mise.toml",
		DevcontainerPath: filepath.Join(".devcontainer", "devcontainer.json"),
		SnapshotRoot:     filepath.Join(cacheBase, "snapshots"),
		CacheRoot:        filepath.Join(cacheBase, "versions"),
		MiseBinary:       "mise",
	}
}

// Load reads configuration from the explicit path, the DCC_CONFIG
// environment variable, or returns defaults when neither is set. An
// explicitly named file that does not exist is an error — a typoed
// --config must not silently fall back to defaults.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals config YAML over the defaults, so absent keys keep
// their default values.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// cacheDir returns the base directory for dcc state.
func cacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "dcc")
	}
	return filepath.Join(os.TempDir(), "dcc")
}
