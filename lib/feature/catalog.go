// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package feature

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the hand-authored tool metadata shipped with dcc: the
// feature map plus per-tool descriptions shown by the interactive
// picker and `dcc tools list`.
type Catalog struct {
	// Tools maps a tool name (the key in the manifest template) to
	// its metadata.
	Tools map[string]Tool `yaml:"tools"`
}

// Tool is the catalog metadata for one selectable tool.
type Tool struct {
	// Blocks are the named devcontainer blocks this tool requires,
	// in emission order. Several tools may name the same block.
	Blocks []string `yaml:"blocks,omitempty"`

	// Description is markdown shown in the picker's detail pane; its
	// first line appears in `dcc tools list`.
	Description string `yaml:"description,omitempty"`
}

// Default parses the embedded catalog. An error indicates a bug in
// the embedded content, not a runtime condition.
func Default() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses catalog YAML (the embedded file or an on-disk
// override supplied with a bundle).
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing tool catalog: %w", err)
	}
	return &catalog, nil
}

// Map returns the feature map derived from the catalog.
func (c *Catalog) Map() Map {
	result := make(Map, len(c.Tools))
	for name, tool := range c.Tools {
		if len(tool.Blocks) > 0 {
			result[name] = tool.Blocks
		}
	}
	return result
}

// Describe returns the markdown description for a tool, or "" if the
// catalog has none.
func (c *Catalog) Describe(tool string) string {
	return c.Tools[tool].Description
}

// Names returns all catalog tool names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Tools))
	for name := range c.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
