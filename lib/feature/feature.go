// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package feature defines the user's tool selection and the static
// mapping from tool names to the devcontainer blocks they require.
//
// A Selection is produced wholesale by a front-end (the interactive
// picker or --tool flags) before composition starts; the composers
// treat it as immutable input. The feature map is hand-authored
// content: many tools may map to the same block (every Kubernetes
// tool pulls in the one "Kubernetes" block), and extending the map is
// a content change, not a behavioral one.
package feature

// Map is the static table from tool name to the ordered devcontainer
// block names the tool requires. Read-only at composition time.
type Map map[string][]string

// Resolve returns the ordered block names for a tool. Tools absent
// from the map resolve to nothing — they contribute no devcontainer
// material, which is a legal state, not an error.
func (m Map) Resolve(tool string) []string {
	return m[tool]
}

// Selection is the user's chosen tool set plus optional per-tool
// version overrides. Chosen preserves the order tools were picked in;
// that order drives the emission order of devcontainer blocks.
type Selection struct {
	// Chosen is the ordered list of selected tool names. Names not
	// present in the manifest template are accepted and ignored.
	Chosen []string

	// Versions maps a tool name to a version override. Overrides for
	// tools that are not selected, or whose manifest entry is not
	// version-configurable, are ignored, never an error.
	Versions map[string]string
}

// Has reports whether tool is in the selection.
func (s Selection) Has(tool string) bool {
	for _, name := range s.Chosen {
		if name == tool {
			return true
		}
	}
	return false
}

// Version returns the override for tool, if one was supplied.
func (s Selection) Version(tool string) (string, bool) {
	version, ok := s.Versions[tool]
	return version, ok
}

// Add appends tool to the selection if not already present and
// records an optional version override (empty string means none).
func (s *Selection) Add(tool, version string) {
	if !s.Has(tool) {
		s.Chosen = append(s.Chosen, tool)
	}
	if version != "" {
		if s.Versions == nil {
			s.Versions = make(map[string]string)
		}
		s.Versions[tool] = version
	}
}
