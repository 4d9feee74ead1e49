// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest parses and recomposes the master mise tool manifest.
//
// The template is a line-oriented TOML document. Inside its [tools]
// table, named sections are delimited by marker comment lines:
//
//	#### Begin Kubernetes
//	#### Select Version
//	kubectl = "latest"
//	helm = "latest"
//	#### End Kubernetes
//
// An entry immediately preceded by the "#### Select Version" marker is
// version-configurable: the user may pin its version at compose time.
// Every other entry always emits its template default. Everything
// outside the marker pairs (the preamble, [alias], [settings]) is
// freeform content the composer copies through verbatim.
package manifest

import "fmt"

// Block is a contiguous region of the manifest template: either
// freeform lines copied through verbatim, or a named tool section.
type Block interface {
	block()
}

// Freeform is opaque template content (preamble comments, [alias] and
// [settings] tables) that survives composition unchanged.
type Freeform struct {
	Lines []string
}

func (Freeform) block() {}

// Section is a named, marker-delimited group of tool entries inside
// the [tools] table.
type Section struct {
	// Name is the display name carried by the begin/end markers.
	Name string

	// Entries are the section's tool entries in template order.
	Entries []ToolEntry
}

func (Section) block() {}

// Entry returns the section's entry with the given tool name.
func (s Section) Entry(name string) (ToolEntry, bool) {
	for _, entry := range s.Entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return ToolEntry{}, false
}

// ToolEntry is one selectable tool line in a section.
type ToolEntry struct {
	// Name is the tool name (the TOML key, unquoted). Unique within
	// its section.
	Name string

	// DefaultVersion is the version string from the template.
	DefaultVersion string

	// VersionConfigurable is true when the entry was immediately
	// preceded by the select-version marker in the template. Only
	// configurable entries honor a Selection version override.
	VersionConfigurable bool
}

// UnterminatedSectionError is the fatal parse error for a begin marker
// that is never closed: either end-of-input or another begin marker
// arrives while the section is still open. The parser never silently
// drops dangling section content.
type UnterminatedSectionError struct {
	// Section is the name carried by the unclosed begin marker.
	Section string

	// Line is the 1-based line number of the begin marker.
	Line int
}

func (e *UnterminatedSectionError) Error() string {
	return fmt.Sprintf("section %q opened at line %d is never closed", e.Section, e.Line)
}

// ToolNames returns the names of all tool entries across all sections,
// in template order.
func ToolNames(blocks []Block) []string {
	var names []string
	for _, block := range blocks {
		section, ok := block.(Section)
		if !ok {
			continue
		}
		for _, entry := range section.Entries {
			names = append(names, entry.Name)
		}
	}
	return names
}

// Sections returns all sections in template order.
func Sections(blocks []Block) []Section {
	var sections []Section
	for _, block := range blocks {
		if section, ok := block.(Section); ok {
			sections = append(sections, section)
		}
	}
	return sections
}

// Lookup returns the entry for a tool name anywhere in the template.
func Lookup(blocks []Block, name string) (ToolEntry, bool) {
	for _, section := range Sections(blocks) {
		if entry, ok := section.Entry(name); ok {
			return entry, true
		}
	}
	return ToolEntry{}, false
}
