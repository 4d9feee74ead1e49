// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"strings"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
)

// Compose regenerates the manifest document from the parsed template
// and a selection. Freeform blocks are copied through verbatim in
// original order. A section is emitted only when it contains at least
// one selected entry — no empty begin/end marker pairs. Within an
// emitted section, entries keep template order; each selected entry
// emits its override version when one was supplied and the entry is
// version-configurable, and its template default otherwise.
//
// Selecting a tool name absent from the template is a silent no-op:
// the tool names in the output are exactly the intersection of the
// selection with the template's entries. Comment lines inside
// sections (including the select-version markers) do not survive
// composition.
func Compose(blocks []Block, selection feature.Selection) string {
	var out strings.Builder

	for _, block := range blocks {
		switch b := block.(type) {
		case Freeform:
			for _, line := range b.Lines {
				out.WriteString(line)
				out.WriteByte('\n')
			}

		case Section:
			var selected []ToolEntry
			for _, entry := range b.Entries {
				if selection.Has(entry.Name) {
					selected = append(selected, entry)
				}
			}
			if len(selected) == 0 {
				continue
			}

			out.WriteString(beginMarkerPrefix + b.Name + "\n")
			for _, entry := range selected {
				out.WriteString(formatEntry(entry, selection))
				out.WriteByte('\n')
			}
			out.WriteString(endMarkerPrefix + b.Name + "\n")
		}
	}

	return out.String()
}

// formatEntry renders one tool entry line, resolving the version per
// the determinism rule: override wins only for configurable entries.
func formatEntry(entry ToolEntry, selection feature.Selection) string {
	version := entry.DefaultVersion
	if entry.VersionConfigurable {
		if override, ok := selection.Version(entry.Name); ok {
			version = override
		}
	}
	return formatKey(entry.Name) + ` = "` + version + `"`
}

// formatKey quotes a TOML key when it contains characters outside the
// bare-key alphabet (mise backend keys like npm:prettier).
func formatKey(name string) string {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return `"` + name + `"`
		}
	}
	return name
}
