// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"regexp"
	"strings"
)

// Section and configurability markers. Comparison happens after
// whitespace trimming, so indented markers are recognized.
const (
	beginMarkerPrefix   = "#### Begin "
	endMarkerPrefix     = "#### End "
	selectVersionMarker = "#### Select Version"
)

// entryPattern matches a tool entry line: key = "value", where the key
// may itself be quoted (mise backend tools like "npm:prettier" need
// quoting in TOML).
var entryPattern = regexp.MustCompile(`^(?:"([^"]+)"|([A-Za-z0-9._/:+-]+))\s*=\s*"([^"]*)"\s*$`)

// Parse scans the manifest template into an ordered list of blocks.
// A single linear pass with a current-section accumulator:
//
//   - A begin marker closes the running freeform accumulator and opens
//     a section. A begin marker while a section is already open is an
//     UnterminatedSectionError for the open section.
//   - An end marker closes the current section (kept even when empty;
//     the composer never re-emits empty sections) and resumes freeform
//     accumulation. An end marker with no open section is freeform
//     content.
//   - Inside a section, entry lines become ToolEntries; an entry is
//     version-configurable iff the immediately preceding raw line is
//     the select-version marker. Any other line is a comment and is
//     ignored.
//
// End-of-input with a section still open is an UnterminatedSectionError.
func Parse(data []byte) ([]Block, error) {
	lines := strings.Split(string(data), "\n")
	// Split on a trailing newline yields one empty phantom line; drop
	// it so round-tripping doesn't grow the document.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var blocks []Block
	var freeform []string
	var open *Section
	openLine := 0
	previousRaw := ""

	flushFreeform := func() {
		if len(freeform) > 0 {
			blocks = append(blocks, Freeform{Lines: freeform})
			freeform = nil
		}
	}

	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(trimmed, beginMarkerPrefix):
			if open != nil {
				return nil, &UnterminatedSectionError{Section: open.Name, Line: openLine}
			}
			flushFreeform()
			open = &Section{Name: strings.TrimSpace(strings.TrimPrefix(trimmed, beginMarkerPrefix))}
			openLine = i + 1

		case strings.HasPrefix(trimmed, endMarkerPrefix):
			if open == nil {
				// No section to close: plain freeform content.
				freeform = append(freeform, raw)
				break
			}
			blocks = append(blocks, *open)
			open = nil

		case open != nil:
			if match := entryPattern.FindStringSubmatch(trimmed); match != nil {
				name := match[1]
				if name == "" {
					name = match[2]
				}
				open.Entries = append(open.Entries, ToolEntry{
					Name:                name,
					DefaultVersion:      match[3],
					VersionConfigurable: strings.TrimSpace(previousRaw) == selectVersionMarker,
				})
			}
			// Anything else inside a section is a comment.

		default:
			freeform = append(freeform, raw)
		}

		previousRaw = raw
	}

	if open != nil {
		return nil, &UnterminatedSectionError{Section: open.Name, Line: openLine}
	}
	flushFreeform()

	return blocks, nil
}
