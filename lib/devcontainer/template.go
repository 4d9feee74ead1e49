// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package devcontainer parses and recomposes the devcontainer.json
// template. The template is JSONC (JSON with // comments) with two
// composable regions — the extensions array and the settings object —
// each organized into named blocks bracketed by comment markers:
//
//	"extensions": [
//	    // #### Begin Base
//	    "editorconfig.editorconfig",
//	    // #### End Base
//	    // #### Begin Kubernetes
//	    "ms-kubernetes-tools.vscode-kubernetes-tools",
//	    // #### End Kubernetes
//	],
//
// The Base block is always included; every other block is pulled in by
// the feature map when a selected tool references it. The markers
// survive composition, so a composed document is itself a valid
// (smaller) template.
package devcontainer

import (
	"fmt"
	"strings"
)

// Block markers inside the extensions and settings regions. Matched
// after whitespace trimming.
const (
	blockBeginPrefix = "// #### Begin "
	blockEndPrefix   = "// #### End "

	// BaseBlock is the always-include block present in both regions.
	BaseBlock = "Base"
)

// UnterminatedBlockError is the fatal parse error for a block begin
// marker that is never closed before its region ends.
type UnterminatedBlockError struct {
	// Block is the name carried by the unclosed begin marker.
	Block string

	// Line is the 1-based line number of the begin marker.
	Line int
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("devcontainer block %q opened at line %d is never closed", e.Block, e.Line)
}

// Template is a parsed devcontainer.json template: the raw document
// lines plus the two block-organized regions.
type Template struct {
	lines      []string
	nameLine   int // index of the top-level "name" property line, -1 if absent
	extensions region
	settings   region
}

// BlockNames returns the union of block names across both regions,
// in template order (extensions first), deduplicated.
func (t *Template) BlockNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, name := range append(append([]string{}, t.extensions.order...), t.settings.order...) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// region is one composable span of the document: the lines between a
// region opener (`"extensions": [` or `"settings": {`) and its
// matching closer, split into named blocks.
type region struct {
	label  string
	open   int // line index of the opener
	close  int // line index of the closer
	order  []string
	blocks map[string][]string
	indent string // indentation of block marker lines, for synthesized blocks
}

// Blocks returns the region's block names in template order.
func (r *region) names() []string {
	return r.order
}

// Parse parses a devcontainer.json template. Both regions must be
// present; all content inside a region must live inside a named block
// (blank lines between blocks are tolerated and dropped).
func Parse(data []byte) (*Template, error) {
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	template := &Template{lines: lines, nameLine: -1}

	depth := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		entering := depth
		depth += bracketDelta(line)

		// The project name is the top-level "name" property (depth 1:
		// inside the document object only).
		if entering == 1 && template.nameLine < 0 && strings.HasPrefix(trimmed, `"name":`) {
			template.nameLine = i
		}

		if strings.HasPrefix(trimmed, `"extensions": [`) && !strings.Contains(trimmed, "]") {
			if err := template.extensions.parse("extensions", lines, i, '[', ']'); err != nil {
				return nil, err
			}
		}
		if strings.HasPrefix(trimmed, `"settings": {`) && !strings.Contains(trimmed, "}") {
			if err := template.settings.parse("settings", lines, i, '{', '}'); err != nil {
				return nil, err
			}
		}
	}

	if template.extensions.blocks == nil {
		return nil, fmt.Errorf("devcontainer template has no extensions region")
	}
	if template.settings.blocks == nil {
		return nil, fmt.Errorf("devcontainer template has no settings region")
	}
	return template, nil
}

// parse locates the region's closer and splits the interior into
// named blocks.
func (r *region) parse(label string, lines []string, open int, openChar, closeChar byte) error {
	r.label = label
	r.open = open
	r.blocks = make(map[string][]string)

	// Find the matching closer by bracket depth. The opener line
	// itself contributes +1 (its trailing bracket).
	depth := 0
	closeLine := -1
	for i := open; i < len(lines); i++ {
		depth += bracketDelta(lines[i])
		if i > open && depth <= 0 {
			closeLine = i
			break
		}
	}
	if closeLine < 0 {
		return fmt.Errorf("devcontainer %s region opened at line %d is never closed", label, open+1)
	}
	r.close = closeLine

	current := ""
	currentLine := 0
	for i := open + 1; i < closeLine; i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, blockBeginPrefix):
			if current != "" {
				return &UnterminatedBlockError{Block: current, Line: currentLine}
			}
			current = strings.TrimSpace(strings.TrimPrefix(trimmed, blockBeginPrefix))
			currentLine = i + 1
			if r.indent == "" {
				r.indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			}
			if _, dup := r.blocks[current]; !dup {
				r.order = append(r.order, current)
				r.blocks[current] = nil
			}

		case strings.HasPrefix(trimmed, blockEndPrefix):
			if current == "" {
				return fmt.Errorf("devcontainer %s region: end marker at line %d with no open block", label, i+1)
			}
			current = ""

		case current != "":
			r.blocks[current] = append(r.blocks[current], line)

		case trimmed == "":
			// Blank line between blocks: dropped.

		default:
			return fmt.Errorf("devcontainer %s region: line %d is outside any block", label, i+1)
		}
	}
	if current != "" {
		return &UnterminatedBlockError{Block: current, Line: currentLine}
	}
	return nil
}

// bracketDelta returns the net bracket depth change of a line,
// counting {} and [] outside string literals and // comments. JSON
// strings never span lines, so the in-string state resets per line.
func bracketDelta(line string) int {
	delta := 0
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return delta // rest of line is a comment
			}
		case '{', '[':
			delta++
		case '}', ']':
			delta--
		}
	}
	return delta
}
