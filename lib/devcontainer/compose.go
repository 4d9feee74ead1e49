// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package devcontainer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
)

// ComposeOptions carries the non-selection inputs of the settings
// composer.
type ComposeOptions struct {
	// ProjectName, when non-empty, replaces the document's top-level
	// "name" value.
	ProjectName string

	// Company enables the Header Templates settings block. When
	// empty, no header material is emitted.
	Company string

	// Year is the copyright year for header synthesis. Zero means
	// the current year.
	Year int

	// Headers maps a language identifier to raw header text for the
	// header synthesizer. ${company} and ${year} placeholders are
	// substituted before escaping.
	Headers map[string]string

	// Logger receives the non-fatal composition warnings (missing
	// blocks). Nil means slog.Default().
	Logger *slog.Logger
}

// Compose regenerates the devcontainer document for a selection. Both
// regions are rebuilt with the same discipline: the Base block first,
// then — in the order tools appear in the selection — each block the
// feature map resolves for the tool, each emitted at most once. A
// mapped block missing from the template is skipped with a warning,
// never fatal. After emission the last top-level entry of each region
// has its trailing comma stripped; separators inside nested structures
// are untouched.
//
// The composed document is validated as JSONC before being returned;
// a validation failure indicates a template or composer bug.
func (t *Template) Compose(selection feature.Selection, features feature.Map, options ComposeOptions) (string, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	extensionLines := t.extensions.compose(selection, features, logger)
	settingLines := t.settings.compose(selection, features, logger)

	if options.Company != "" {
		settingLines = append(settingLines, t.settings.headerBlock(options)...)
	}

	stripLastSeparator(extensionLines)
	stripLastSeparator(settingLines)

	var out strings.Builder
	for i := 0; i < len(t.lines); i++ {
		switch {
		case i == t.nameLine && options.ProjectName != "":
			out.WriteString(rewriteName(t.lines[i], options.ProjectName))
			out.WriteByte('\n')

		case i == t.extensions.open:
			writeRegion(&out, t.lines[i], extensionLines, t.lines[t.extensions.close])
			i = t.extensions.close

		case i == t.settings.open:
			writeRegion(&out, t.lines[i], settingLines, t.lines[t.settings.close])
			i = t.settings.close

		default:
			out.WriteString(t.lines[i])
			out.WriteByte('\n')
		}
	}

	document := out.String()
	if err := validate(document); err != nil {
		return "", fmt.Errorf("composed devcontainer document is not valid JSONC: %w", err)
	}
	return document, nil
}

// compose emits the region's interior lines for a selection: Base
// first, then mapped blocks in selection order, each at most once.
// Duplicate suppression is an explicit seen set rather than a rescan
// of already-written output.
func (r *region) compose(selection feature.Selection, features feature.Map, logger *slog.Logger) []string {
	var lines []string
	seen := make(map[string]bool)

	emit := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		block, ok := r.blocks[name]
		if !ok {
			logger.Warn("devcontainer block not in template, skipping",
				"region", r.label, "block", name)
			return
		}
		lines = append(lines, r.indent+blockBeginPrefix+name)
		lines = append(lines, block...)
		lines = append(lines, r.indent+blockEndPrefix+name)
	}

	emit(BaseBlock)
	for _, tool := range selection.Chosen {
		for _, name := range features.Resolve(tool) {
			emit(name)
		}
	}
	return lines
}

// headerBlock synthesizes the Header Templates settings block: the
// psi-header variables and the per-language template entries.
func (r *region) headerBlock(options ComposeOptions) []string {
	year := options.Year
	if year == 0 {
		year = time.Now().Year()
	}
	templates := SynthesizeHeaderTemplates(options.Company, year, options.Headers)

	indent := r.indent
	inner := indent + "    "

	var lines []string
	lines = append(lines, indent+blockBeginPrefix+"Header Templates")
	lines = append(lines, indent+`"psi-header.variables": [`)
	lines = append(lines, inner+fmt.Sprintf(`["company", "%s"],`, escapeJSONString(options.Company)))
	lines = append(lines, inner+fmt.Sprintf(`["year", "%d"]`, year))
	lines = append(lines, indent+`],`)
	lines = append(lines, indent+`"psi-header.templates": [`)
	for i, template := range templates {
		separator := ","
		if i == len(templates)-1 {
			separator = ""
		}
		parts := make([]string, len(template.Lines))
		for j, line := range template.Lines {
			parts[j] = `"` + line + `"`
		}
		lines = append(lines, inner+fmt.Sprintf(`{ "language": "%s", "template": [%s] }%s`,
			template.Language, strings.Join(parts, ", "), separator))
	}
	lines = append(lines, indent+`],`)
	lines = append(lines, indent+blockEndPrefix+"Header Templates")
	return lines
}

// stripLastSeparator removes the trailing comma from the last
// top-level entry of a composed region. The scan is depth-aware so
// separators inside nested structures are never candidates: a line is
// a top-level entry end only when the bracket depth returns to zero
// after it. The composer never produces multiply-nested trailing
// groups, which is what keeps this line-based strip sufficient.
func stripLastSeparator(lines []string) {
	last := -1
	depth := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		depth += bracketDelta(line)
		if depth == 0 && strings.HasSuffix(strings.TrimRight(line, " \t"), ",") {
			last = i
		}
	}
	if last < 0 {
		return
	}
	line := strings.TrimRight(lines[last], " \t")
	lines[last] = strings.TrimSuffix(line, ",")
}

// writeRegion writes a region opener, interior, and closer.
func writeRegion(out *strings.Builder, opener string, interior []string, closer string) {
	out.WriteString(opener)
	out.WriteByte('\n')
	for _, line := range interior {
		out.WriteString(line)
		out.WriteByte('\n')
	}
	out.WriteString(closer)
	out.WriteByte('\n')
}

// rewriteName replaces the value of the top-level "name" property,
// preserving the line's indentation and trailing separator.
func rewriteName(line, name string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	suffix := ""
	if strings.HasSuffix(strings.TrimRight(line, " \t"), ",") {
		suffix = ","
	}
	return indent + `"name": "` + escapeJSONString(name) + `"` + suffix
}

// validate strips comments and checks the result parses as JSON.
func validate(document string) error {
	var parsed any
	return json.Unmarshal(jsonc.ToJSON([]byte(document)), &parsed)
}
