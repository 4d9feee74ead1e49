// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package devcontainer

import (
	"fmt"
	"sort"
	"strings"
)

// WildcardLanguage is the psi-header language identifier matching any
// file type.
const WildcardLanguage = "*"

// powershellOpener is the PowerShell block-comment opener. PowerShell
// is the one language with a structural exception: header text whose
// first line is this opener becomes two template strings (the opener,
// then the remainder) so the opener stays on its own line in
// generated files.
const powershellOpener = "<#"

// HeaderTemplate is one synthesized psi-header template entry.
type HeaderTemplate struct {
	// Language is the psi-header language identifier.
	Language string

	// Lines are the escaped template strings, ready to embed in a
	// JSON array without further quoting.
	Lines []string
}

// SynthesizeHeaderTemplates builds the psi-header template entries
// from a company name and per-language raw header text. Languages are
// emitted sorted, wildcard last. The default wildcard entry (built
// from the company name and year) is always appended unless the
// caller supplied its own wildcard text, so the result is never
// empty.
func SynthesizeHeaderTemplates(company string, year int, texts map[string]string) []HeaderTemplate {
	languages := make([]string, 0, len(texts))
	hasWildcard := false
	for language := range texts {
		if language == WildcardLanguage {
			hasWildcard = true
			continue
		}
		languages = append(languages, language)
	}
	sort.Strings(languages)

	var templates []HeaderTemplate
	for _, language := range languages {
		templates = append(templates, HeaderTemplate{
			Language: language,
			Lines:    templateLines(language, texts[language], company, year),
		})
	}

	if hasWildcard {
		templates = append(templates, HeaderTemplate{
			Language: WildcardLanguage,
			Lines:    templateLines(WildcardLanguage, texts[WildcardLanguage], company, year),
		})
	} else {
		templates = append(templates, defaultTemplate(company, year))
	}
	return templates
}

// defaultTemplate is the wildcard entry used when no per-language
// text is supplied.
func defaultTemplate(company string, year int) HeaderTemplate {
	raw := fmt.Sprintf("Copyright © %d %s. All rights reserved.", year, company)
	return HeaderTemplate{
		Language: WildcardLanguage,
		Lines:    []string{escapeHeaderText(raw)},
	}
}

// templateLines turns raw header text into template strings:
// placeholder substitution, then the escaping pipeline, with the
// PowerShell two-part split applied before escaping.
func templateLines(language, raw, company string, year int) []string {
	raw = strings.ReplaceAll(raw, "${company}", company)
	raw = strings.ReplaceAll(raw, "${year}", fmt.Sprintf("%d", year))
	raw = strings.TrimRight(raw, "\n")

	if language == "powershell" {
		first, rest, found := strings.Cut(raw, "\n")
		if found && strings.TrimSpace(first) == powershellOpener {
			return []string{escapeHeaderText(first), escapeHeaderText(rest)}
		}
	}
	return []string{escapeHeaderText(raw)}
}

// escapeHeaderText applies the escaping pipeline in its required
// order: backslashes first (so later escapes aren't double-escaped),
// then quotes, then embedded newlines collapsed to the explicit \n
// token, then the copyright glyph to its escaped code point.
func escapeHeaderText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "©", `\u00A9`)
	return text
}

// escapeJSONString escapes a plain value (company name, project name)
// for embedding in a JSON string literal.
func escapeJSONString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return value
}
