// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package devcontainer

import (
	"strings"
	"testing"
)

func TestSynthesizeNeverEmpty(t *testing.T) {
	templates := SynthesizeHeaderTemplates("Acme Corp", 2026, nil)
	if len(templates) != 1 {
		t.Fatalf("expected exactly one default entry, got %d", len(templates))
	}
	if templates[0].Language != WildcardLanguage {
		t.Errorf("default entry must be wildcard-scoped, got %q", templates[0].Language)
	}
	line := templates[0].Lines[0]
	if !strings.Contains(line, "2026") || !strings.Contains(line, "Acme Corp") {
		t.Errorf("default entry must carry year and company: %q", line)
	}
	if !strings.Contains(line, `\u00A9`) {
		t.Errorf("copyright glyph must be escaped to its code point: %q", line)
	}
}

func TestSynthesizeLanguagePlusDefault(t *testing.T) {
	templates := SynthesizeHeaderTemplates("Acme", 2026, map[string]string{
		"go": "Copyright ${company}",
	})
	if len(templates) != 2 {
		t.Fatalf("expected go entry plus default wildcard, got %d", len(templates))
	}
	if templates[0].Language != "go" || templates[1].Language != WildcardLanguage {
		t.Errorf("expected [go, *], got [%s, %s]", templates[0].Language, templates[1].Language)
	}
}

func TestSynthesizeWildcardSuppliedSuppressesDefault(t *testing.T) {
	templates := SynthesizeHeaderTemplates("Acme", 2026, map[string]string{
		WildcardLanguage: "Custom header ${year}",
	})
	if len(templates) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(templates))
	}
	if templates[0].Lines[0] != "Custom header 2026" {
		t.Errorf("unexpected wildcard template: %q", templates[0].Lines[0])
	}
}

func TestSynthesizeSortedWildcardLast(t *testing.T) {
	templates := SynthesizeHeaderTemplates("Acme", 2026, map[string]string{
		"python":     "a",
		"go":         "b",
		"javascript": "c",
	})
	want := []string{"go", "javascript", "python", WildcardLanguage}
	if len(templates) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(templates))
	}
	for i, language := range want {
		if templates[i].Language != language {
			t.Errorf("entry %d: expected %q, got %q", i, language, templates[i].Language)
		}
	}
}

func TestSynthesizeEscapingOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "backslash before quote",
			raw:  `path \ and "quote"`,
			want: `path \\ and \"quote\"`,
		},
		{
			name: "newline token",
			raw:  "line one\nline two",
			want: `line one\nline two`,
		},
		{
			name: "copyright glyph",
			raw:  "© Acme",
			want: `\u00A9 Acme`,
		},
		{
			name: "backslash does not double-escape newline token",
			raw:  `literal \n stays`,
			want: `literal \\n stays`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			templates := SynthesizeHeaderTemplates("Acme", 2026, map[string]string{"go": test.raw})
			got := templates[0].Lines[0]
			if got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestSynthesizePowerShellSplit(t *testing.T) {
	templates := SynthesizeHeaderTemplates("Acme", 2026, map[string]string{
		"powershell": "<#\nCopyright ${year} ${company}\n#>",
	})
	entry := templates[0]
	if entry.Language != "powershell" {
		t.Fatalf("expected powershell entry, got %q", entry.Language)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("expected the two-part split, got %d lines: %v", len(entry.Lines), entry.Lines)
	}
	if entry.Lines[0] != "<#" {
		t.Errorf("first part must be the bare opener, got %q", entry.Lines[0])
	}
	if entry.Lines[1] != `Copyright 2026 Acme\n#>` {
		t.Errorf("second part must be the remainder with newline tokens, got %q", entry.Lines[1])
	}
}

func TestSynthesizePowerShellWithoutOpenerIsOrdinary(t *testing.T) {
	templates := SynthesizeHeaderTemplates("Acme", 2026, map[string]string{
		"powershell": "# Copyright ${year}\n# All rights reserved.",
	})
	if len(templates[0].Lines) != 1 {
		t.Fatalf("no opener: expected a single template string, got %v", templates[0].Lines)
	}
}
