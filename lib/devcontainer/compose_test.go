// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package devcontainer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/tidwall/jsonc"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
)

const sampleDevcontainer = `// Dev container definition.
{
    "name": "dev-container",
    "build": {
        "dockerfile": "Dockerfile"
    },
    "customizations": {
        "vscode": {
            "extensions": [
                // #### Begin Base
                "editorconfig.editorconfig",
                "streetsidesoftware.code-spell-checker",
                // #### End Base
                // #### Begin Kubernetes
                "ms-kubernetes-tools.vscode-kubernetes-tools",
                // #### End Kubernetes
                // #### Begin Go
                "golang.go",
                // #### End Go
                // #### Begin Python
                "ms-python.python",
                // #### End Python
            ],
            "settings": {
                // #### Begin Base
                "editor.formatOnSave": true,
                "files.trimTrailingWhitespace": true,
                // #### End Base
                // #### Begin Kubernetes
                "vs-kubernetes": {
                    "vs-kubernetes.crd-code-completion": "enabled",
                },
                // #### End Kubernetes
                // #### Begin Go
                "go.useLanguageServer": true,
                "gopls": {
                    "ui.semanticTokens": true,
                },
                // #### End Go
                // #### Begin Python
                "python.analysis.typeCheckingMode": "strict",
                // #### End Python
            },
        },
    },
    "remoteUser": "vscode",
}
`

var sampleFeatures = feature.Map{
	"kubectl": {"Kubernetes"},
	"helm":    {"Kubernetes"},
	"k9s":     {"Kubernetes"},
	"golang":  {"Go"},
	"python":  {"Python"},
	"mixed":   {"Go", "Kubernetes"},
	"ghost":   {"NoSuchBlock"},
}

func mustParseTemplate(t *testing.T) *Template {
	t.Helper()
	template, err := Parse([]byte(sampleDevcontainer))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return template
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func compose(t *testing.T, selection feature.Selection, options ComposeOptions) string {
	t.Helper()
	if options.Logger == nil {
		options.Logger = discardLogger()
	}
	template := mustParseTemplate(t)
	document, err := template.Compose(selection, sampleFeatures, options)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return document
}

// parseJSON strips comments and unmarshals the composed document.
func parseJSON(t *testing.T, document string) map[string]any {
	t.Helper()
	var parsed map[string]any
	if err := json.Unmarshal(jsonc.ToJSON([]byte(document)), &parsed); err != nil {
		t.Fatalf("composed document is not valid JSONC: %v\n%s", err, document)
	}
	return parsed
}

// vscodeSection digs out customizations.vscode from a parsed document.
func vscodeSection(t *testing.T, parsed map[string]any) map[string]any {
	t.Helper()
	customizations, ok := parsed["customizations"].(map[string]any)
	if !ok {
		t.Fatal("customizations missing")
	}
	vscode, ok := customizations["vscode"].(map[string]any)
	if !ok {
		t.Fatal("customizations.vscode missing")
	}
	return vscode
}

func TestComposeAtMostOnceEmission(t *testing.T) {
	// Three tools map to Kubernetes, one maps to Go+Kubernetes: the
	// Kubernetes block must still appear exactly once.
	document := compose(t, feature.Selection{
		Chosen: []string{"kubectl", "helm", "k9s", "mixed"},
	}, ComposeOptions{})

	settingsStart := strings.Index(document, `"settings"`)
	if settingsStart < 0 {
		t.Fatalf("settings region missing:\n%s", document)
	}
	spans := map[string]string{
		"extensions": document[:settingsStart],
		"settings":   document[settingsStart:],
	}
	for region, span := range spans {
		t.Run(region, func(t *testing.T) {
			if count := strings.Count(span, blockBeginPrefix+"Kubernetes"); count != 1 {
				t.Errorf("Kubernetes block emitted %d times in %s, want 1", count, region)
			}
		})
	}

	parsed := parseJSON(t, document)
	vscode := vscodeSection(t, parsed)
	extensions := vscode["extensions"].([]any)
	seen := make(map[string]int)
	for _, extension := range extensions {
		seen[extension.(string)]++
	}
	for name, count := range seen {
		if count > 1 {
			t.Errorf("extension %q emitted %d times", name, count)
		}
	}
}

func TestComposeSelectionOrderDrivesBlocks(t *testing.T) {
	document := compose(t, feature.Selection{
		Chosen: []string{"python", "kubectl"},
	}, ComposeOptions{})

	base := strings.Index(document, blockBeginPrefix+"Base")
	python := strings.Index(document, blockBeginPrefix+"Python")
	kubernetes := strings.Index(document, blockBeginPrefix+"Kubernetes")
	if base < 0 || python < 0 || kubernetes < 0 {
		t.Fatalf("expected Base, Python, Kubernetes blocks:\n%s", document)
	}
	if !(base < python && python < kubernetes) {
		t.Errorf("blocks out of order: Base@%d Python@%d Kubernetes@%d", base, python, kubernetes)
	}
}

func TestComposeSeparatorCorrectness(t *testing.T) {
	tests := []struct {
		name      string
		selection feature.Selection
	}{
		{"empty selection", feature.Selection{}},
		{"single tool", feature.Selection{Chosen: []string{"kubectl"}}},
		{"full selection", feature.Selection{Chosen: []string{"kubectl", "helm", "k9s", "golang", "python", "mixed"}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			document := compose(t, test.selection, ComposeOptions{})

			// Strict json.Unmarshal after comment stripping rejects a
			// trailing comma before ] or }, and a missing comma
			// between entries. That is the whole separator contract.
			parsed := parseJSON(t, document)
			vscode := vscodeSection(t, parsed)
			if _, ok := vscode["extensions"].([]any); !ok {
				t.Error("extensions array missing from composed document")
			}
			if _, ok := vscode["settings"].(map[string]any); !ok {
				t.Error("settings object missing from composed document")
			}
		})
	}
}

func TestComposeNestedSeparatorsUntouched(t *testing.T) {
	// gopls is a nested group inside the Go settings block. Its
	// internal separator handling must survive even when Go is the
	// last emitted block.
	document := compose(t, feature.Selection{Chosen: []string{"golang"}}, ComposeOptions{})

	parsed := parseJSON(t, document)
	vscode := vscodeSection(t, parsed)
	settings := vscode["settings"].(map[string]any)
	gopls, ok := settings["gopls"].(map[string]any)
	if !ok {
		t.Fatalf("gopls nested group missing: %v", settings)
	}
	if gopls["ui.semanticTokens"] != true {
		t.Errorf("nested gopls content damaged: %v", gopls)
	}
}

func TestComposeMissingBlockSkipped(t *testing.T) {
	// "ghost" maps to a block absent from the template: skipped with
	// a warning, not fatal, and the rest of the selection survives.
	document := compose(t, feature.Selection{Chosen: []string{"ghost", "golang"}}, ComposeOptions{})

	if strings.Contains(document, "NoSuchBlock") {
		t.Error("missing block name must not appear in output")
	}
	if !strings.Contains(document, blockBeginPrefix+"Go") {
		t.Error("valid selection must survive a missing-block skip")
	}
}

func TestComposeMarkersPreserved(t *testing.T) {
	// The composed document keeps the block markers, so it is itself
	// a valid, smaller template.
	document := compose(t, feature.Selection{Chosen: []string{"kubectl"}}, ComposeOptions{})

	recomposed, err := Parse([]byte(document))
	if err != nil {
		t.Fatalf("composed document does not re-parse as a template: %v", err)
	}
	names := recomposed.extensions.names()
	want := []string{"Base", "Kubernetes"}
	if len(names) != len(want) {
		t.Fatalf("expected blocks %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("block %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestComposeProjectName(t *testing.T) {
	document := compose(t, feature.Selection{}, ComposeOptions{ProjectName: "my-project"})

	parsed := parseJSON(t, document)
	if parsed["name"] != "my-project" {
		t.Errorf("expected name %q, got %v", "my-project", parsed["name"])
	}
}

func TestComposeHeaderTemplatesBlock(t *testing.T) {
	document := compose(t, feature.Selection{Chosen: []string{"golang"}}, ComposeOptions{
		Company: "Acme Corp",
		Year:    2026,
		Headers: map[string]string{
			"go": "Copyright ${company} ${year}",
		},
	})

	parsed := parseJSON(t, document)
	vscode := vscodeSection(t, parsed)
	settings := vscode["settings"].(map[string]any)

	variables, ok := settings["psi-header.variables"].([]any)
	if !ok {
		t.Fatalf("psi-header.variables missing: %v", settings)
	}
	if len(variables) != 2 {
		t.Errorf("expected 2 psi-header variables, got %d", len(variables))
	}

	templates, ok := settings["psi-header.templates"].([]any)
	if !ok {
		t.Fatal("psi-header.templates missing")
	}
	// go entry plus the default wildcard.
	if len(templates) != 2 {
		t.Fatalf("expected 2 template entries, got %d: %v", len(templates), templates)
	}
	first := templates[0].(map[string]any)
	if first["language"] != "go" {
		t.Errorf("expected go entry first, got %v", first["language"])
	}
	template := first["template"].([]any)
	if template[0] != "Copyright Acme Corp 2026" {
		t.Errorf("placeholder substitution failed: %v", template[0])
	}
	last := templates[len(templates)-1].(map[string]any)
	if last["language"] != WildcardLanguage {
		t.Errorf("expected wildcard entry last, got %v", last["language"])
	}
}

func TestComposeNoCompanyNoHeaders(t *testing.T) {
	document := compose(t, feature.Selection{}, ComposeOptions{})
	if strings.Contains(document, "psi-header") {
		t.Error("no company configured: no header material expected")
	}
}

func TestParseRejectsUnterminatedBlock(t *testing.T) {
	// Drop the extensions region's End Base marker.
	broken := strings.Replace(sampleDevcontainer, "                // #### End Base\n", "", 1)

	_, err := Parse([]byte(broken))
	var unterminated *UnterminatedBlockError
	if !errors.As(err, &unterminated) {
		t.Fatalf("expected UnterminatedBlockError, got %v", err)
	}
	if unterminated.Block != "Base" {
		t.Errorf("expected block Base, got %q", unterminated.Block)
	}
}

func TestParseRejectsLooseRegionContent(t *testing.T) {
	broken := strings.Replace(sampleDevcontainer,
		"                // #### Begin Base",
		"                \"loose.extension\",\n                // #### Begin Base", 1)

	if _, err := Parse([]byte(broken)); err == nil {
		t.Fatal("expected error for region content outside any block")
	}
}
