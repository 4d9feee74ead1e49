// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
)

const testManifest = `[tools]
#### Begin Kubernetes
#### Select Version
kubectl = "latest"
helm = "latest"
#### End Kubernetes
#### Begin Go
golang = "1.23"
#### End Go

[settings]
experimental = true
`

const testDevcontainer = `{
    "name": "dev-container",
    "customizations": {
        "vscode": {
            "extensions": [
                // #### Begin Base
                "editorconfig.editorconfig",
                // #### End Base
                // #### Begin Kubernetes
                "ms-kubernetes-tools.vscode-kubernetes-tools",
                // #### End Kubernetes
                // #### Begin Go
                "golang.go",
                // #### End Go
            ],
            "settings": {
                // #### Begin Base
                "editor.formatOnSave": true,
                // #### End Base
                // #### Begin Kubernetes
                "vs-kubernetes": {
                    "vs-kubernetes.crd-code-completion": "enabled",
                },
                // #### End Kubernetes
                // #### Begin Go
                "go.useLanguageServer": true,
                // #### End Go
            },
        },
    },
}
`

var testFeatures = feature.Map{
	"kubectl": {"Kubernetes"},
	"helm":    {"Kubernetes"},
	"golang":  {"Go"},
}

func testInputs(selection feature.Selection) Inputs {
	return Inputs{
		ManifestTemplate:     []byte(testManifest),
		DevcontainerTemplate: []byte(testDevcontainer),
		Selection:            selection,
		Features:             testFeatures,
	}
}

func TestRunComposesBothDocuments(t *testing.T) {
	result, err := Run(testInputs(feature.Selection{
		Chosen:   []string{"kubectl"},
		Versions: map[string]string{"kubectl": "1.31"},
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(result.Manifest, `kubectl = "1.31"`) {
		t.Errorf("manifest missing pinned kubectl:\n%s", result.Manifest)
	}
	if strings.Contains(result.Manifest, "golang") {
		t.Errorf("unselected golang leaked into manifest:\n%s", result.Manifest)
	}
	if !strings.Contains(result.Devcontainer, "ms-kubernetes-tools.vscode-kubernetes-tools") {
		t.Errorf("devcontainer missing Kubernetes extension:\n%s", result.Devcontainer)
	}
	if strings.Contains(result.Devcontainer, "golang.go") {
		t.Errorf("unselected Go block leaked into devcontainer:\n%s", result.Devcontainer)
	}
}

func TestRunParseErrorNoResult(t *testing.T) {
	inputs := testInputs(feature.Selection{})
	inputs.ManifestTemplate = []byte("#### Begin Dangling\nkubectl = \"latest\"\n")

	if _, err := Run(inputs); err == nil {
		t.Fatal("expected parse error for unterminated section")
	}
}

func TestWriteCreatesBothFiles(t *testing.T) {
	result, err := Run(testInputs(feature.Selection{Chosen: []string{"golang"}}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	target := t.TempDir()
	if err := result.Write(target, DefaultPaths()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	manifestData, err := os.ReadFile(filepath.Join(target, "mise.toml"))
	if err != nil {
		t.Fatalf("reading written manifest: %v", err)
	}
	if string(manifestData) != result.Manifest {
		t.Error("written manifest differs from composed document")
	}

	devcontainerData, err := os.ReadFile(filepath.Join(target, ".devcontainer", "devcontainer.json"))
	if err != nil {
		t.Fatalf("reading written devcontainer: %v", err)
	}
	if string(devcontainerData) != result.Devcontainer {
		t.Error("written devcontainer differs from composed document")
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	result, err := Run(testInputs(feature.Selection{Chosen: []string{"golang"}}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	target := t.TempDir()
	paths := DefaultPaths()
	if err := os.WriteFile(filepath.Join(target, paths.Manifest), []byte("old content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := result.Write(target, paths); err != nil {
		t.Fatalf("Write over existing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(target, paths.Manifest))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "old content" {
		t.Error("existing manifest was not replaced")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(target)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("leftover temp file %q", entry.Name())
		}
	}
}
