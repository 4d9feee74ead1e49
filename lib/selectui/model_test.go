// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package selectui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/manifest"
)

const pickerTemplate = `#### Begin Kubernetes
#### Select Version
kubectl = "1.30.2"
helm = "3.15.3"
k9s = "0.32.5"
#### End Kubernetes

#### Begin Go
golang = "1.22.5"
#### Select Version
golangci-lint = "1.59.1"
#### End Go
`

func parsePickerBlocks(t *testing.T) []manifest.Block {
	t.Helper()
	blocks, err := manifest.Parse([]byte(pickerTemplate))
	if err != nil {
		t.Fatalf("parsing picker template: %v", err)
	}
	return blocks
}

// press feeds one key event into the model and returns the updated
// model, discarding any command.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return model
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelRowsSkipEmptySections(t *testing.T) {
	blocks, err := manifest.Parse([]byte(
		"#### Begin Empty\n#### End Empty\n\n" + pickerTemplate))
	if err != nil {
		t.Fatalf("parsing template: %v", err)
	}
	m := New(blocks, nil, nil)
	for _, r := range m.rows {
		if r.section == "Empty" {
			t.Fatal("empty section produced rows")
		}
	}
}

func TestModelToggleSelectsTool(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)

	// Row 0 is the Kubernetes header; move to kubectl and toggle.
	m = press(t, m, keyRune('j'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})

	selection := m.Selection()
	if !selection.Has("kubectl") {
		t.Fatalf("kubectl not selected, chosen = %v", selection.Chosen)
	}

	// Toggling again deselects.
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Selection().Has("kubectl") {
		t.Fatal("kubectl still selected after second toggle")
	}
}

func TestModelSelectionPreservesPickOrder(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)

	// Select helm first (row 2), then kubectl (row 1).
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('j'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(t, m, keyRune('k'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})

	chosen := m.Selection().Chosen
	want := []string{"helm", "kubectl"}
	if len(chosen) != len(want) {
		t.Fatalf("chosen = %v, want %v", chosen, want)
	}
	for i := range want {
		if chosen[i] != want[i] {
			t.Fatalf("chosen = %v, want %v", chosen, want)
		}
	}
}

func TestModelSectionToggle(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)

	// 'a' on the Kubernetes header selects every tool in it.
	m = press(t, m, keyRune('a'))
	selection := m.Selection()
	for _, tool := range []string{"kubectl", "helm", "k9s"} {
		if !selection.Has(tool) {
			t.Fatalf("%s not selected after section toggle", tool)
		}
	}
	if selection.Has("golang") {
		t.Fatal("section toggle leaked into Go section")
	}

	// A second 'a' deselects the whole section.
	m = press(t, m, keyRune('a'))
	if len(m.Selection().Chosen) != 0 {
		t.Fatalf("section still selected: %v", m.Selection().Chosen)
	}
}

func TestModelFilterNarrowsVisibleRows(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)
	total := len(m.visible)

	m = press(t, m, keyRune('/'))
	if !m.filterActive {
		t.Fatal("filter did not activate")
	}
	for _, r := range "helm" {
		m = press(t, m, keyRune(r))
	}
	if len(m.visible) >= total {
		t.Fatalf("filter did not narrow rows: %d of %d visible", len(m.visible), total)
	}

	foundHelm := false
	for _, i := range m.visible {
		r := m.rows[i]
		if !r.header && r.entry.Name == "helm" {
			foundHelm = true
		}
		if !r.header && r.entry.Name == "golang" {
			t.Fatal("golang visible under filter \"helm\"")
		}
	}
	if !foundHelm {
		t.Fatal("helm not visible under its own filter")
	}

	// Esc clears the filter and restores all rows.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.visible) != total {
		t.Fatalf("after clear: %d of %d rows visible", len(m.visible), total)
	}
}

func TestModelFilterKeepsSectionHeaders(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)
	m = press(t, m, keyRune('/'))
	for _, r := range "kubectl" {
		m = press(t, m, keyRune(r))
	}
	hasHeader := false
	for _, i := range m.visible {
		if m.rows[i].header && m.rows[i].section == "Kubernetes" {
			hasHeader = true
		}
	}
	if !hasHeader {
		t.Fatal("Kubernetes header hidden while kubectl matches")
	}
}

func TestPickerTemplateVersionMarkers(t *testing.T) {
	// The prompt tests below rely on exactly these entries carrying a
	// Select Version marker; a marker binds to the entry that follows
	// it.
	blocks := parsePickerBlocks(t)
	for name, want := range map[string]bool{
		"kubectl":       true,
		"helm":          false,
		"k9s":           false,
		"golang":        false,
		"golangci-lint": true,
	} {
		entry, ok := manifest.Lookup(blocks, name)
		if !ok {
			t.Fatalf("%s missing from picker template", name)
		}
		if entry.VersionConfigurable != want {
			t.Errorf("%s: configurable = %v, want %v", name, entry.VersionConfigurable, want)
		}
	}
}

func TestModelVersionPromptPinsAndSelects(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)

	// kubectl is version-configurable; open the prompt on it.
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('v'))
	if !m.promptActive {
		t.Fatal("version prompt did not open")
	}

	for _, r := range "1.29.0" {
		m = press(t, m, keyRune(r))
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.promptActive {
		t.Fatal("prompt still open after enter")
	}

	selection := m.Selection()
	if !selection.Has("kubectl") {
		t.Fatal("pinning a version did not select the tool")
	}
	if got, ok := selection.Version("kubectl"); !ok || got != "1.29.0" {
		t.Fatalf("pinned version = %q (%v), want 1.29.0", got, ok)
	}
}

func TestModelVersionPromptIgnoresNonConfigurable(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)

	// helm has no Select Version marker.
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('v'))
	if m.promptActive {
		t.Fatal("prompt opened for a non-configurable entry")
	}
}

func TestModelVersionSuggestionsArriveAsync(t *testing.T) {
	catalog := versioncatStatic{
		"kubectl": {"1.28.0", "1.29.0", "1.30.2"},
	}
	m := New(parsePickerBlocks(t), nil, catalog)
	m = press(t, m, keyRune('j'))

	updated, cmd := m.Update(keyRune('v'))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("opening the prompt returned no command")
	}

	// Deliver the versions message directly rather than executing the
	// batch; the model must order suggestions newest first.
	updated, _ = m.Update(versionsMsg{
		tool:     "kubectl",
		versions: []string{"1.28.0", "1.29.0", "1.30.2"},
	})
	m = updated.(Model)
	if len(m.promptSuggestions) == 0 {
		t.Fatal("no suggestions after versionsMsg")
	}
	if m.promptSuggestions[0] != "1.30.2" {
		t.Fatalf("suggestions[0] = %q, want newest version first", m.promptSuggestions[0])
	}
}

func TestModelConfirmAndAbort(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.confirmed || m.Aborted() {
		t.Fatal("enter did not confirm")
	}

	m = New(parsePickerBlocks(t), nil, nil)
	m = press(t, m, keyRune('q'))
	if !m.Aborted() {
		t.Fatal("q did not abort")
	}
}

func TestModelViewRendersSelection(t *testing.T) {
	m := New(parsePickerBlocks(t), nil, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	m = press(t, m, keyRune('j'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})

	view := m.View()
	if !strings.Contains(view, "kubectl") {
		t.Fatal("view does not show kubectl")
	}
	if !strings.Contains(view, "1 selected") {
		t.Fatal("view does not show the selection count")
	}
}

// versioncatStatic adapts a map to the version catalog interface so
// prompt tests need no mise binary.
type versioncatStatic map[string][]string

func (s versioncatStatic) Versions(_ context.Context, tool string) ([]string, error) {
	return s[tool], nil
}
