// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package selectui is the interactive tool picker: a bubbletea
// multi-select over the manifest template's sections, with fuzzy
// filtering, per-tool version pinning for configurable entries, and a
// markdown description pane fed by the tool catalog. Its only output
// is a feature.Selection — the composers never import this package.
package selectui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/manifest"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/versioncat"
)

// row is one visible line in the list: a section header or a tool.
type row struct {
	section string
	entry   manifest.ToolEntry // zero for header rows
	header  bool
}

// versionsMsg delivers an async version listing for the prompt.
type versionsMsg struct {
	tool     string
	versions []string
	err      error
}

// Model is the bubbletea model for the picker.
type Model struct {
	rows    []row
	visible []int // indexes into rows after filtering
	cursor  int   // index into visible
	offset  int   // scroll offset into visible

	selected map[string]bool
	versions map[string]string
	order    []string // selection order of tool names

	keys  KeyMap
	theme Theme

	filter       textinput.Model
	filterActive bool

	prompt            textinput.Model
	promptActive      bool
	promptTool        string
	promptSuggestions []string

	catalog        *feature.Catalog
	versionCatalog versioncat.Catalog

	width  int
	height int

	confirmed bool
	aborted   bool
}

// New builds a picker over the parsed manifest template. The version
// catalog may be nil (no suggestions in the version prompt).
func New(blocks []manifest.Block, catalog *feature.Catalog, versions versioncat.Catalog) Model {
	var rows []row
	for _, section := range manifest.Sections(blocks) {
		if len(section.Entries) == 0 {
			continue
		}
		rows = append(rows, row{section: section.Name, header: true})
		for _, entry := range section.Entries {
			rows = append(rows, row{section: section.Name, entry: entry})
		}
	}

	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter tools"

	prompt := textinput.New()
	prompt.Prompt = "version: "

	model := Model{
		rows:           rows,
		selected:       make(map[string]bool),
		versions:       make(map[string]string),
		keys:           DefaultKeyMap,
		theme:          DefaultTheme,
		filter:         filter,
		prompt:         prompt,
		catalog:        catalog,
		versionCatalog: versions,
		width:          80,
		height:         24,
	}
	model.applyFilter()
	return model
}

// Selection returns the picker's outcome in selection order.
func (m Model) Selection() feature.Selection {
	var selection feature.Selection
	for _, tool := range m.order {
		if !m.selected[tool] {
			continue
		}
		selection.Add(tool, m.versions[tool])
	}
	return selection
}

// Aborted reports whether the user quit without confirming.
func (m Model) Aborted() bool {
	return m.aborted
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case versionsMsg:
		if m.promptActive && msg.tool == m.promptTool && msg.err == nil {
			// Newest versions first for suggestion display.
			suggestions := append([]string(nil), msg.versions...)
			for i, j := 0, len(suggestions)-1; i < j; i, j = i+1, j-1 {
				suggestions[i], suggestions[j] = suggestions[j], suggestions[i]
			}
			if len(suggestions) > 8 {
				suggestions = suggestions[:8]
			}
			m.promptSuggestions = suggestions
		}
		return m, nil

	case tea.KeyMsg:
		if m.promptActive {
			return m.updatePrompt(msg)
		}
		if m.filterActive {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

// updateList handles keys in the normal list state.
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		m.confirmed = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.pageSize())

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.pageSize())

	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		m.offset = 0

	case key.Matches(msg, m.keys.End):
		m.cursor = len(m.visible) - 1
		m.clampScroll()

	case key.Matches(msg, m.keys.Toggle):
		if current, ok := m.currentRow(); ok && !current.header {
			m.toggle(current.entry.Name)
		}

	case key.Matches(msg, m.keys.ToggleSection):
		if current, ok := m.currentRow(); ok {
			m.toggleSection(current.section)
		}

	case key.Matches(msg, m.keys.Version):
		if current, ok := m.currentRow(); ok && !current.header && current.entry.VersionConfigurable {
			return m.openPrompt(current.entry)
		}

	case key.Matches(msg, m.keys.FilterActivate):
		m.filterActive = true
		m.filter.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.FilterClear):
		m.filter.SetValue("")
		m.applyFilter()
	}

	return m, nil
}

// updateFilter handles keys while the filter input has focus.
func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FilterClear):
		m.filterActive = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		// Enter leaves filter mode with the filter applied.
		m.filterActive = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// updatePrompt handles keys while the version prompt is open.
func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		if value == "" {
			delete(m.versions, m.promptTool)
		} else {
			m.versions[m.promptTool] = value
			// Pinning implies selecting.
			if !m.selected[m.promptTool] {
				m.toggle(m.promptTool)
			}
		}
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// openPrompt opens the version prompt for a configurable entry and
// kicks off the async version fetch.
func (m Model) openPrompt(entry manifest.ToolEntry) (tea.Model, tea.Cmd) {
	m.promptActive = true
	m.promptTool = entry.Name
	m.promptSuggestions = nil
	m.prompt.SetValue(m.versions[entry.Name])
	m.prompt.Focus()

	commands := []tea.Cmd{textinput.Blink}
	if m.versionCatalog != nil {
		catalog := m.versionCatalog
		tool := entry.Name
		commands = append(commands, func() tea.Msg {
			versions, err := catalog.Versions(context.Background(), tool)
			return versionsMsg{tool: tool, versions: versions, err: err}
		})
	}
	return m, tea.Batch(commands...)
}

func (m *Model) closePrompt() {
	m.promptActive = false
	m.promptTool = ""
	m.promptSuggestions = nil
	m.prompt.Blur()
	m.prompt.SetValue("")
}

// toggle flips one tool's selection, tracking first-selection order.
func (m *Model) toggle(tool string) {
	if m.selected[tool] {
		m.selected[tool] = false
		return
	}
	m.selected[tool] = true
	for _, existing := range m.order {
		if existing == tool {
			return
		}
	}
	m.order = append(m.order, tool)
}

// toggleSection selects every tool in a section, or deselects all of
// them when all are already selected.
func (m *Model) toggleSection(section string) {
	allSelected := true
	for _, r := range m.rows {
		if !r.header && r.section == section && !m.selected[r.entry.Name] {
			allSelected = false
			break
		}
	}
	for _, r := range m.rows {
		if r.header || r.section != section {
			continue
		}
		if allSelected {
			m.selected[r.entry.Name] = false
		} else if !m.selected[r.entry.Name] {
			m.toggle(r.entry.Name)
		}
	}
}

// applyFilter recomputes the visible row set. With a filter query,
// tool rows are fuzzy-matched on "section/name"; a section header is
// visible while any of its tools are.
func (m *Model) applyFilter() {
	query := []rune(m.filter.Value())
	m.visible = m.visible[:0]

	if len(query) == 0 {
		for i := range m.rows {
			m.visible = append(m.visible, i)
		}
	} else {
		slab := newSlab()
		matched := make(map[int]bool)
		sectionHasMatch := make(map[string]bool)
		for i, r := range m.rows {
			if r.header {
				continue
			}
			result := fuzzyMatch(r.section+"/"+r.entry.Name, query, slab)
			if result.Score > 0 {
				matched[i] = true
				sectionHasMatch[r.section] = true
			}
		}
		for i, r := range m.rows {
			if r.header && sectionHasMatch[r.section] {
				m.visible = append(m.visible, i)
			} else if matched[i] {
				m.visible = append(m.visible, i)
			}
		}
	}

	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

func (m Model) currentRow() (row, bool) {
	if len(m.visible) == 0 {
		return row{}, false
	}
	return m.rows[m.visible[m.cursor]], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.clampScroll()
}

func (m Model) pageSize() int {
	size := m.listHeight() - 1
	if size < 1 {
		size = 1
	}
	return size
}

func (m *Model) clampScroll() {
	height := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// listHeight is the number of rows the list pane can show.
func (m Model) listHeight() int {
	// Title, filter/status line, help line.
	height := m.height - 3
	if height < 3 {
		height = 3
	}
	return height
}

// listWidth is the width of the list pane; the remainder (minus a
// separator column) holds the description pane.
func (m Model) listWidth() int {
	width := m.width * 2 / 5
	if width < 30 {
		width = 30
	}
	if width > m.width {
		width = m.width
	}
	return width
}

// View implements tea.Model.
func (m Model) View() string {
	list := m.viewList()
	description := m.viewDescription()

	lines := make([]string, 0, m.listHeight()+3)
	lines = append(lines, m.viewTitle())

	listLines := strings.Split(list, "\n")
	descriptionLines := strings.Split(description, "\n")
	listWidth := m.listWidth()
	for i := 0; i < m.listHeight(); i++ {
		var left, right string
		if i < len(listLines) {
			left = listLines[i]
		}
		if i < len(descriptionLines) {
			right = descriptionLines[i]
		}
		padded := left + strings.Repeat(" ", max(0, listWidth-ansi.StringWidth(left)))
		lines = append(lines, ansi.Truncate(padded+" │ "+right, m.width, ""))
	}

	lines = append(lines, m.viewFooter())
	return strings.Join(lines, "\n")
}

func (m Model) viewTitle() string {
	count := 0
	for _, selected := range m.selected {
		if selected {
			count++
		}
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeadingForeground)
	return style.Render(fmt.Sprintf("dcc: select tools (%d selected)", count))
}

func (m Model) viewList() string {
	var out strings.Builder
	height := m.listHeight()
	width := m.listWidth()

	end := m.offset + height
	if end > len(m.visible) {
		end = len(m.visible)
	}

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.SectionForeground)
	checkedStyle := lipgloss.NewStyle().Foreground(m.theme.CheckedForeground)
	versionStyle := lipgloss.NewStyle().Foreground(m.theme.VersionForeground)
	cursorStyle := lipgloss.NewStyle().
		Background(m.theme.SelectedBackground).
		Foreground(m.theme.SelectedForeground)

	for i := m.offset; i < end; i++ {
		r := m.rows[m.visible[i]]
		var line string
		if r.header {
			line = sectionStyle.Render("▸ " + r.section)
		} else {
			check := "[ ]"
			if m.selected[r.entry.Name] {
				check = checkedStyle.Render("[x]")
			}
			line = "  " + check + " " + r.entry.Name
			if version, ok := m.versions[r.entry.Name]; ok && m.selected[r.entry.Name] {
				line += versionStyle.Render(" @" + version)
			} else if r.entry.VersionConfigurable {
				line += lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(" (v)")
			}
		}
		line = ansi.Truncate(line, width, "…")
		if i == m.cursor {
			line = cursorStyle.Render(ansi.Strip(line))
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return strings.TrimRight(out.String(), "\n")
}

func (m Model) viewDescription() string {
	current, ok := m.currentRow()
	if !ok || m.catalog == nil {
		return ""
	}
	name := current.section
	if !current.header {
		name = current.entry.Name
	}
	description := m.catalog.Describe(name)
	if description == "" {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("(no description)")
	}
	width := m.width - m.listWidth() - 3
	return renderMarkdown(description, m.theme, width)
}

func (m Model) viewFooter() string {
	helpStyle := lipgloss.NewStyle().Foreground(m.theme.HelpText)

	if m.promptActive {
		suggestions := ""
		if len(m.promptSuggestions) > 0 {
			suggestions = helpStyle.Render("  (" + strings.Join(m.promptSuggestions, ", ") + ")")
		}
		return m.promptTool + " " + m.prompt.View() + suggestions
	}
	if m.filterActive || m.filter.Value() != "" {
		return m.filter.View()
	}
	return helpStyle.Render("space toggle · a section · v version · / filter · enter confirm · q quit")
}

// Run drives the picker to completion and returns the selection.
// The second return is false when the user aborted.
func Run(ctx context.Context, blocks []manifest.Block, catalog *feature.Catalog, versions versioncat.Catalog) (feature.Selection, bool, error) {
	program := tea.NewProgram(New(blocks, catalog, versions), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return feature.Selection{}, false, fmt.Errorf("running tool picker: %w", err)
	}
	model := final.(Model)
	if model.Aborted() {
		return feature.Selection{}, false, nil
	}
	return model.Selection(), true, nil
}
