// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package selectui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the picker. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Checked (included) tools.
	CheckedForeground lipgloss.Color

	// Pinned version annotations.
	VersionForeground lipgloss.Color

	// Section header rows.
	SectionForeground lipgloss.Color

	// UI chrome.
	BorderColor lipgloss.Color
	HelpText    lipgloss.Color

	// Filter match highlighting.
	MatchBackground lipgloss.Color

	// Markdown rendering in the description pane.
	HeadingForeground lipgloss.Color
	CodeForeground    lipgloss.Color
	CodeBackground    lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	CheckedForeground: lipgloss.Color("114"), // green
	VersionForeground: lipgloss.Color("220"), // amber

	SectionForeground: lipgloss.Color("75"), // blue

	BorderColor: lipgloss.Color("240"),
	HelpText:    lipgloss.Color("241"),

	MatchBackground: lipgloss.Color("58"), // dark amber

	HeadingForeground: lipgloss.Color("255"),
	CodeForeground:    lipgloss.Color("222"),
	CodeBackground:    lipgloss.Color("235"),
}
