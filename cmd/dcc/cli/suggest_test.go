// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition (counted as 2 edits)
		{"kitten", "sitting", 3},
		{"compose", "compsoe", 2},
		{"doctor", "docotr", 2},
		{"install", "instal", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"/"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestLevenshteinSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abd"},
		{"hello", "helo"},
		{"compose", "compsoe"},
	}

	for _, pair := range pairs {
		forward := levenshtein(pair[0], pair[1])
		reverse := levenshtein(pair[1], pair[0])
		if forward != reverse {
			t.Errorf("levenshtein(%q, %q) = %d, but reverse = %d",
				pair[0], pair[1], forward, reverse)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "compose"},
		{Name: "install"},
		{Name: "tools"},
		{Name: "snapshot"},
		{Name: "doctor"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"compsoe", "compose"},   // transposition
		{"instal", "install"},    // missing letter
		{"installl", "install"},  // extra letter
		{"snapsht", "snapshot"},  // missing letter
		{"docotr", "doctor"},     // transposition
		{"zzzzzzzzz", ""},        // nothing close
	}

	for _, test := range tests {
		got := suggestCommand(test.input, commands)
		if got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("compose", pflag.ContinueOnError)
		flagSet.String("target", "", "")
		flagSet.Bool("dry-run", false, "")
		flagSet.String("project-name", "", "")
		return flagSet
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--targt", "x"}, "--target"},
		{[]string{"--dryrun"}, "--dry-run"},
		{[]string{"--project-nam=y"}, "--project-name"},
		{[]string{"--target", "x"}, ""},    // defined flag, no suggestion
		{[]string{"--zzzzzzzz"}, ""},       // nothing close
		{[]string{"positional"}, ""},       // not a flag
	}

	for _, test := range tests {
		got := suggestFlag(test.args, newFlags())
		if got != test.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
