// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package selectui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching a pattern against one text:
// a relevance score (zero means no match) and the matched rune
// positions for highlighting.
type FuzzyResult struct {
	Score     int
	Positions []int
}

var fuzzyInitOnce sync.Once

// fuzzyMatch runs fzf's FuzzyMatchV2 against text. Matching is
// case-insensitive (the pattern is lowered here; fzf requires a
// lowercase pattern for smart-case-off matching). The slab is
// optional scratch space reused across calls within one filter pass.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}
	fuzzyInitOnce.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}
	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = *positions
	}
	return match
}

// newSlab allocates the scratch slab sized the way fzf itself does.
func newSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}
