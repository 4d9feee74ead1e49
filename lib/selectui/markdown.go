// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package selectui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownParserInstance is initialized once and reused. The parser
// configuration never changes and the goldmark Parser is safe to
// share — actual parsing creates per-call state via Parse(reader).
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParserInstance
}

// renderMarkdown renders a tool description as styled terminal text
// wrapped to width. Soft line breaks reflow; fenced code blocks are
// syntax-highlighted with chroma.
func renderMarkdown(input string, theme Theme, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Force the ANSI256 color profile: this output is always for the
	// bubbletea TUI, so auto-detection (which sees no TTY in tests)
	// must be bypassed.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks a goldmark AST and accumulates styled text.
// Paragraph inline content collects in a buffer and is word-wrapped
// as a unit when the paragraph closes.
type markdownRenderer struct {
	source      []byte
	theme       Theme
	width       int
	lipRenderer *lipgloss.Renderer

	output    strings.Builder
	paragraph strings.Builder
	listDepth int
}

func (r *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch typed := node.(type) {
	case *ast.Heading:
		if entering {
			style := r.lipRenderer.NewStyle().
				Bold(true).
				Foreground(r.theme.HeadingForeground)
			r.output.WriteString(style.Render(string(typed.Text(r.source))))
			r.output.WriteString("\n\n")
		}
		return ast.WalkSkipChildren, nil

	case *ast.Paragraph:
		if entering {
			r.paragraph.Reset()
		} else {
			r.flushParagraph()
		}
		return ast.WalkContinue, nil

	case *ast.Text:
		if entering {
			r.paragraph.Write(typed.Segment.Value(r.source))
			if typed.SoftLineBreak() {
				r.paragraph.WriteByte(' ')
			} else if typed.HardLineBreak() {
				r.paragraph.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil

	case *ast.CodeSpan:
		if entering {
			style := r.lipRenderer.NewStyle().
				Foreground(r.theme.CodeForeground).
				Background(r.theme.CodeBackground)
			r.paragraph.WriteString(style.Render(string(typed.Text(r.source))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		if entering {
			r.renderCodeBlock(typed)
		}
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if entering {
			r.listDepth++
		} else {
			r.listDepth--
			if r.listDepth == 0 {
				r.output.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil

	case *ast.ListItem:
		if entering {
			indent := strings.Repeat("  ", r.listDepth-1)
			r.output.WriteString(indent + "• ")
			r.output.WriteString(string(firstLineText(typed, r.source)))
			r.output.WriteByte('\n')
		}
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

// flushParagraph word-wraps the accumulated inline content and
// appends it to the output.
func (r *markdownRenderer) flushParagraph() {
	content := strings.TrimSpace(r.paragraph.String())
	if content == "" {
		return
	}
	r.output.WriteString(ansi.Wordwrap(content, r.width, " "))
	r.output.WriteString("\n\n")
}

// renderCodeBlock highlights a fenced code block with chroma. On any
// highlighting error the raw source is emitted instead.
func (r *markdownRenderer) renderCodeBlock(block *ast.FencedCodeBlock) {
	var code strings.Builder
	for i := 0; i < block.Lines().Len(); i++ {
		segment := block.Lines().At(i)
		code.Write(segment.Value(r.source))
	}

	language := string(block.Language(r.source))
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, code.String(), language, "terminal256", "monokai"); err != nil {
		highlighted.Reset()
		highlighted.WriteString(code.String())
	}

	for line := range strings.SplitSeq(strings.TrimRight(highlighted.String(), "\n"), "\n") {
		fmt.Fprintf(&r.output, "  %s\n", line)
	}
	r.output.WriteByte('\n')
}

// firstLineText extracts the plain text of a list item's first child
// paragraph.
func firstLineText(item *ast.ListItem, source []byte) []byte {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if textBlock, ok := child.(*ast.TextBlock); ok {
			return textBlock.Text(source)
		}
		if paragraph, ok := child.(*ast.Paragraph); ok {
			return paragraph.Text(source)
		}
	}
	return nil
}
