// Package render converts API content into terminal-displayable text.
// Summaries arrive as HTML fragments; chat answers and lyrics arrive as
// markdown.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/net/html"
)

// HTMLText linearizes an HTML fragment into plain text. Paragraphs and
// headings become blank-line separated blocks, list items become bullet
// lines. Input without markup comes back unchanged, so plain-text
// summaries and sentinel values survive as-is.
func HTMLText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tidy(b.String())
		case html.TextToken:
			b.WriteString(collapseSpace(string(tokenizer.Text())))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "p", "div", "h1", "h2", "h3", "h4", "ul", "ol":
				b.WriteString("\n\n")
			case "li":
				b.WriteString("\n- ")
			case "br":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "p", "div", "h1", "h2", "h3", "h4", "ul", "ol":
				b.WriteString("\n\n")
			}
		}
	}
}

// Markdown renders markdown for the terminal at the given wrap width.
// On render failure the raw text is returned so content is never lost.
func Markdown(s string, width int) string {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return s
	}
	out, err := renderer.Render(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(out, "\n")
}

// collapseSpace squeezes internal whitespace runs while keeping a single
// edge space, so text split across inline tags keeps its word boundaries.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if s != strings.TrimLeft(s, " \t\n\r") {
		out = " " + out
	}
	if s != strings.TrimRight(s, " \t\n\r") {
		out += " "
	}
	return out
}

// tidy trims the edges and squeezes runs of blank lines down to one.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
