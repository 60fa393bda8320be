// Package markup renders the lightweight inline markup found in verse text.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Format selects how verse text is returned to clients.
type Format string

const (
	FormatRaw   Format = "raw"
	FormatPlain Format = "plain"
	FormatHTML  Format = "html"
)

const pilcrow = "¶"

// Renderer converts verse text to plain text or inline HTML.
// It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
		),
	}
}

// Render applies format to text. FormatRaw returns text unchanged.
func (r *Renderer) Render(format Format, text string) (string, error) {
	switch format {
	case FormatRaw, "":
		return text, nil
	case FormatPlain:
		return r.Plain(text), nil
	case FormatHTML:
		return r.HTML(text)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// Plain strips inline markup, keeping only the readable text.
func (r *Renderer) Plain(src string) string {
	source := []byte(strings.ReplaceAll(src, pilcrow, ""))
	doc := r.md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
		case *ast.Paragraph, *ast.Heading:
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

// HTML renders text as inline HTML (no wrapping paragraph).
// Raw HTML in the input is not passed through.
func (r *Renderer) HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(strings.ReplaceAll(src, pilcrow, "")), &buf); err != nil {
		return "", fmt.Errorf("convert markup: %w", err)
	}

	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return out, nil
}
