package textextract

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown reads the text of a Markdown document without its markup, one
// block per line.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Extract(ctx context.Context, data []byte) (string, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var lines []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if t := blockText(n, data); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// blockText collects the inline text of n, descending into nested blocks
// such as list items and block quotes.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		if s := blockText(c, src); s != "" {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}
