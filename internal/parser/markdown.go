package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Heading markup is
// dropped so "# Chapter 1: Intro" reads as a plain heading line.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	src = []byte(DecodeText(src))

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var out blocks
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			out.add(string(node.Text(src)))
		case *ast.ThematicBreak:
			// Skip horizontal rules.
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				out.add(extractText(item, src))
			}
		default:
			out.add(extractText(n, src))
		}
	}
	return out.String(), nil
}

// extractText gets the text content of a goldmark AST node. Leaf blocks such
// as code blocks carry raw lines; everything else is rendered from its inline
// children so emphasis markup is dropped.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
