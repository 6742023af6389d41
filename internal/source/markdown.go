package source

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Flatten converts markdown to plain text. Blocks are separated by blank
// lines, list items keep a bullet, code blocks keep their lines and inline
// markup is dropped in favor of its text.
func Flatten(src []byte) string {
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = flattenBlock(n, src, blocks)
	}
	return strings.Join(blocks, "\n\n")
}

func flattenBlock(n ast.Node, src []byte, out []string) []string {
	switch n := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		if s := strings.TrimSpace(inlineText(n, src)); s != "" {
			out = append(out, s)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		if s := strings.TrimRight(b.String(), "\n"); s != "" {
			out = append(out, s)
		}

	case *ast.List:
		var items []string
		num := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			var parts []string
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				parts = flattenBlock(c, src, parts)
			}
			// "1. " would be split into its own line, so ordered items use ')'.
			bullet := "- "
			if n.IsOrdered() {
				bullet = strconv.Itoa(num) + ") "
				num++
			}
			items = append(items, bullet+strings.Join(parts, "\n"))
		}
		if len(items) > 0 {
			out = append(out, strings.Join(items, "\n"))
		}

	case *ast.ThematicBreak, *ast.HTMLBlock:

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = flattenBlock(c, src, out)
		}
	}
	return out
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			switch {
			case c.HardLineBreak():
				b.WriteByte('\n')
			case c.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.URL(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
