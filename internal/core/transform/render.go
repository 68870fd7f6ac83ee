package transform

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// annotatedBlocks overrides the renderers whose goldmark defaults drop
// node attributes, so the data-line annotation survives on code blocks
// and thematic breaks the same way it does on headings and paragraphs.
type annotatedBlocks struct{}

func (annotatedBlocks) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, renderCodeBlock)
	reg.Register(ast.KindThematicBreak, renderThematicBreak)
}

func renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)
	_, _ = w.WriteString("<pre")
	html.RenderAttributes(w, n, html.GlobalAttributeFilter)
	_, _ = w.WriteString("><code")
	if language := n.Language(source); language != nil {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML(language))
		_, _ = w.WriteString(`"`)
	}
	_ = w.WriteByte('>')
	writeEscapedLines(w, source, n)
	return ast.WalkContinue, nil
}

func renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<pre")
	html.RenderAttributes(w, node, html.GlobalAttributeFilter)
	_, _ = w.WriteString("><code>")
	writeEscapedLines(w, source, node)
	return ast.WalkContinue, nil
}

func renderThematicBreak(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<hr")
	html.RenderAttributes(w, node, html.GlobalAttributeFilter)
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func writeEscapedLines(w util.BufWriter, source []byte, n ast.Node) {
	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
}
