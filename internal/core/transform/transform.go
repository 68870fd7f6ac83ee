// Package transform converts markdown text to sanitized HTML in which
// every rendered block carries a data-line attribute naming the 1-based
// source line it came from. The scroll sync machinery recovers those
// attributes to map between editor lines and preview offsets.
package transform

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Pipeline renders markdown to sanitized, line-annotated HTML.
// It is a pure function of its input and safe for concurrent use.
type Pipeline struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New constructs a pipeline with GFM extensions enabled.
func New() *Pipeline {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(lineAnnotator{}, 100),
			),
		),
		// Raw HTML passes through goldmark and is stripped by the
		// sanitizer afterwards, so inline HTML degrades instead of
		// vanishing wholesale.
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(annotatedBlocks{}, 100),
			),
		),
	)

	policy := bluemonday.UGCPolicy()
	// data-line must survive sanitization; scripts, event handlers and
	// unsafe URLs must not. The language class on code fences feeds the
	// preview's highlighter.
	policy.AllowDataAttributes()
	policy.AllowAttrs("class").
		Matching(regexp.MustCompile(`^language-[a-zA-Z0-9+#-]+$`)).
		OnElements("code")

	return &Pipeline{md: md, policy: policy}
}

// Render converts markdown to sanitized HTML.
func (p *Pipeline) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return p.policy.Sanitize(buf.String()), nil
}
