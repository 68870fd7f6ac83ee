package transform

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LineAttribute is the attribute name carrying a block's starting
// source line through rendering and sanitization.
const LineAttribute = "data-line"

// lineAnnotator stamps every block node with the 1-based source line it
// starts on. Container blocks without segments of their own (lists,
// blockquotes) take the line of their first annotated descendant.
// Fenced code blocks and thematic breaks carry no usable segments in
// the AST, so their lines are recovered separately.
type lineAnnotator struct{}

func (lineAnnotator) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	starts := lineStarts(source)

	// End of the last segment seen so far, in document order. Thematic
	// breaks have no segments at all; they are located by scanning the
	// source forward from here.
	cursor := 0

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n == doc || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}

		switch b := n.(type) {
		case *ast.FencedCodeBlock:
			if line, ok := fenceLine(starts, b); ok {
				annotate(n, line)
			}
		case *ast.ThematicBreak:
			if line, ok := breakLine(source, starts, cursor); ok {
				annotate(n, line)
				cursor = lineEnd(source, starts, line)
			}
		default:
			if pos, ok := blockStart(n); ok {
				annotate(n, lineAt(starts, pos))
			}
		}

		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			if stop := lines.At(lines.Len() - 1).Stop; stop > cursor {
				cursor = stop
			}
		}
		return ast.WalkContinue, nil
	})
}

func annotate(n ast.Node, line int) {
	n.SetAttributeString(LineAttribute, []byte(strconv.Itoa(line)))
}

// fenceLine returns the source line of the opening fence. The info
// string sits on the fence line itself; without one, the fence is the
// line above the first content line.
func fenceLine(starts []int, n *ast.FencedCodeBlock) (int, bool) {
	if n.Info != nil {
		return lineAt(starts, n.Info.Segment.Start), true
	}
	if lines := n.Lines(); lines.Len() > 0 {
		line := lineAt(starts, lines.At(0).Start) - 1
		if line < 1 {
			line = 1
		}
		return line, true
	}
	return 0, false
}

// breakLine locates the first thematic-break line at or after pos.
// Thematic break nodes hold no segments, but they appear in document
// order, so the first matching source line past the previous block's
// content is the one that produced the node.
func breakLine(source []byte, starts []int, pos int) (int, bool) {
	for i := lineAt(starts, pos); i <= len(starts); i++ {
		lo := starts[i-1]
		hi := len(source)
		if i < len(starts) {
			hi = starts[i]
		}
		if isBreakLine(source[lo:hi]) {
			return i, true
		}
	}
	return 0, false
}

// isBreakLine reports whether a single source line is a thematic
// break: at most three leading spaces, then three or more of the same
// marker (-, _ or *) interleaved only with whitespace.
func isBreakLine(line []byte) bool {
	line = bytes.TrimRight(line, "\r\n")
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 {
		return false
	}
	line = line[indent:]
	if len(line) == 0 {
		return false
	}
	marker := line[0]
	if marker != '-' && marker != '_' && marker != '*' {
		return false
	}
	count := 0
	for _, c := range line {
		switch c {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// lineEnd returns the byte offset just past the given 1-based line.
func lineEnd(source []byte, starts []int, line int) int {
	if line < len(starts) {
		return starts[line]
	}
	return len(source)
}

// blockStart returns the byte offset of the first source segment under
// the node, descending into children for container blocks.
func blockStart(n ast.Node) (int, bool) {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if pos, ok := blockStart(c); ok {
			return pos, true
		}
	}
	return 0, false
}

// lineStarts returns the byte offset of the start of every line.
func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(starts []int, pos int) int {
	// Index of the first line start past pos; pos belongs to the line
	// before it.
	idx := sort.SearchInts(starts, pos+1)
	if idx < 1 {
		return 1
	}
	return idx
}
