package preview

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/net/html"

	"github.com/colonyops/duet/internal/core/styles"
	"github.com/colonyops/duet/internal/core/transform"
)

const cellSep = " │ "

// block is one rendered element plus the source line it came from.
// line is zero when the element carried no annotation.
type block struct {
	line int
	rows []string
}

// layouter carries the settings one layout pass renders with.
type layouter struct {
	width     int
	codeStyle string
	tabWidth  int
}

// parseBlocks converts sanitized HTML into rendered blocks. Offsets are
// assigned by the caller as rows accumulate.
func (l layouter) parseBlocks(doc string) ([]block, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}

	body := findElement(root, "body")
	if body == nil {
		return nil, nil
	}

	var blocks []block
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		b := l.renderBlock(n)
		if len(b.rows) == 0 {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (l layouter) renderBlock(n *html.Node) block {
	b := block{line: sourceLine(n)}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		style := styles.HeadingStyles[n.Data]
		for _, row := range wrap(textContent(n), l.width) {
			b.rows = append(b.rows, style.Render(row))
		}

	case "pre":
		code, lang := codeContent(n)
		b.rows = l.highlight(code, lang)

	case "ul", "ol":
		b.rows = renderList(n, l.width, 0)

	case "blockquote":
		inner := l
		inner.width = l.width - 2
		for _, row := range inner.renderChildren(n) {
			b.rows = append(b.rows, styles.QuoteStyle.Render("│ "+row))
		}

	case "hr":
		b.rows = []string{styles.RuleStyle.Render(strings.Repeat("─", max(l.width, 1)))}

	case "table":
		b.rows = renderTable(n)

	default:
		b.rows = wrap(textContent(n), l.width)
	}

	return b
}

// renderChildren renders an element's block children in order, used for
// containers like blockquotes.
func (l layouter) renderChildren(n *html.Node) []string {
	var rows []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		inner := l.renderBlock(c)
		if len(rows) > 0 && len(inner.rows) > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, inner.rows...)
	}
	if len(rows) == 0 {
		if text := textContent(n); text != "" {
			rows = wrap(text, l.width)
		}
	}
	return rows
}

func renderList(n *html.Node, width, depth int) []string {
	indent := strings.Repeat("  ", depth)
	ordered := n.Data == "ol"

	var rows []string
	item := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		item++

		marker := "• "
		if ordered {
			marker = fmt.Sprintf("%d. ", item)
		}

		text, nested := splitListItem(c)
		cont := strings.Repeat(" ", len(marker))
		for i, row := range wrap(text, width-len(indent)-len(marker)) {
			if i == 0 {
				rows = append(rows, indent+marker+row)
			} else {
				rows = append(rows, indent+cont+row)
			}
		}
		for _, sub := range nested {
			rows = append(rows, renderList(sub, width, depth+1)...)
		}
	}
	return rows
}

// splitListItem separates an item's own text from its nested sublists.
func splitListItem(li *html.Node) (string, []*html.Node) {
	var sb strings.Builder
	var nested []*html.Node
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			nested = append(nested, c)
			continue
		}
		sb.WriteString(textContent(c))
	}
	return collapse(sb.String()), nested
}

func renderTable(n *html.Node) []string {
	var rows []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "tr" {
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						cells = append(cells, collapse(textContent(td)))
					}
				}
				rows = append(rows, strings.Join(cells, cellSep))
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return rows
}

// codeContent extracts the verbatim code text and the language hint
// from a <pre><code class="language-x"> block.
func codeContent(pre *html.Node) (string, string) {
	code := findElement(pre, "code")
	if code == nil {
		return rawText(pre), ""
	}

	lang := ""
	for _, attr := range code.Attr {
		if attr.Key == "class" && strings.HasPrefix(attr.Val, "language-") {
			lang = strings.TrimPrefix(attr.Val, "language-")
		}
	}
	return rawText(code), lang
}

// highlight renders code through chroma; on failure the plain lines
// are shown instead. Tabs are expanded first so rows align in the
// viewport regardless of the terminal's tab stops.
func (l layouter) highlight(code, lang string) []string {
	tabWidth := l.tabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}
	code = strings.ReplaceAll(code, "\t", strings.Repeat(" ", tabWidth))

	code = strings.TrimRight(code, "\n")
	if code == "" {
		return nil
	}
	if lang == "" {
		lang = "text"
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, lang, "terminal256", l.codeStyle); err != nil {
		return strings.Split(code, "\n")
	}
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

// sourceLine recovers the data-line annotation, zero when absent.
func sourceLine(n *html.Node) int {
	for _, attr := range n.Attr {
		if attr.Key == transform.LineAttribute {
			if line, err := strconv.Atoi(attr.Val); err == nil && line > 0 {
				return line
			}
		}
	}
	return 0
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// textContent flattens inline markup to plain text with collapsed
// whitespace.
func textContent(n *html.Node) string {
	return collapse(rawText(n))
}

// rawText concatenates all text nodes beneath n, preserving whitespace.
func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(rawText(c))
	}
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// wrap word-wraps text to the given width. Words longer than the width
// get a row of their own rather than being split.
func wrap(text string, width int) []string {
	if text == "" {
		return nil
	}
	if width < 1 {
		width = 1
	}

	var rows []string
	var row strings.Builder
	for _, word := range strings.Fields(text) {
		if row.Len() == 0 {
			row.WriteString(word)
			continue
		}
		if row.Len()+1+len(word) > width {
			rows = append(rows, row.String())
			row.Reset()
			row.WriteString(word)
			continue
		}
		row.WriteByte(' ')
		row.WriteString(word)
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return rows
}

func joinRows(rows []string) string {
	return strings.Join(rows, "\n")
}
