package preview

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/duet/internal/core/linemap"
)

func TestModel_SetHTML_records_block_offsets(t *testing.T) {
	m := New(Options{CodeStyle: "monokai"})
	m.SetSize(40, 10)

	doc := `<h1 data-line="1">Title</h1>` +
		`<p data-line="3">one</p>` +
		`<p data-line="5">two</p>`
	require.NoError(t, m.SetHTML(doc))

	// Each block renders one row, separated by blank rows.
	assert.Equal(t, []linemap.Entry{
		{Line: 1, Offset: 0},
		{Line: 3, Offset: 2},
		{Line: 5, Offset: 4},
	}, m.Entries())
	assert.Equal(t, 5, m.ContentRows())
}

func TestModel_SetHTML_skips_unannotated_blocks_in_entries(t *testing.T) {
	m := New(Options{CodeStyle: "monokai"})
	m.SetSize(40, 10)

	doc := `<p data-line="1">a</p><p>floating</p><p data-line="4">b</p>`
	require.NoError(t, m.SetHTML(doc))

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Line)
	assert.Equal(t, 4, entries[1].Line)
	// The unannotated block still occupies rows between them.
	assert.Equal(t, 4, entries[1].Offset)
}

func TestModel_SetHTML_is_idempotent_for_same_content(t *testing.T) {
	m := New(Options{CodeStyle: "monokai"})
	m.SetSize(40, 10)

	doc := `<h2 data-line="1">A</h2><p data-line="3">body text</p>`
	require.NoError(t, m.SetHTML(doc))
	first := m.Entries()
	require.NoError(t, m.SetHTML(doc))

	assert.Equal(t, first, m.Entries())
}

func TestModel_SetHTML_preserves_scroll_offset(t *testing.T) {
	m := New(Options{CodeStyle: "monokai"})
	m.SetSize(40, 3)

	var sb strings.Builder
	for i := 1; i <= 30; i += 2 {
		sb.WriteString(`<p data-line="` + strconv.Itoa(i) + `">paragraph</p>`)
	}
	require.NoError(t, m.SetHTML(sb.String()))

	m.SetOffset(6)
	require.NoError(t, m.SetHTML(sb.String()))
	assert.Equal(t, 6, m.Offset())
}

func TestParseBlocks_wraps_long_paragraphs(t *testing.T) {
	doc := `<p data-line="1">` + strings.Repeat("word ", 30) + `</p>`
	blocks, err := layouter{width: 20, codeStyle: "monokai"}.parseBlocks(doc)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Greater(t, len(blocks[0].rows), 1)
	for _, row := range blocks[0].rows {
		assert.LessOrEqual(t, len(row), 20)
	}
}

func TestParseBlocks_lists_and_quotes(t *testing.T) {
	doc := `<ul data-line="1"><li>alpha</li><li>beta</li></ul>` +
		`<blockquote data-line="4"><p data-line="4">quoted words</p></blockquote>`
	blocks, err := layouter{width: 40, codeStyle: "monokai"}.parseBlocks(doc)
	require.NoError(t, err)

	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].line)
	assert.Contains(t, blocks[0].rows[0], "alpha")
	assert.Contains(t, blocks[0].rows[1], "beta")
	assert.Equal(t, 4, blocks[1].line)
	assert.Contains(t, blocks[1].rows[0], "quoted words")
}

func TestParseBlocks_code_block_language(t *testing.T) {
	doc := `<pre data-line="1"><code class="language-go">package main
func main() {}
</code></pre>`
	blocks, err := layouter{width: 60, codeStyle: "monokai"}.parseBlocks(doc)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].rows, 2)
}

func TestParseBlocks_empty_document(t *testing.T) {
	blocks, err := layouter{width: 40, codeStyle: "monokai"}.parseBlocks("")
	require.NoError(t, err)
	assert.Empty(t, blocks)
}
