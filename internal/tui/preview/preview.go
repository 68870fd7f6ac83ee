// Package preview displays the rendered document. It parses the
// sanitized, line-annotated HTML produced by the transform pipeline
// into a flat sequence of blocks, lays each block out as styled
// terminal rows, and records every block's row offset in that single
// pass so position lookups never have to re-measure anything.
package preview

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/duet/internal/core/linemap"
	"github.com/colonyops/duet/internal/core/logging"
)

// Options configures the preview pane.
type Options struct {
	// CodeStyle names the chroma style for fenced code blocks.
	CodeStyle string
	// MaxWidth caps the content width; zero tracks the pane width.
	MaxWidth int
	// TabWidth is the space expansion for tabs in code blocks.
	TabWidth int
}

// Model is the preview pane. It owns the scrollable rendered surface
// and the line annotations recovered from it.
type Model struct {
	vp     viewport.Model
	log    zerolog.Logger
	width  int
	height int
	opts   Options

	html    string
	entries []linemap.Entry
	rows    int
}

// New creates a preview pane.
func New(opts Options) Model {
	return Model{
		vp:     viewport.New(),
		log:    logging.Component("preview"),
		opts:   opts,
		width:  80,
		height: 24,
	}
}

// SetSize resizes the pane and lays the current document out again at
// the new width, preserving the scroll offset where possible.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	offset := m.vp.YOffset()
	m.vp = viewport.New(viewport.WithWidth(width), viewport.WithHeight(height))
	// The document already laid out once, so a relayout failure here
	// means a width-dependent bug, not bad input; keep the stale rows
	// rather than blanking the pane.
	if err := m.layout(); err != nil {
		m.log.Warn().Err(err).Int("width", width).Msg("relayout after resize failed")
	}
	m.vp.SetYOffset(offset)
}

// SetHTML replaces the rendered document. Block offsets are recomputed
// in one batched pass; the scroll position is kept so a re-render from
// an edit does not yank the view around.
func (m *Model) SetHTML(doc string) error {
	offset := m.vp.YOffset()
	m.html = doc
	if err := m.layout(); err != nil {
		return err
	}
	m.vp.SetYOffset(offset)
	return nil
}

// layout renders m.html into viewport content and rebuilds the
// per-block entries.
func (m *Model) layout() error {
	if m.html == "" {
		m.entries = nil
		m.rows = 0
		m.vp.SetContent("")
		return nil
	}

	l := layouter{
		width:     m.contentWidth(),
		codeStyle: m.opts.CodeStyle,
		tabWidth:  m.opts.TabWidth,
	}
	blocks, err := l.parseBlocks(m.html)
	if err != nil {
		return err
	}

	var (
		entries []linemap.Entry
		lines   []string
		row     int
	)
	for i, b := range blocks {
		if b.line > 0 {
			entries = append(entries, linemap.Entry{Line: b.line, Offset: row})
		}
		lines = append(lines, b.rows...)
		row += len(b.rows)
		if i < len(blocks)-1 {
			lines = append(lines, "")
			row++
		}
	}

	m.entries = entries
	m.rows = row
	m.vp.SetContent(joinRows(lines))
	return nil
}

func (m *Model) contentWidth() int {
	w := m.width - 2
	if m.width <= 2 {
		w = 78
	}
	if m.opts.MaxWidth > 0 && w > m.opts.MaxWidth {
		w = m.opts.MaxWidth
	}
	return w
}

// Entries returns the line→offset pairs recovered from the rendered
// document, in document order.
func (m Model) Entries() []linemap.Entry {
	out := make([]linemap.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Offset returns the current scroll offset in rows.
func (m Model) Offset() int {
	return m.vp.YOffset()
}

// SetOffset scrolls the pane to the given row offset, clamped by the
// viewport.
func (m *Model) SetOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	m.vp.SetYOffset(offset)
}

// VisibleRows returns the number of rows shown at once.
func (m Model) VisibleRows() int {
	return m.vp.VisibleLineCount()
}

// ContentRows returns the total rendered row count.
func (m Model) ContentRows() int {
	return m.rows
}

// Update forwards scrolling input to the viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m Model) View() string {
	return m.vp.View()
}
