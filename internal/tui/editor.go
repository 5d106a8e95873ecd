package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// lineEditor is a single-line buffer indexed by codepoint, so multi-byte
// characters move and delete as one unit. caret is always in [0, len(buf)].
type lineEditor struct {
	buf   []rune
	caret int
}

func newLineEditor(initial string) lineEditor {
	buf := []rune(initial)
	return lineEditor{buf: buf, caret: len(buf)}
}

func (e lineEditor) String() string { return string(e.buf) }

func (e *lineEditor) insert(rs ...rune) {
	for _, r := range rs {
		if r == '\n' || r == '\r' {
			continue
		}
		e.buf = append(e.buf, 0)
		copy(e.buf[e.caret+1:], e.buf[e.caret:])
		e.buf[e.caret] = r
		e.caret++
	}
}

func (e *lineEditor) backspace() {
	if e.caret == 0 {
		return
	}
	e.buf = append(e.buf[:e.caret-1], e.buf[e.caret:]...)
	e.caret--
}

func (e *lineEditor) deleteForward() {
	if e.caret >= len(e.buf) {
		return
	}
	e.buf = append(e.buf[:e.caret], e.buf[e.caret+1:]...)
}

func (e *lineEditor) left() {
	if e.caret > 0 {
		e.caret--
	}
}

func (e *lineEditor) right() {
	if e.caret < len(e.buf) {
		e.caret++
	}
}

func (e *lineEditor) home() { e.caret = 0 }

func (e *lineEditor) end() { e.caret = len(e.buf) }

func (e *lineEditor) killToStart() {
	e.buf = append([]rune(nil), e.buf[e.caret:]...)
	e.caret = 0
}

func (e *lineEditor) killToEnd() {
	e.buf = e.buf[:e.caret]
}

// view renders the buffer with a block caret, keeping the caret visible
// within width columns.
func (e lineEditor) view(width int) string {
	if width < 4 {
		width = 4
	}
	caretStyle := lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent)

	before := string(e.buf[:e.caret])
	at := " "
	after := ""
	if e.caret < len(e.buf) {
		at = string(e.buf[e.caret])
		after = string(e.buf[e.caret+1:])
	}

	// Scroll so the caret stays on screen.
	if w := xansi.StringWidth(before); w > width-2 {
		before = xansi.TruncateLeft(before, w-(width-2), "…")
	}
	line := before + caretStyle.Render(at) + after
	if xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, "…")
	}
	return strings.ReplaceAll(line, "\n", " ")
}
