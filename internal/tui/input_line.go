package tui

import (
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws the edit prompt as exactly one line of width columns.
func renderInputLine(width int, prompt string, ed lineEditor) string {
	if width < 10 {
		width = 10
	}
	promptW := xansi.StringWidth(prompt)
	line := lipgloss.PlaceHorizontal(
		width,
		lipgloss.Left,
		prompt+ed.view(width-promptW-1),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		// Terminate styling so a cut escape sequence cannot bleed into the next line.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
