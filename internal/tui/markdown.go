package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// notesRenderers caches glamour renderers by style and wrap width.
// WithAutoStyle would query the terminal background on every build.
var notesRenderers = struct {
	sync.Mutex
	byKey map[string]*glamour.TermRenderer
}{byKey: map[string]*glamour.TermRenderer{}}

// renderNotes renders task notes as markdown without a document margin.
// Rendering errors fall back to the raw text.
func renderNotes(md string, width int) string {
	text := strings.TrimSpace(md)
	if text == "" {
		return ""
	}
	width = max(width, 10)
	style := markdownStyle()

	notesRenderers.Lock()
	defer notesRenderers.Unlock()
	key := style + ":" + strconv.Itoa(width)
	r, ok := notesRenderers.byKey[key]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStyles(markdownStyleConfig(style)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		notesRenderers.byKey[key] = r
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	}
	text := mdColor(colorSurfaceFg, style)
	cfg.Text.Color = text
	cfg.Heading.Color = text
	cfg.H1.Color = text
	cfg.H2.Color = text
	cfg.Link.Color = mdColor(colorAccent, style)
	cfg.LinkText.Color = mdColor(colorAccent, style)
	cfg.BlockQuote.Faint = mdBoolPtr(false)
	var noMargin uint
	cfg.Document.Margin = &noMargin
	return cfg
}

// markdownStyle is "light" or "dark". CALPERSONAL_TUI_MD_STYLE wins over the
// theme environment, which wins over detection.
func markdownStyle() string {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CALPERSONAL_TUI_MD_STYLE"))); v == "light" || v == "dark" {
		return v
	}
	dark, ok := themeOverride()
	if !ok {
		dark = lipgloss.HasDarkBackground()
	}
	if dark {
		return "dark"
	}
	return "light"
}

func mdColor(c lipgloss.AdaptiveColor, style string) *string {
	if style == "light" {
		return &c.Light
	}
	return &c.Dark
}

func mdBoolPtr(b bool) *bool { return &b }
