package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors are adaptive; faint is only applied on dark terminals.

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func dimOnDark(st lipgloss.Style) lipgloss.Style {
	return st.Faint(lipgloss.HasDarkBackground())
}

var (
	colorMuted     = adaptive("240", "243")
	colorSurfaceFg = adaptive("235", "252")
	colorBorder    = adaptive("250", "240")

	colorSelectedBg = adaptive("254", "236")
	colorSelectedFg = adaptive("235", "255")

	colorAccent   = adaptive("27", "62")
	colorAccentFg = adaptive("255", "235")
	colorInputBg  = adaptive("254", "234")

	// Status severities.
	colorPending = adaptive("136", "220")
	colorSuccess = adaptive("28", "78")
	colorError   = adaptive("160", "203")

	colorToday    = adaptive("28", "78")
	colorSunday   = adaptive("160", "203")
	colorSaturday = adaptive("27", "75")
)

func mutedStyle() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colorMuted)
	return dimOnDark(st)
}

func selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

// applyColorProfilePreference picks the color profile. termenv honours
// NO_COLOR and CLICOLOR_FORCE; CALPERSONAL_TUI_COLOR=ascii|ansi|256|truecolor
// overrides detection.
func applyColorProfilePreference() {
	lipgloss.SetColorProfile(colorProfile())
}

func colorProfile() termenv.Profile {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CALPERSONAL_TUI_COLOR"))) {
	case "ascii", "none":
		return termenv.Ascii
	case "ansi", "16":
		return termenv.ANSI
	case "256":
		return termenv.ANSI256
	case "truecolor", "24bit":
		return termenv.TrueColor
	}
	return termenv.EnvColorProfile()
}

// applyThemePreference overrides background detection when the environment
// says which background is in use.
func applyThemePreference() {
	if dark, ok := themeOverride(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

// themeOverride checks, in order, CALPERSONAL_TUI_THEME (light|dark),
// CALPERSONAL_TUI_DARKBG (bool) and COLORFGBG ("fg;bg").
func themeOverride() (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CALPERSONAL_TUI_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("CALPERSONAL_TUI_DARKBG"))); err == nil {
		return b, true
	}
	fgbg := os.Getenv("COLORFGBG")
	if i := strings.LastIndexByte(fgbg, ';'); i >= 0 {
		fgbg = fgbg[i+1:]
	}
	if bg, err := strconv.Atoi(strings.TrimSpace(fgbg)); err == nil {
		// xterm palette: 0-6 dark, 7-15 light.
		return bg < 7, true
	}
	return false, false
}
