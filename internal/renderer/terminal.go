package renderer

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// NewTerminalRenderer creates a glamour renderer matched to the terminal's
// background and color support. GLAMOUR_STYLE overrides the detection.
func NewTerminalRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()

	// Limited color terminals get auto-style
	styleOption := glamour.WithAutoStyle()
	if profile == termenv.TrueColor || profile == termenv.ANSI256 {
		if lipgloss.HasDarkBackground() {
			styleOption = glamour.WithStandardStyle("dark")
		} else {
			styleOption = glamour.WithStandardStyle("light")
		}
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// RenderTerminal renders markdown for display, falling back to the raw
// markdown when no renderer can be created
func RenderTerminal(markdown string, wordWrap int) string {
	tr, err := NewTerminalRenderer(wordWrap)
	if err != nil {
		return markdown
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
