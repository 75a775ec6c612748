package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/quick-hb/internal/variables"
)

// Design System Colors - Adaptive based on terminal background
var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color
	ColorInfo    lipgloss.Color

	ColorText       lipgloss.Color
	ColorTextMuted  lipgloss.Color
	ColorTextDim    lipgloss.Color
	ColorBorder     lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
)

// Component styles, rebuilt whenever the palette changes
var (
	StyleTitle     lipgloss.Style
	StyleSubtitle  lipgloss.Style
	StyleText      lipgloss.Style
	StyleTextMuted lipgloss.Style
	StyleTextDim   lipgloss.Style

	StyleFocused    lipgloss.Style
	StyleUnselected lipgloss.Style

	StyleSuccess lipgloss.Style
	StyleWarning lipgloss.Style
	StyleError   lipgloss.Style
	StyleInfo    lipgloss.Style

	StyleModal            lipgloss.Style
	StyleContentContainer lipgloss.Style
	StyleFormLabel        lipgloss.Style
	StyleMetadata         lipgloss.Style
	StyleGender           lipgloss.Style

	StylePlaceholderFilled   lipgloss.Style
	StylePlaceholderUnfilled lipgloss.Style

	StyleScrollIndicator       lipgloss.Style
	StyleScrollIndicatorActive lipgloss.Style
)

func init() {
	initializeColors()
}

// initializeColors sets up adaptive colors based on terminal background
func initializeColors() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		setLightThemeColors()
	case "dark":
		setDarkThemeColors()
	default:
		if lipgloss.HasDarkBackground() {
			setDarkThemeColors()
		} else {
			setLightThemeColors()
		}
	}
	buildStyles()
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("205")
	ColorSecondary = lipgloss.Color("33")
	ColorAccent = lipgloss.Color("214")

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")
	ColorInfo = lipgloss.Color("12")

	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
	ColorBackground = lipgloss.Color("235")
	ColorSurface = lipgloss.Color("236")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("125")
	ColorSecondary = lipgloss.Color("24")
	ColorAccent = lipgloss.Color("130")

	ColorSuccess = lipgloss.Color("22")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("160")
	ColorInfo = lipgloss.Color("24")

	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("248")
	ColorBackground = lipgloss.Color("255")
	ColorSurface = lipgloss.Color("254")
}

func buildStyles() {
	StyleTitle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 1)
	StyleSubtitle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Padding(0, 1)
	StyleText = lipgloss.NewStyle().Foreground(ColorText)
	StyleTextMuted = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleTextDim = lipgloss.NewStyle().Foreground(ColorTextDim)

	StyleFocused = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorSecondary).
		Bold(true).
		Padding(0, 1)
	StyleUnselected = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Padding(0, 1)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true).Padding(0, 1)
	StyleError = lipgloss.NewStyle().Foreground(ColorError).Bold(true).Padding(0, 1)
	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true).Padding(0, 1)

	StyleModal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Background(ColorBackground)

	StyleContentContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	StyleFormLabel = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleMetadata = lipgloss.NewStyle().Foreground(ColorTextDim).Padding(0, 1)
	StyleGender = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorAccent).
		Bold(true).
		Padding(0, 1)

	StylePlaceholderFilled = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StylePlaceholderUnfilled = lipgloss.NewStyle().Foreground(ColorWarning).Underline(true)

	StyleScrollIndicator = lipgloss.NewStyle().Foreground(ColorTextDim).Align(lipgloss.Center)
	StyleScrollIndicatorActive = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Align(lipgloss.Center)
}

// PlaceholderFormatter highlights substituted values and leaves unfilled
// placeholders visible in their bracket form
var PlaceholderFormatter = variables.FormatterFunc(func(name, value string, filled bool) string {
	if filled {
		return StylePlaceholderFilled.Render(value)
	}
	return StylePlaceholderUnfilled.Render(variables.Placeholder(name))
})

// CreateHeader renders a page title with the active gender badge
func CreateHeader(titleText, gender string) string {
	title := StyleTitle.Render(titleText)
	if gender == "" {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, title, " ", StyleGender.Render(gender))
}

func CreateHelp(text string) string {
	return StyleTextDim.Render(text)
}

// Context-aware help with an expandable second block
func CreateContextualHelp(essential []string, additional []string, showExpanded bool, width int) string {
	firstRow := essential
	if len(additional) > 0 && !showExpanded {
		firstRow = append(append([]string{}, essential...), "?: mehr")
	}

	lines := []string{truncate(strings.Join(firstRow, " • "), width)}
	if showExpanded {
		for _, row := range additional {
			lines = append(lines, truncate(row, width))
		}
	}
	return StyleTextDim.Render(strings.Join(lines, "\n"))
}

func truncate(text string, width int) string {
	runes := []rune(text)
	if width > 7 && len(runes) > width-4 {
		return string(runes[:width-7]) + "..."
	}
	return text
}

func CreateStatus(text string, statusType string) string {
	switch statusType {
	case "success":
		return StyleSuccess.Render(text)
	case "warning":
		return StyleWarning.Render(text)
	case "error":
		return StyleError.Render(text)
	case "info":
		return StyleInfo.Render(text)
	default:
		return StyleText.Render(text)
	}
}

// Modal centering helper
func CenterModal(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Add consistent left padding to main content
func AddMainPadding(content string) string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(content)
}

// Create scroll indicators based on scroll state
func CreateScrollIndicators(canScrollUp, canScrollDown bool, width int) (string, string) {
	indicator := func(active bool) string {
		if active {
			return StyleScrollIndicatorActive.Width(width).Render("...")
		}
		return StyleScrollIndicator.Width(width).Render("─────────")
	}
	return indicator(canScrollUp), indicator(canScrollDown)
}
