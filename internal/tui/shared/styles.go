package shared

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Exported constants.
const (
	// DefaultPadding is the default padding for UI elements
	DefaultPadding = 2
	// ProgressBarWidth is the default width of progress bars
	ProgressBarWidth = 30
	// ProgressPercentageScale is the scale for percentage calculations (100 for percentages)
	ProgressPercentageScale = 100
	// ProgressEllipsisLength is the length of ellipsis for truncated paths
	ProgressEllipsisLength = 3

	// KeyCtrlC is the key binding for cancellation
	KeyCtrlC = "ctrl+c"
	// PromptArrow is the arrow character used in prompts
	PromptArrow = "▶ "
)

// Theme renders the shared palette for one output stream.
// The report and the chooser use the same colors.
type Theme struct {
	renderer *lipgloss.Renderer
}

// NewTheme returns a theme writing to w. With color false every style
// renders plain text, whatever w is.
func NewTheme(w io.Writer, color bool) Theme {
	renderer := lipgloss.NewRenderer(w)
	if !color {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return Theme{renderer: renderer}
}

func AccentColor() lipgloss.Color { return lipgloss.Color(accentColorCode) }

func DimColor() lipgloss.Color { return lipgloss.Color(dimColorCode) }

func ErrorColor() lipgloss.Color { return lipgloss.Color(errorColorCode) }

func HighlightColor() lipgloss.Color { return lipgloss.Color(highlightColorCode) }

func NormalColor() lipgloss.Color { return lipgloss.Color(normalColorCode) }

// PrimaryColor returns the primary color for the UI
func PrimaryColor() lipgloss.Color { return lipgloss.Color(primaryColorCode) }

func SubtleColor() lipgloss.Color { return lipgloss.Color(subtleColorCode) }

func SuccessColor() lipgloss.Color { return lipgloss.Color(successColorCode) }

func WarningColor() lipgloss.Color { return lipgloss.Color(warningColorCode) }

// BoxStyle returns the style for boxes with padding
func (t Theme) BoxStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor()).
		Padding(1, DefaultPadding)
}

// DimStyle returns the style for dimmed text
func (t Theme) DimStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(DimColor())
}

// ErrorStyle returns the style for error messages
func (t Theme) ErrorStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(ErrorColor()).
		Bold(true)
}

// KeepStyle marks the member of a group that survives.
func (t Theme) KeepStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(SuccessColor()).
		Bold(true)
}

// LabelStyle returns the style for labels
func (t Theme) LabelStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(HighlightColor()).
		Bold(true)
}

// NormalStyle returns the style for ordinary rows.
func (t Theme) NormalStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(NormalColor())
}

// RemoveStyle marks members that are removed or replaced by a link.
func (t Theme) RemoveStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(WarningColor())
}

// SelectedStyle returns the style for the highlighted row of a list
func (t Theme) SelectedStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(HighlightColor()).
		Bold(true)
}

// SubtitleStyle returns the style for subtitles
func (t Theme) SubtitleStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(SubtleColor())
}

// SuccessStyle returns the style for success messages
func (t Theme) SuccessStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(SuccessColor()).
		Bold(true)
}

// TitleStyle returns the style for titles
func (t Theme) TitleStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Bold(true).
		Foreground(PrimaryColor())
}

// WarningStyle returns the style for warning messages
func (t Theme) WarningStyle() lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(WarningColor()).
		Bold(true)
}

// RenderBox renders content in a box with consistent styling
func (t Theme) RenderBox(content string) string {
	return t.BoxStyle().Render(content)
}

// RenderDim renders dimmed text with consistent styling
func (t Theme) RenderDim(text string) string {
	return t.DimStyle().Render(text)
}

// RenderError renders an error message with consistent styling
func (t Theme) RenderError(text string) string {
	return t.ErrorStyle().Render(text)
}

// RenderLabel renders a label with consistent styling
func (t Theme) RenderLabel(text string) string {
	return t.LabelStyle().Render(text)
}

// RenderSuccess renders a success message with consistent styling
func (t Theme) RenderSuccess(text string) string {
	return t.SuccessStyle().Render(text)
}

// RenderTitle renders a title with consistent styling
func (t Theme) RenderTitle(text string) string {
	return t.TitleStyle().Render(text)
}

// RenderWarning renders a warning message with consistent styling
func (t Theme) RenderWarning(text string) string {
	return t.WarningStyle().Render(text)
}

// unexported constants.
const (
	accentColorCode    = "62"  // Blue
	dimColorCode       = "240" // Dark gray
	errorColorCode     = "196" // Red
	highlightColorCode = "86"  // Cyan
	normalColorCode    = "252" // Light gray
	// Primary colors
	primaryColorCode = "205" // Pink/purple
	subtleColorCode  = "241" // Medium gray
	successColorCode = "42"  // Green
	warningColorCode = "226"
)
