package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/internal/tui/shared"
	"github.com/joe/dupes/pkg/formatters"
)

// outcome is how a chooser prompt ended.
type outcome int

const (
	outcomePending outcome = iota
	outcomeKeep
	outcomeSkip
	outcomeAbort
)

// ChooseModel asks which member of one duplicate group to keep.
type ChooseModel struct {
	group   dupes.Group
	number  int
	cursor  int
	outcome outcome
	keys    keyMap
	help    help.Model
	theme   shared.Theme
	width   int
}

// NewChooseModel creates the prompt for group, shown as the number-th group.
func NewChooseModel(group dupes.Group, number int, theme shared.Theme) ChooseModel {
	return ChooseModel{
		group:  group,
		number: number,
		keys:   defaultKeyMap(),
		help:   help.New(),
		theme:  theme,
	}
}

// Cursor returns the highlighted member index.
func (m ChooseModel) Cursor() int {
	return m.cursor
}

// Result returns the chosen index and whether the group was skipped or the
// run aborted. done is false while the prompt is still open.
func (m ChooseModel) Result() (index int, skip, abort, done bool) {
	switch m.outcome {
	case outcomeKeep:
		return m.cursor, false, false, true
	case outcomeSkip:
		return 0, true, false, true
	case outcomeAbort:
		return 0, false, true, true
	case outcomePending:
	}

	return 0, false, false, false
}

// Init implements tea.Model
func (m ChooseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ChooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ChooseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.group.Members) - 1

	switch {
	case key.Matches(msg, m.keys.Abort):
		m.outcome = outcomeAbort
		return m, tea.Quit
	case key.Matches(msg, m.keys.Skip):
		m.outcome = outcomeSkip
		return m, tea.Quit
	case key.Matches(msg, m.keys.Keep):
		m.outcome = outcomeKeep
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, last)
	default:
		// digits jump to a member, counting from 1
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if index := int(s[0] - '1'); index <= last {
				m.cursor = index
			}
		}
	}

	return m, nil
}

// View implements tea.Model
func (m ChooseModel) View() string {
	if m.outcome != outcomePending {
		return ""
	}

	var builder strings.Builder

	header := fmt.Sprintf("Duplicate group %d (%s): %d files, %s wasted",
		m.number, m.group.Fingerprint, len(m.group.Members), formatters.FormatBytes(m.group.WastedSpace()))
	builder.WriteString(m.theme.RenderTitle(header))
	builder.WriteString("\n")
	builder.WriteString(m.theme.SubtitleStyle().Render("Choose the file to keep; the others are acted on."))
	builder.WriteString("\n\n")

	pathWidth := 0
	if m.width > 0 {
		pathWidth = max(m.width-40, 20) //nolint:mnd // room for prefix, size and time
	}

	for i, member := range m.group.Members {
		p := member.Path
		if pathWidth > 0 {
			p = shared.TruncatePath(p, pathWidth)
		}

		line := fmt.Sprintf("%d. %10s  %s  %s",
			i+1, formatters.FormatBytes(member.Size), formatters.FormatTime(member.ModTime), p)

		if i == m.cursor {
			builder.WriteString(m.theme.SelectedStyle().Render(shared.PromptArrow + line))
		} else {
			builder.WriteString("  " + m.theme.NormalStyle().Render(line))
		}

		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	builder.WriteString("\n")

	return builder.String()
}
