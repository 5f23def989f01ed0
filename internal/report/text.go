package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/internal/tui/shared"
	pkgerrors "github.com/joe/dupes/pkg/errors"
	"github.com/joe/dupes/pkg/formatters"
)

// NoDuplicates is printed instead of groups when a run finds none.
const NoDuplicates = "No duplicates found."

// TextReporter writes a human-readable listing of every group and a summary.
type TextReporter struct {
	Color bool
}

// Write renders result to w.
func (r *TextReporter) Write(w io.Writer, result *dupes.Result) error {
	theme := shared.NewTheme(w, r.Color)

	var builder strings.Builder

	// a cancelled run has not looked at everything
	if len(result.Groups) == 0 && !result.Summary.Cancelled {
		builder.WriteString(theme.RenderSuccess(NoDuplicates))
		builder.WriteString("\n")
	}

	for i, gr := range result.Groups {
		writeGroup(&builder, theme, i+1, gr)
	}

	writeSummary(&builder, theme, result.Summary)

	_, err := io.WriteString(w, builder.String())
	if err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	return nil
}

func writeGroup(builder *strings.Builder, theme shared.Theme, number int, gr dupes.GroupResult) {
	header := fmt.Sprintf("Group %d (%s): %d files, %s wasted",
		number, gr.Group.Fingerprint, len(gr.Group.Members), formatters.FormatBytes(gr.Group.WastedSpace()))

	builder.WriteString(theme.RenderTitle(header))

	switch {
	case gr.Skipped:
		builder.WriteString(" " + theme.RenderDim("[skipped]"))
	case gr.Err != nil:
		builder.WriteString(" " + theme.RenderError("[not resolved: "+gr.Err.Error()+"]"))
	}

	builder.WriteString("\n")

	width := markerWidth(gr)

	for _, member := range gr.Group.Members {
		marker := memberMarker(gr, member.Path)

		line := fmt.Sprintf("%10s  %s  %s",
			formatters.FormatBytes(member.Size), formatters.FormatTime(member.ModTime), member.Path)

		if width > 0 {
			line = fmt.Sprintf("%-*s  %s", width+2, "["+marker+"]", line) //nolint:mnd // brackets
		}

		builder.WriteString("  ")
		builder.WriteString(markerStyle(theme, marker).Render(line))
		builder.WriteString("\n")
	}

	for _, action := range gr.Actions {
		if action.Err == nil {
			continue
		}

		builder.WriteString("    ")
		builder.WriteString(theme.RenderError("✗ " + action.Err.Error()))
		builder.WriteString("\n")

		if suggestions := pkgerrors.FormatSuggestions(action.Err); suggestions != "" {
			builder.WriteString(indent(theme.RenderDim(suggestions), "    "))
			builder.WriteString("\n")
		}
	}

	builder.WriteString("\n")
}

func writeSummary(builder *strings.Builder, theme shared.Theme, summary dupes.Summary) {
	builder.WriteString(theme.RenderLabel("Summary"))
	builder.WriteString("\n")

	row := func(label, value string) {
		fmt.Fprintf(builder, "  %-18s %s\n", label+":", value)
	}

	row("Files scanned", fmt.Sprintf("%d (%d included)", summary.FilesScanned, summary.FilesIncluded))

	if summary.FilesSkipped > 0 {
		row("Files unreadable", theme.RenderWarning(strconv.Itoa(summary.FilesSkipped)))
	}

	if summary.RootsMissing > 0 {
		row("Missing roots", theme.RenderWarning(strconv.Itoa(summary.RootsMissing)))
	}

	row("Duplicate groups", strconv.Itoa(summary.Groups))
	row("Duplicate files", strconv.Itoa(summary.DuplicateFiles))
	row("Wasted space", formatters.FormatBytes(summary.WastedBytes))

	if summary.CacheHits > 0 {
		row("Cached digests", strconv.Itoa(summary.CacheHits))
	}

	if summary.GroupsSkipped > 0 {
		row("Groups skipped", strconv.Itoa(summary.GroupsSkipped))
	}

	if summary.GroupsFailed > 0 {
		row("Groups failed", theme.RenderError(strconv.Itoa(summary.GroupsFailed)))
	}

	prefix := ""
	if summary.DryRun {
		prefix = "Would be "
	}

	switch summary.Action {
	case config.ActionRemove:
		row(prefix+"Removed", strconv.Itoa(summary.FilesRemoved))
		row(prefix+"Reclaimed", formatters.FormatBytes(summary.BytesReclaimed))
	case config.ActionHardlink:
		row(prefix+"Linked", strconv.Itoa(summary.FilesLinked))

		if summary.AlreadyLinked > 0 {
			row("Already linked", strconv.Itoa(summary.AlreadyLinked))
		}

		row(prefix+"Reclaimed", formatters.FormatBytes(summary.BytesReclaimed))
	case config.ActionNone:
	}

	if summary.Failures > 0 {
		row("Failures", theme.RenderError(strconv.Itoa(summary.Failures)))
	}

	if summary.Duration > 0 {
		row("Elapsed", formatters.FormatDuration(summary.Duration))
	}

	if summary.Cancelled {
		builder.WriteString(theme.RenderWarning("Run cancelled; remaining groups were left untouched."))
		builder.WriteString("\n")
	}
}

func markerWidth(gr dupes.GroupResult) int {
	width := 0

	for _, member := range gr.Group.Members {
		width = max(width, len(memberMarker(gr, member.Path)))
	}

	return width
}

func markerStyle(theme shared.Theme, marker string) lipgloss.Style {
	switch {
	case marker == "keep":
		return theme.KeepStyle()
	case strings.HasSuffix(marker, "failed"):
		return theme.ErrorStyle()
	case marker == "":
		return theme.NormalStyle()
	default:
		return theme.RemoveStyle()
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}
