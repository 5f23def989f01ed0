// Package report renders a duplicate-finder run as text, JSON or CSV.
package report

import (
	"fmt"
	"io"

	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/internal/dupes"
)

// Reporter writes a finished run to a sink.
type Reporter interface {
	Write(w io.Writer, result *dupes.Result) error
}

// Options tune the text format. JSON and CSV ignore them.
type Options struct {
	Color bool
}

// New returns the reporter for format.
func New(format config.Format, opts Options) (Reporter, error) {
	switch format {
	case config.FormatText:
		return &TextReporter{Color: opts.Color}, nil
	case config.FormatJSON:
		return &JSONReporter{}, nil
	case config.FormatCSV:
		return &CSVReporter{}, nil
	default:
		return nil, fmt.Errorf("%w: format %d", config.ErrInvalidValue, format)
	}
}

// memberMarker names what happened, or would happen, to a group member.
func memberMarker(gr dupes.GroupResult, memberPath string) string {
	if gr.Decision == nil {
		return ""
	}

	if memberPath == gr.Decision.Kept.Path {
		return "keep"
	}

	for _, action := range gr.Actions {
		if action.Path == memberPath {
			return actionMarker(action)
		}
	}

	return "duplicate"
}

func actionMarker(action dupes.ActionResult) string {
	var verb string

	switch action.Action {
	case config.ActionRemove:
		verb = "remove"
	case config.ActionHardlink:
		verb = "link"
	case config.ActionNone:
		return "duplicate"
	}

	switch {
	case action.Err != nil:
		return verb + " failed"
	case action.AlreadyLinked:
		return "linked"
	case action.DryRun:
		return "would " + verb
	default:
		return verb
	}
}
