// Package tui holds the terminal front end: the interactive keep-policy
// chooser and the progress line shown while scanning.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/internal/tui/shared"
)

// ErrUnexpectedModel is returned if the program ends with a foreign model.
var ErrUnexpectedModel = errors.New("chooser ended with an unexpected model")

// Chooser asks the operator on a terminal which member of each group to keep.
// Each call runs a short-lived bubbletea program.
type Chooser struct {
	in    io.Reader
	out   io.Writer
	theme shared.Theme
	opts  []tea.ProgramOption

	mu    sync.Mutex
	asked int
}

// NewChooser returns a chooser reading keys from in and drawing on out.
// out should be the terminal, not the report sink.
func NewChooser(in io.Reader, out io.Writer, color bool, opts ...tea.ProgramOption) *Chooser {
	return &Chooser{
		in:    in,
		out:   out,
		theme: shared.NewTheme(out, color),
		opts:  opts,
	}
}

// Choose implements dupes.Chooser.
func (c *Chooser) Choose(ctx context.Context, group dupes.Group) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.asked++

	options := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	}, c.opts...)

	program := tea.NewProgram(NewChooseModel(group, c.asked, c.theme), options...)

	final, err := program.Run()
	if ctxErr := ctx.Err(); ctxErr != nil { //nolint:noinlineerr // cancellation wins over program errors
		return 0, false, fmt.Errorf("choice cancelled: %w", ctxErr)
	}

	if err != nil {
		return 0, false, fmt.Errorf("chooser failed: %w", err)
	}

	model, ok := final.(ChooseModel)
	if !ok {
		return 0, false, ErrUnexpectedModel
	}

	index, skip, abort, done := model.Result()

	switch {
	case abort, !done:
		return 0, false, dupes.ErrAborted
	case skip:
		return 0, true, nil
	default:
		return index, false, nil
	}
}
