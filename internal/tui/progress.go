package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/time/rate"

	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/internal/tui/shared"
	"github.com/joe/dupes/pkg/formatters"
)

// redrawInterval bounds how often the progress line is repainted.
const redrawInterval = 100 * time.Millisecond

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[K"

// ProgressPrinter draws a single status line from engine events.
// It implements dupes.EventEmitter and goes quiet once fingerprinting ends,
// so it never draws over the chooser or the report.
type ProgressPrinter struct {
	out    io.Writer
	color  bool
	bar    progress.Model
	redraw rate.Sometimes

	mu    sync.Mutex
	dirty bool
	start time.Time
}

// NewProgressPrinter returns a printer writing to out, normally stderr on a terminal.
func NewProgressPrinter(out io.Writer, color bool) *ProgressPrinter {
	return &ProgressPrinter{
		out:    out,
		color:  color,
		bar:    shared.NewProgressModel(shared.ProgressBarWidth),
		redraw: rate.Sometimes{Interval: redrawInterval},
	}
}

// Emit implements dupes.EventEmitter.
func (p *ProgressPrinter) Emit(event dupes.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := event.(type) {
	case dupes.ScanStarted:
		p.draw("Scanning " + shared.TruncatePath(e.Root, 60)) //nolint:mnd // keep the line short
	case dupes.ScanProgress:
		p.redraw.Do(func() {
			p.draw(fmt.Sprintf("Scanning %s: %d files, %d included",
				shared.TruncatePath(e.Root, 40), e.Scanned, e.Included)) //nolint:mnd // keep the line short
		})
	case dupes.FingerprintStarted:
		p.start = time.Now()
		p.draw(p.fingerprintLine(0, e.Total, 0))
	case dupes.FingerprintProgress:
		p.redraw.Do(func() {
			p.draw(p.fingerprintLine(e.Done, e.Total, e.Bytes))
		})
	case dupes.FingerprintComplete, dupes.RunComplete:
		p.clear()
	}
}

func (p *ProgressPrinter) fingerprintLine(done, total int, bytes int64) string {
	percent := 1.0
	if total > 0 {
		percent = float64(done) / float64(total)
	}

	line := fmt.Sprintf("Fingerprinting %s %d/%d  %s",
		shared.RenderProgress(p.bar, percent, p.color), done, total, formatters.FormatBytes(bytes))

	if elapsed := time.Since(p.start).Seconds(); elapsed > 0 && bytes > 0 {
		line += "  " + shared.FormatRate(float64(bytes)/elapsed)
	}

	return line
}

func (p *ProgressPrinter) draw(line string) {
	_, _ = io.WriteString(p.out, clearLine+line)
	p.dirty = true
}

func (p *ProgressPrinter) clear() {
	if !p.dirty {
		return
	}

	_, _ = io.WriteString(p.out, clearLine)
	p.dirty = false
}
