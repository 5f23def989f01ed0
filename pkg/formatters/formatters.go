// Package formatters renders sizes, times and durations for reports and the TUI.
package formatters

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// TimeLayout is the timestamp layout used in text and CSV reports.
const TimeLayout = "2006-01-02 15:04:05"

// ErrSizeOverflow is returned for sizes that do not fit in an int64.
var ErrSizeOverflow = errors.New("size too large")

// FormatBytes formats bytes in IEC units (e.g., "1.5 MiB"). Negative values render as 0 B.
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}

	return humanize.IBytes(uint64(bytes))
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// FormatTime formats t in local time using TimeLayout.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// ParseSize parses a human size such as "10K", "1.5MB" or "2GiB".
// A bare number is bytes and an empty string is 0.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrSizeOverflow, s)
	}

	return int64(n), nil
}
