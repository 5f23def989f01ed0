package shared

import (
	"github.com/joe/dupes/pkg/formatters"
)

// FormatRate formats a read rate in the same units as file sizes (e.g., "5.2 MiB/s")
func FormatRate(bytesPerSec float64) string {
	return formatters.FormatBytes(int64(bytesPerSec)) + "/s"
}

// TruncatePath shortens p to at most width characters, keeping its tail.
func TruncatePath(p string, width int) string {
	runes := []rune(p)
	if len(runes) <= width {
		return p
	}

	if width <= ProgressEllipsisLength {
		return string(runes[len(runes)-width:])
	}

	return "..." + string(runes[len(runes)-width+ProgressEllipsisLength:])
}
