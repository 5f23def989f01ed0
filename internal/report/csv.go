package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/pkg/formatters"
)

// CSVHeader is the first row of every CSV report.
var CSVHeader = []string{"group_id", "file_path", "size_bytes", "modification_time", "formatted_size"}

// CSVReporter writes one row per group member. group_id starts at 1.
type CSVReporter struct{}

// Write renders result to w.
func (r *CSVReporter) Write(w io.Writer, result *dupes.Result) error {
	writer := csv.NewWriter(w)

	err := writer.Write(CSVHeader)
	if err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, gr := range result.Groups {
		groupID := strconv.Itoa(i + 1)

		for _, member := range gr.Group.Members {
			err = writer.Write([]string{
				groupID,
				member.Path,
				strconv.FormatInt(member.Size, 10),
				formatters.FormatTime(member.ModTime),
				formatters.FormatBytes(member.Size),
			})
			if err != nil {
				return fmt.Errorf("failed to write CSV row for %s: %w", member.Path, err)
			}
		}
	}

	writer.Flush()

	err = writer.Error()
	if err != nil {
		return fmt.Errorf("failed to flush CSV report: %w", err)
	}

	return nil
}
