package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joe/dupes/internal/dupes"
)

// JSONReporter writes an array with one object per group.
type JSONReporter struct{}

type jsonGroup struct {
	Identifier string     `json:"identifier"`
	Files      []jsonFile `json:"files"`
	Kept       string     `json:"kept,omitempty"`
}

type jsonFile struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	MTime int64  `json:"mtime"`
}

// Write renders result to w. A run without groups is written as [].
func (r *JSONReporter) Write(w io.Writer, result *dupes.Result) error {
	groups := make([]jsonGroup, 0, len(result.Groups))

	for _, gr := range result.Groups {
		group := jsonGroup{
			Identifier: gr.Group.Fingerprint,
			Files:      make([]jsonFile, 0, len(gr.Group.Members)),
		}

		for _, member := range gr.Group.Members {
			group.Files = append(group.Files, jsonFile{
				Path:  member.Path,
				Size:  member.Size,
				MTime: member.ModTime.Unix(),
			})
		}

		if gr.Decision != nil {
			group.Kept = gr.Decision.Kept.Path
		}

		groups = append(groups, group)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(groups)
	if err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	return nil
}
