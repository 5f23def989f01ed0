// Package dupes finds duplicate files and reduces each duplicate group to
// one kept file.
//
// The pipeline is: walk every root, filter, fingerprint on a worker pool,
// group by fingerprint, pick a file to keep per group, then remove or
// hard-link the rest. Engine wires the stages together; each stage is
// usable on its own.
package dupes

import "time"

// FileRecord is one file considered for duplicate analysis.
type FileRecord struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	Fingerprint  string

	// seq is the discovery order of the walk.
	seq int
}

// Group is a set of at least two files sharing a fingerprint, in discovery order.
type Group struct {
	Fingerprint string
	Members     []FileRecord
}

// WastedSpace is the storage taken by all copies but one.
func (g Group) WastedSpace() int64 {
	if len(g.Members) < 2 || g.Members[0].Size <= 0 {
		return 0
	}

	return g.Members[0].Size * int64(len(g.Members)-1)
}

// KeepDecision names the member of a group that survives.
type KeepDecision struct {
	Kept    FileRecord
	Removed []FileRecord
}
