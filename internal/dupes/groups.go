package dupes

// Arena holds every fingerprinted record of a scan, indexed by discovery
// sequence. Workers fill distinct slots concurrently; grouping reads the
// arena once they are done.
type Arena struct {
	records []FileRecord
	present []bool
}

// NewArena allocates slots for size records.
func NewArena(size int) *Arena {
	return &Arena{
		records: make([]FileRecord, size),
		present: make([]bool, size),
	}
}

// Set stores the record for slot seq. Each slot must be written by one goroutine.
func (a *Arena) Set(seq int, record FileRecord) {
	record.seq = seq
	a.records[seq] = record
	a.present[seq] = true
}

// Len returns the number of filled slots.
func (a *Arena) Len() int {
	count := 0

	for _, ok := range a.present {
		if ok {
			count++
		}
	}

	return count
}

// Records returns the filled slots in discovery order.
func (a *Arena) Records() []FileRecord {
	records := make([]FileRecord, 0, len(a.records))

	for i, ok := range a.present {
		if ok {
			records = append(records, a.records[i])
		}
	}

	return records
}

// Groups buckets the arena by fingerprint.
func (a *Arena) Groups() []Group {
	return BuildGroups(a.Records())
}

// BuildGroups buckets records by fingerprint and returns only buckets with
// at least two members. Members keep input order and groups are ordered by
// their first member.
func BuildGroups(records []FileRecord) []Group {
	index := make(map[string][]int, len(records))
	firstSeen := make([]string, 0)

	for i, record := range records {
		if _, seen := index[record.Fingerprint]; !seen {
			firstSeen = append(firstSeen, record.Fingerprint)
		}

		index[record.Fingerprint] = append(index[record.Fingerprint], i)
	}

	groups := make([]Group, 0)

	for _, fingerprint := range firstSeen {
		positions := index[fingerprint]
		if len(positions) < 2 { //nolint:mnd // a duplicate needs a twin
			continue
		}

		members := make([]FileRecord, len(positions))
		for i, pos := range positions {
			members[i] = records[pos]
		}

		groups = append(groups, Group{Fingerprint: fingerprint, Members: members})
	}

	return groups
}

// sizeBuckets returns the indexes of candidates whose size is shared with
// at least one other candidate. Files with a unique size cannot have a
// byte-identical twin.
func sizeBuckets(sizes []int64) []int {
	counts := make(map[int64]int, len(sizes))
	for _, size := range sizes {
		counts[size]++
	}

	keep := make([]int, 0, len(sizes))

	for i, size := range sizes {
		if counts[size] > 1 {
			keep = append(keep, i)
		}
	}

	return keep
}
