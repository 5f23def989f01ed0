package dupes

// Event is the interface implemented by all engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Scan phase events

// ScanStarted is emitted when the walk of a root begins.
type ScanStarted struct {
	Root string
}

func (ScanStarted) isEvent() {}

// ScanProgress is emitted periodically while walking.
type ScanProgress struct {
	Root     string
	Scanned  int
	Included int
}

func (ScanProgress) isEvent() {}

// ScanComplete is emitted when every root has been walked.
type ScanComplete struct {
	Scanned  int
	Included int
	Skipped  int
}

func (ScanComplete) isEvent() {}

// Fingerprint phase events

// FingerprintStarted is emitted before the worker pool starts.
type FingerprintStarted struct {
	Total int
	Bytes int64
}

func (FingerprintStarted) isEvent() {}

// FingerprintProgress is emitted as workers finish files.
type FingerprintProgress struct {
	Done  int
	Total int
	Bytes int64
}

func (FingerprintProgress) isEvent() {}

// FingerprintComplete is emitted once files are grouped.
type FingerprintComplete struct {
	Groups      int
	WastedBytes int64
}

func (FingerprintComplete) isEvent() {}

// Action phase events

// GroupResolved is emitted after a keep decision, or a skip, for a group.
type GroupResolved struct {
	Index   int
	Total   int
	Kept    string
	Skipped bool
}

func (GroupResolved) isEvent() {}

// ActionCompleted is emitted for every removed or linked file.
type ActionCompleted struct {
	Result ActionResult
}

func (ActionCompleted) isEvent() {}

// RunComplete is emitted when the run ends, cancelled or not.
type RunComplete struct {
	Summary Summary
}

func (RunComplete) isEvent() {}

// Error events

// ErrorOccurred is emitted when a file is dropped or an action fails.
type ErrorOccurred struct {
	Phase string
	Path  string
	Err   error
}

func (ErrorOccurred) isEvent() {}

// Phase names carried by ErrorOccurred.
const (
	PhaseScan        = "scan"
	PhaseFingerprint = "fingerprint"
	PhaseAction      = "action"
)
