package dupes

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/joe/dupes/internal/config"
	pkgerrors "github.com/joe/dupes/pkg/errors"
	"github.com/joe/dupes/pkg/fileops"
	"github.com/joe/dupes/pkg/filesystem"
)

// Exported variables.
var (
	ErrNilFileSystem   = errors.New("filesystem cannot be nil")
	ErrNoExistingRoots = errors.New("none of the given directories exist")
	ErrRunCancelled    = errors.New("run cancelled")
	ErrScanCancelled   = errors.New("scan cancelled")
)

// progressInterval is how many walked entries pass between ScanProgress events.
const progressInterval = 256

// GroupResult is the outcome of one duplicate group.
type GroupResult struct {
	Group Group
	// Decision is nil when the group was skipped, failed to resolve or was never reached.
	Decision *KeepDecision
	Skipped  bool
	Err      error
	Actions  []ActionResult
}

// Summary totals a run.
type Summary struct {
	Roots          int
	RootsMissing   int
	FilesScanned   int
	FilesIncluded  int
	FilesSkipped   int
	Groups         int
	DuplicateFiles int
	WastedBytes    int64
	CacheHits      int
	GroupsSkipped  int
	GroupsFailed   int
	FilesRemoved   int
	FilesLinked    int
	AlreadyLinked  int
	BytesReclaimed int64
	Failures       int
	Action         config.Action
	DryRun         bool
	Cancelled      bool
	Duration       time.Duration
}

// Result is everything a run produced, in group order.
type Result struct {
	Groups  []GroupResult
	Summary Summary
}

// Engine runs the duplicate finder over a set of roots on one filesystem.
type Engine struct {
	TimeProvider TimeProvider

	fs            filesystem.FileSystem
	roots         []string
	workers       int
	action        config.Action
	dryRun        bool
	filter        FileFilter
	fingerprinter *Fingerprinter
	resolver      *Resolver
	executor      *Executor
	enricher      pkgerrors.Enricher
	logger        *zap.Logger

	emitMu  sync.Mutex
	emitter EventEmitter

	summary Summary
}

// NewEngine validates cfg and builds an engine for roots on fsys.
// roots are paths on fsys; chooser is only needed for the interactive keep policy.
func NewEngine(
	fsys filesystem.FileSystem,
	roots []string,
	cfg *config.Config,
	chooser Chooser,
	logger *zap.Logger,
) (*Engine, error) {
	if fsys == nil {
		return nil, ErrNilFileSystem
	}

	if len(roots) == 0 {
		return nil, config.ErrNoRoots
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Method.String() == "unknown" {
		return nil, fmt.Errorf("%w: method %d", config.ErrInvalidValue, cfg.Method)
	}

	if cfg.Action.String() == "unknown" {
		return nil, fmt.Errorf("%w: action %d", config.ErrInvalidValue, cfg.Action)
	}

	if cfg.Method == config.MethodHash {
		_, err := fileops.ParseHashAlgorithm(string(cfg.Algorithm))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidValue, err)
		}
	}

	resolver, err := NewResolver(cfg.Keep, chooser)
	if err != nil {
		return nil, err
	}

	ops := fileops.NewFileOps(fsys).WithReadLimit(cfg.ReadRateBytes)

	return &Engine{
		TimeProvider:  RealTimeProvider{},
		fs:            fsys,
		roots:         roots,
		workers:       max(cfg.Workers, 1),
		action:        cfg.Action,
		dryRun:        cfg.DryRun,
		filter:        NewFilter(cfg.MinSizeBytes, cfg.ExtensionList, cfg.ExcludeRegexp, cfg.Pattern),
		fingerprinter: NewFingerprinter(cfg.Method, cfg.Algorithm, ops),
		resolver:      resolver,
		executor:      NewExecutor(fsys, ops, cfg.Action, cfg.DryRun, cfg.Verify, logger),
		enricher:      pkgerrors.NewEnricher(),
		logger:        logger,
	}, nil
}

// SetEventEmitter sets the event emitter for progress display.
// The emitter is optional - if nil, no events will be emitted.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	e.emitter = emitter
}

// SetCache makes the hash method reuse digests from cache for files whose
// size and modification time are unchanged. It must be called before Run.
func (e *Engine) SetCache(cache DigestCache) {
	e.fingerprinter.cache = cache
}

// Scan walks every root, fingerprints the included files and returns the
// duplicate groups in discovery order. It never mutates the filesystem.
func (e *Engine) Scan(ctx context.Context) ([]Group, error) {
	e.summary = Summary{Action: e.action, DryRun: e.dryRun}

	candidates, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}

	hitsBefore := e.fingerprinter.CacheHits()

	arena, err := e.fingerprintAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	e.summary.CacheHits = e.fingerprinter.CacheHits() - hitsBefore

	groups := arena.Groups()

	for _, group := range groups {
		e.summary.Groups++
		e.summary.DuplicateFiles += len(group.Members) - 1
		e.summary.WastedBytes += group.WastedSpace()
	}

	e.emit(FingerprintComplete{Groups: e.summary.Groups, WastedBytes: e.summary.WastedBytes})
	e.logger.Info("scan complete",
		zap.Int("scanned", e.summary.FilesScanned),
		zap.Int("included", e.summary.FilesIncluded),
		zap.Int("groups", e.summary.Groups),
		zap.Int("cache_hits", e.summary.CacheHits),
		zap.Int64("wasted_bytes", e.summary.WastedBytes))

	return groups, nil
}

// Run scans, then resolves and acts on each group in order.
// On cancellation the groups already handled stay applied and the partial
// result is returned together with the error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := e.TimeProvider.Now()
	result := &Result{}

	finish := func(err error) (*Result, error) {
		e.summary.Duration = e.TimeProvider.Now().Sub(start)
		result.Summary = e.summary
		e.emit(RunComplete{Summary: result.Summary})

		return result, err
	}

	groups, err := e.Scan(ctx)
	if err != nil {
		if errors.Is(err, ErrScanCancelled) {
			e.summary.Cancelled = true
		}

		return finish(err)
	}

	result.Groups = make([]GroupResult, len(groups))
	for i, group := range groups {
		result.Groups[i] = GroupResult{Group: group}
	}

	for i := range result.Groups {
		if ctx.Err() != nil {
			e.summary.Cancelled = true
			return finish(fmt.Errorf("%w after %d of %d groups: %w", ErrRunCancelled, i, len(groups), ctx.Err()))
		}

		err = e.processGroup(ctx, i, len(groups), &result.Groups[i])
		if err != nil {
			e.summary.Cancelled = true
			return finish(err)
		}
	}

	return finish(nil)
}

func (e *Engine) processGroup(ctx context.Context, index, total int, gr *GroupResult) error {
	decision, ok, err := e.resolver.Resolve(ctx, gr.Group)

	switch {
	case errors.Is(err, ErrAborted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w at group %d of %d: %w", ErrRunCancelled, index+1, total, err)
	case err != nil:
		gr.Err = err
		e.summary.GroupsFailed++
		e.emit(ErrorOccurred{Phase: PhaseAction, Path: gr.Group.Members[0].Path, Err: err})
		e.logger.Warn("group not resolved", zap.Int("group", index+1), zap.Error(err))

		return nil
	case !ok:
		gr.Skipped = true
		e.summary.GroupsSkipped++
		e.emit(GroupResolved{Index: index, Total: total, Skipped: true})

		return nil
	}

	gr.Decision = &decision
	e.emit(GroupResolved{Index: index, Total: total, Kept: decision.Kept.Path})

	gr.Actions = e.executor.Apply(ctx, decision)
	for _, action := range gr.Actions {
		e.emit(ActionCompleted{Result: action})

		if action.Err != nil {
			e.emit(ErrorOccurred{Phase: PhaseAction, Path: action.Path, Err: action.Err})
			continue
		}

		if e.fingerprinter.cache != nil && !action.DryRun && action.Action == config.ActionRemove {
			e.fingerprinter.cache.Forget(action.Path)
		}
	}

	counters := e.executor.Counters()
	e.summary.FilesRemoved = counters.FilesRemoved
	e.summary.FilesLinked = counters.FilesLinked
	e.summary.AlreadyLinked = counters.AlreadyLinked
	e.summary.BytesReclaimed = counters.BytesReclaimed
	e.summary.Failures = counters.Failures

	return nil
}

// collect walks every root and returns the included entries in walk order.
// A path reached through two overlapping roots is kept once.
func (e *Engine) collect(ctx context.Context) ([]filesystem.FileInfo, error) {
	seen := make(map[string]struct{})
	candidates := make([]filesystem.FileInfo, 0)

	for _, root := range e.roots {
		root = e.canonical(root)

		_, err := e.fs.Stat(root)
		if err != nil {
			e.summary.RootsMissing++
			e.report(PhaseScan, root, err)

			continue
		}

		e.summary.Roots++
		e.emit(ScanStarted{Root: root})

		found, err := e.walkRoot(ctx, root, seen)
		candidates = append(candidates, found...)

		if err != nil {
			return nil, err
		}
	}

	if e.summary.Roots == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoExistingRoots, e.roots)
	}

	e.emit(ScanComplete{
		Scanned:  e.summary.FilesScanned,
		Included: e.summary.FilesIncluded,
		Skipped:  e.summary.FilesSkipped,
	})

	return candidates, nil
}

func (e *Engine) walkRoot(ctx context.Context, root string, seen map[string]struct{}) ([]filesystem.FileInfo, error) {
	scanner := e.fs.Scan(root)
	found := make([]filesystem.FileInfo, 0)
	walked := 0

	for {
		if ctx.Err() != nil {
			return found, fmt.Errorf("%w in %s: %w", ErrScanCancelled, root, ctx.Err())
		}

		info, ok := scanner.Next()
		if !ok {
			break
		}

		walked++
		if walked%progressInterval == 0 {
			e.emit(ScanProgress{Root: root, Scanned: e.summary.FilesScanned, Included: e.summary.FilesIncluded})
		}

		if info.IsDir() {
			continue
		}

		key := cleanPath(info.Path)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		e.summary.FilesScanned++

		if !e.filter.ShouldInclude(info) {
			continue
		}

		e.summary.FilesIncluded++

		found = append(found, info)
	}

	for _, err := range scanner.Skipped() {
		e.skip(PhaseScan, "", err)
	}

	if err := scanner.Err(); err != nil { //nolint:noinlineerr // root walk failure is reported, not fatal
		e.report(PhaseScan, root, err)
	}

	return found, nil
}

// fingerprintAll runs the worker pool over candidates. For the hash method
// files whose size no other candidate shares are recorded without reading
// them, since they cannot be in a group.
func (e *Engine) fingerprintAll(ctx context.Context, candidates []filesystem.FileInfo) (*Arena, error) {
	arena := NewArena(len(candidates))

	work := make([]int, 0, len(candidates))

	if e.fingerprinter.NeedsContent() {
		sizes := make([]int64, len(candidates))
		for i, info := range candidates {
			sizes[i] = info.Size
		}

		work = sizeBuckets(sizes)
	} else {
		for i := range candidates {
			work = append(work, i)
		}
	}

	var totalBytes int64
	for _, i := range work {
		totalBytes += candidates[i].Size
	}

	e.emit(FingerprintStarted{Total: len(work), Bytes: totalBytes})

	jobs := make(chan int, e.workers*2) //nolint:mnd // keep workers fed between sends

	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		bytes    atomic.Int64
		failMu   sync.Mutex
		failures []failedFile
	)

	for range e.workers {
		wg.Go(func() {
			for seq := range jobs {
				if ctx.Err() != nil {
					continue
				}

				info := candidates[seq]

				record, err := e.fingerprinter.Fingerprint(ctx, info)
				if err != nil {
					if ctx.Err() == nil {
						failMu.Lock()
						failures = append(failures, failedFile{seq: seq, path: info.Path, err: err})
						failMu.Unlock()
					}

					continue
				}

				arena.Set(seq, record)

				e.emit(FingerprintProgress{
					Done:  int(done.Add(1)),
					Total: len(work),
					Bytes: bytes.Add(info.Size),
				})
			}
		})
	}

feed:
	for _, seq := range work {
		select {
		case jobs <- seq:
		case <-ctx.Done():
			break feed
		}
	}

	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w while fingerprinting: %w", ErrScanCancelled, ctx.Err())
	}

	// discovery order, so reports do not depend on worker timing
	slices.SortFunc(failures, func(a, b failedFile) int { return cmp.Compare(a.seq, b.seq) })

	for _, failure := range failures {
		e.skip(PhaseFingerprint, failure.path, failure.err)
	}

	return arena, nil
}

// skip records a file that was left out of the scan.
func (e *Engine) skip(phase, affected string, err error) {
	e.summary.FilesSkipped++
	e.report(phase, affected, err)
}

func (e *Engine) report(phase, affected string, err error) {
	enriched := e.enricher.Enrich(err, affected)

	e.logger.Warn("skipped", zap.String("phase", phase), zap.String("path", affected), zap.Error(err))
	e.emit(ErrorOccurred{Phase: phase, Path: affected, Err: enriched})
}

// emit sends an event if an emitter is configured.
// Workers call it concurrently; events reach the emitter one at a time.
func (e *Engine) emit(event Event) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}

type failedFile struct {
	seq  int
	path string
	err  error
}

// canonical resolves root to the one form every other spelling of the same
// directory also resolves to, so overlapping roots share seen-set keys and
// cache keys. Unresolvable roots are returned as given and reported by Stat.
func (e *Engine) canonical(root string) string {
	canon, ok := e.fs.(filesystem.Canonicalizer)
	if !ok {
		return root
	}

	resolved, err := canon.Canonical(root)
	if err != nil {
		return root
	}

	if resolved != root {
		e.logger.Debug("resolved root", zap.String("root", root), zap.String("resolved", resolved))
	}

	return resolved
}

// cleanPath normalizes OS and slash paths alike for duplicate-root detection.
func cleanPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
