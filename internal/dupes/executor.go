package dupes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/joe/dupes/internal/config"
	pkgerrors "github.com/joe/dupes/pkg/errors"
	"github.com/joe/dupes/pkg/fileops"
	"github.com/joe/dupes/pkg/filesystem"
)

// ErrContentDiffers is reported by --verify when a duplicate no longer matches the kept file.
var ErrContentDiffers = errors.New("content changed since scan: files differ")

// ActionResult is the outcome for one removed member of a group.
type ActionResult struct {
	Path   string
	Kept   string
	Action config.Action
	DryRun bool
	Bytes  int64
	// AlreadyLinked is set when hardlinking found both paths on the same inode.
	AlreadyLinked bool
	Err           error
}

// Counters accumulate executor outcomes across groups.
type Counters struct {
	FilesRemoved   int
	FilesLinked    int
	AlreadyLinked  int
	BytesReclaimed int64
	Failures       int
}

// Executor removes or hard-links the non-kept members of a group.
// A failure on one file never stops the others.
type Executor struct {
	fs       filesystem.FileSystem
	ops      *fileops.FileOps
	action   config.Action
	dryRun   bool
	verify   bool
	enricher pkgerrors.Enricher
	logger   *zap.Logger
	counters Counters
	tmpSeq   atomic.Int64
}

// NewExecutor returns an executor that mutates fs through action.
func NewExecutor(
	fs filesystem.FileSystem,
	ops *fileops.FileOps,
	action config.Action,
	dryRun, verify bool,
	logger *zap.Logger,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		fs:       fs,
		ops:      ops,
		action:   action,
		dryRun:   dryRun,
		verify:   verify,
		enricher: pkgerrors.NewEnricher(),
		logger:   logger,
	}
}

// Apply acts on every removed member of decision, in order.
// Cancellation is ignored once a group has started.
func (x *Executor) Apply(ctx context.Context, decision KeepDecision) []ActionResult {
	if x.action == config.ActionNone {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	results := make([]ActionResult, 0, len(decision.Removed))

	for _, member := range decision.Removed {
		result := x.applyOne(ctx, decision.Kept, member)
		x.count(result)
		results = append(results, result)
	}

	return results
}

// Counters returns the totals so far.
func (x *Executor) Counters() Counters {
	return x.counters
}

func (x *Executor) applyOne(ctx context.Context, kept, member FileRecord) ActionResult {
	result := ActionResult{
		Path:   member.Path,
		Kept:   kept.Path,
		Action: x.action,
		DryRun: x.dryRun,
		Bytes:  member.Size,
	}

	if x.action == config.ActionHardlink {
		same, err := x.sameFile(kept.Path, member.Path)
		if err != nil {
			return x.fail(result, err)
		}

		if same {
			result.AlreadyLinked = true
			result.Bytes = 0

			return result
		}
	}

	if x.verify {
		identical, err := x.ops.CompareFilesBytes(ctx, kept.Path, member.Path)
		if err != nil {
			return x.fail(result, fmt.Errorf("failed to verify %s: %w", member.Path, err))
		}

		if !identical {
			return x.fail(result, fmt.Errorf("%s: %w", member.Path, ErrContentDiffers))
		}
	}

	if x.dryRun {
		x.logger.Debug("dry run", zap.Stringer("action", x.action), zap.String("path", member.Path))
		return result
	}

	var err error

	switch x.action {
	case config.ActionRemove:
		err = x.fs.Remove(member.Path)
	case config.ActionHardlink:
		err = x.replaceWithLink(kept.Path, member.Path)
	case config.ActionNone:
	}

	if err != nil {
		return x.fail(result, err)
	}

	x.logger.Debug("applied",
		zap.Stringer("action", x.action),
		zap.String("path", member.Path),
		zap.String("kept", kept.Path))

	return result
}

// replaceWithLink links kept at a temporary sibling of dup and renames it
// over dup, so dup is never missing if either step fails.
func (x *Executor) replaceWithLink(kept, dup string) error {
	dir, base := splitPath(dup)
	tmp := x.fs.Join(dir, fmt.Sprintf(".%s.%d-%d.dupes-tmp", base, os.Getpid(), x.tmpSeq.Add(1)))

	err := x.fs.Link(kept, tmp)
	if err != nil {
		return err //nolint:wrapcheck // filesystem errors carry both paths
	}

	err = x.fs.Rename(tmp, dup)
	if err != nil {
		if rmErr := x.fs.Remove(tmp); rmErr != nil { //nolint:noinlineerr // best-effort cleanup
			x.logger.Warn("failed to remove temporary link", zap.String("path", tmp), zap.Error(rmErr))
		}

		return err //nolint:wrapcheck // filesystem errors carry both paths
	}

	return nil
}

func (x *Executor) sameFile(a, b string) (bool, error) {
	checker, ok := x.fs.(filesystem.SameFileChecker)
	if !ok {
		return false, nil
	}

	same, err := checker.SameFile(a, b)
	if err != nil {
		return false, fmt.Errorf("failed to compare inodes of %s and %s: %w", a, b, err)
	}

	return same, nil
}

func (x *Executor) fail(result ActionResult, err error) ActionResult {
	result.Err = x.enricher.Enrich(err, result.Path)
	result.Bytes = 0

	x.logger.Warn("action failed",
		zap.Stringer("action", x.action),
		zap.String("path", result.Path),
		zap.Error(err))

	return result
}

func (x *Executor) count(result ActionResult) {
	switch {
	case result.Err != nil:
		x.counters.Failures++
	case result.AlreadyLinked:
		x.counters.AlreadyLinked++
	case x.action == config.ActionRemove:
		x.counters.FilesRemoved++
		x.counters.BytesReclaimed += result.Bytes
	case x.action == config.ActionHardlink:
		x.counters.FilesLinked++
		x.counters.BytesReclaimed += result.Bytes
	}
}

// splitPath splits on the last separator of either the OS or slash form.
func splitPath(p string) (dir, base string) {
	if filepath.Separator != '/' && strings.ContainsRune(p, filepath.Separator) {
		return filepath.Split(p)
	}

	dir, base = path.Split(p)
	if dir == "" {
		dir = "."
	}

	return dir, base
}
