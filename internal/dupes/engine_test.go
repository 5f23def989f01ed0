//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package dupes_test

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/joe/dupes/internal/cache"
	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/pkg/fileops"
	"github.com/joe/dupes/pkg/filesystem"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

var dataRoot = []string{"/data"}

type abortingChooser struct{}

func (abortingChooser) Choose(context.Context, dupes.Group) (int, bool, error) {
	return 0, false, dupes.ErrAborted
}

func TestEngine_HashGroupsIdenticalContent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	engine := newEngine(t, sampleTree(), dataRoot, nil, nil)

	groups, err := engine.Scan(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(groups).Should(HaveLen(1))
	g.Expect(paths(groups[0].Members)).Should(Equal([]string{"/data/a.txt", "/data/b.txt"}))
	g.Expect(groups[0].Fingerprint).Should(Equal(
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
	g.Expect(groups[0].WastedSpace()).Should(Equal(int64(5)))
}

func TestEngine_SizeMethodKeepsFalsePositives(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	engine := newEngine(t, sampleTree(), dataRoot, nil, func(cfg *config.Config) {
		cfg.Method = config.MethodSize
	})

	groups, err := engine.Scan(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(groups).Should(HaveLen(1))
	g.Expect(groups[0].Fingerprint).Should(Equal("5"))
	g.Expect(paths(groups[0].Members)).Should(Equal([]string{"/data/a.txt", "/data/b.txt", "/data/c.txt"}))
}

func TestEngine_NameMethodGroupsByBaseName(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	m.AddFile("/data/x/notes.txt", []byte("one"), baseTime)
	m.AddFile("/data/y/notes.txt", []byte("different"), baseTime)
	m.AddFile("/data/y/other.txt", []byte("one"), baseTime)

	engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
		cfg.Method = config.MethodName
	})

	groups, err := engine.Scan(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(groups).Should(HaveLen(1))
	g.Expect(groups[0].Fingerprint).Should(Equal("notes.txt"))
}

func TestEngine_AlternateHashAlgorithm(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	engine := newEngine(t, sampleTree(), dataRoot, nil, func(cfg *config.Config) {
		cfg.Algorithm = fileops.MD5
	})

	groups, err := engine.Scan(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(groups).Should(HaveLen(1))
	g.Expect(groups[0].Fingerprint).Should(Equal("5d41402abc4b2a76b9719d911017c592"))
}

func TestEngine_RescanIsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	m.AddFile("/data/sub/d.txt", []byte("world"), baseTime)
	m.AddFile("/data/sub/e.txt", []byte("hello"), baseTime)

	engine := newEngine(t, m, dataRoot, nil, nil)

	first, err := engine.Scan(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())

	second, err := engine.Scan(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(second).Should(Equal(first))
	g.Expect(first).Should(HaveLen(2))

	for _, group := range first {
		g.Expect(len(group.Members)).Should(BeNumerically(">=", 2))
	}
}

func TestEngine_UniqueSizesAreNotRead(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	m.AddFile("/data/unique.bin", []byte("only one of this length"), baseTime)
	m.InjectError("open", "/data/unique.bin", syscall.EACCES)

	recorder := &eventRecorder{}
	engine := newEngine(t, m, dataRoot, nil, nil)
	engine.SetEventEmitter(recorder)

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.FilesIncluded).Should(Equal(4))
	g.Expect(result.Summary.FilesSkipped).Should(BeZero())
	g.Expect(recorder.errors()).Should(BeEmpty())
}

func TestEngine_UnreadableFileIsSkipped(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	m.AddFile("/data/d.txt", []byte("hello"), baseTime)
	m.InjectError("open", "/data/b.txt", syscall.EACCES)

	recorder := &eventRecorder{}
	engine := newEngine(t, m, dataRoot, nil, nil)
	engine.SetEventEmitter(recorder)

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.FilesSkipped).Should(Equal(1))
	g.Expect(result.Groups).Should(HaveLen(1))
	g.Expect(paths(result.Groups[0].Group.Members)).Should(Equal([]string{"/data/a.txt", "/data/d.txt"}))

	errs := recorder.errors()
	g.Expect(errs).Should(HaveLen(1))
	g.Expect(errs[0].Phase).Should(Equal(dupes.PhaseFingerprint))
	g.Expect(errs[0].Path).Should(Equal("/data/b.txt"))
	g.Expect(errs[0].Err).Should(MatchError(syscall.EACCES))
}

func TestEngine_KeepOldestRemovesTheRest(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
		cfg.Keep = config.KeepOldest
		cfg.Action = config.ActionRemove
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(HaveLen(1))
	g.Expect(result.Groups[0].Decision).ShouldNot(BeNil())
	g.Expect(result.Groups[0].Decision.Kept.Path).Should(Equal("/data/a.txt"))

	g.Expect(m.ListFiles()).Should(Equal([]string{"/data/a.txt", "/data/c.txt"}))
	g.Expect(result.Summary.FilesRemoved).Should(Equal(1))
	g.Expect(result.Summary.BytesReclaimed).Should(Equal(int64(5)))
	g.Expect(result.Summary.Failures).Should(BeZero())
}

func TestEngine_EveryGroupKeepsExactlyOne(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		content := []byte("x")
		if i%2 == 1 {
			content = []byte("yy")
		}

		m.AddFile("/data/"+name, content, baseTime.Add(time.Duration(i)*time.Minute))
	}

	engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
		cfg.Keep = config.KeepNewest
		cfg.Action = config.ActionRemove
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(HaveLen(2))

	for _, gr := range result.Groups {
		g.Expect(gr.Decision).ShouldNot(BeNil())
		g.Expect(gr.Decision.Removed).Should(HaveLen(len(gr.Group.Members) - 1))
		g.Expect(m.Exists(gr.Decision.Kept.Path)).Should(BeTrue())

		for _, removed := range gr.Decision.Removed {
			g.Expect(m.Exists(removed.Path)).Should(BeFalse())
		}
	}

	g.Expect(m.ListFiles()).Should(Equal([]string{"/data/e", "/data/f"}))
}

func TestEngine_DryRunLeavesTreeUntouched(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	before := m.ListFiles()

	engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
		cfg.Action = config.ActionRemove
		cfg.DryRun = true
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(m.ListFiles()).Should(Equal(before))
	g.Expect(result.Summary.DryRun).Should(BeTrue())
	g.Expect(result.Summary.FilesRemoved).Should(Equal(1))
	g.Expect(result.Groups[0].Actions[0].DryRun).Should(BeTrue())
}

func TestEngine_HardlinkAcrossMountsIsolatesFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	m.AddFile("/data/a", []byte("same"), baseTime)
	m.AddFile("/data/mnt/b", []byte("same"), baseTime)
	m.AddFile("/data/z", []byte("same"), baseTime)
	m.Mount("/data/mnt", 2)

	engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
		cfg.Action = config.ActionHardlink
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.FilesLinked).Should(Equal(1))
	g.Expect(result.Summary.Failures).Should(Equal(1))

	same, err := m.SameFile("/data/a", "/data/z")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(same).Should(BeTrue())
	g.Expect(m.Exists("/data/mnt/b")).Should(BeTrue())
}

func TestEngine_InteractiveSkipAndOutOfRange(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	m.AddFile("/data/d.txt", []byte("world"), baseTime)
	m.AddFile("/data/e.txt", []byte("third"), baseTime)
	m.AddFile("/data/f.txt", []byte("third"), baseTime)

	chooser := dupes.NewScriptedChooser(
		dupes.ScriptedAnswer{Skip: true},
		dupes.ScriptedAnswer{Index: 7},
		dupes.ScriptedAnswer{Index: 1},
	)

	engine := newEngine(t, m, dataRoot, chooser, func(cfg *config.Config) {
		cfg.Keep = config.KeepInteractive
		cfg.Action = config.ActionRemove
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(chooser.Asked()).Should(HaveLen(3))
	g.Expect(result.Groups).Should(HaveLen(3))

	g.Expect(result.Groups[0].Skipped).Should(BeTrue())
	g.Expect(result.Groups[0].Decision).Should(BeNil())
	g.Expect(result.Groups[1].Err).Should(MatchError(dupes.ErrChoiceOutOfRange))
	g.Expect(result.Groups[2].Decision.Kept.Path).Should(Equal("/data/f.txt"))

	g.Expect(result.Summary.GroupsSkipped).Should(Equal(1))
	g.Expect(result.Summary.GroupsFailed).Should(Equal(1))
	g.Expect(m.ListFiles()).Should(Equal([]string{
		"/data/a.txt", "/data/b.txt", "/data/c.txt", "/data/d.txt", "/data/f.txt",
	}))
}

func TestEngine_AbortStopsBeforeAnyMutation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	engine := newEngine(t, m, dataRoot, abortingChooser{}, func(cfg *config.Config) {
		cfg.Keep = config.KeepInteractive
		cfg.Action = config.ActionRemove
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).Should(MatchError(dupes.ErrRunCancelled))
	g.Expect(err).Should(MatchError(dupes.ErrAborted))
	g.Expect(result.Summary.Cancelled).Should(BeTrue())
	g.Expect(m.ListFiles()).Should(HaveLen(3))
}

func TestEngine_CancelBetweenGroupsKeepsFinishedGroups(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := sampleTree()
	m.AddFile("/data/d.txt", []byte("world"), baseTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chooser := &cancellingChooser{cancel: cancel}
	engine := newEngine(t, m, dataRoot, chooser, func(cfg *config.Config) {
		cfg.Keep = config.KeepInteractive
		cfg.Action = config.ActionRemove
	})

	result, err := engine.Run(ctx)
	g.Expect(err).Should(MatchError(dupes.ErrRunCancelled))
	g.Expect(chooser.asked).Should(Equal(1))
	g.Expect(result.Summary.Cancelled).Should(BeTrue())
	g.Expect(result.Groups).Should(HaveLen(2))
	g.Expect(result.Groups[0].Decision).ShouldNot(BeNil())
	g.Expect(result.Groups[1].Decision).Should(BeNil())

	// first group applied, second untouched
	g.Expect(m.Exists("/data/b.txt")).Should(BeFalse())
	g.Expect(m.Exists("/data/c.txt")).Should(BeTrue())
	g.Expect(m.Exists("/data/d.txt")).Should(BeTrue())
}

func TestEngine_CancelledBeforeScan(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder := &eventRecorder{}
	engine := newEngine(t, sampleTree(), dataRoot, nil, nil)
	engine.SetEventEmitter(recorder)

	result, err := engine.Run(ctx)
	g.Expect(err).Should(MatchError(dupes.ErrScanCancelled))
	g.Expect(result.Summary.Cancelled).Should(BeTrue())
	g.Expect(recorder.last()).Should(BeAssignableToTypeOf(dupes.RunComplete{}))
}

func TestEngine_MissingRoots(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	engine := newEngine(t, sampleTree(), []string{"/nowhere", "/data"}, nil, nil)

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.Roots).Should(Equal(1))
	g.Expect(result.Summary.RootsMissing).Should(Equal(1))
	g.Expect(result.Groups).Should(HaveLen(1))

	none := newEngine(t, sampleTree(), []string{"/nowhere"}, nil, nil)

	_, err = none.Run(context.Background())
	g.Expect(err).Should(MatchError(dupes.ErrNoExistingRoots))
}

func TestEngine_OverlappingRootsDoNotDuplicateFiles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	m.AddFile("/data/sub/only.txt", []byte("alone"), baseTime)

	engine := newEngine(t, m, []string{"/data", "/data/sub", "/data"}, nil, nil)

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(BeEmpty())
	g.Expect(result.Summary.FilesScanned).Should(Equal(1))
}

func TestEngine_FiltersApplyBeforeGrouping(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	m.AddFile("/data/a.jpg", []byte("picture"), baseTime)
	m.AddFile("/data/b.JPG", []byte("picture"), baseTime)
	m.AddFile("/data/c.txt", []byte("picture"), baseTime)
	m.AddFile("/data/cache/d.jpg", []byte("picture"), baseTime)
	m.AddFile("/data/e.jpg", []byte("pic"), baseTime)
	m.AddFile("/data/f.jpg", []byte("pic"), baseTime)

	engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
		cfg.Extensions = "jpg"
		cfg.Exclude = "/cache/"
		cfg.MinSize = "4"
	})

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.FilesScanned).Should(Equal(6))
	g.Expect(result.Summary.FilesIncluded).Should(Equal(2))
	g.Expect(result.Groups).Should(HaveLen(1))
	g.Expect(paths(result.Groups[0].Group.Members)).Should(Equal([]string{"/data/a.jpg", "/data/b.JPG"}))
}

func TestEngine_EmptyTreeIsNotAnError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	m.AddDir("/data")

	result, err := newEngine(t, m, dataRoot, nil, nil).Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(BeEmpty())
	g.Expect(result.Summary.Groups).Should(BeZero())
}

func TestEngine_RunDurationUsesTimeProvider(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	engine := newEngine(t, sampleTree(), dataRoot, nil, nil)
	engine.TimeProvider = &dupes.FixedTimeProvider{At: baseTime, Step: 3 * time.Second}

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.Duration).Should(Equal(3 * time.Second))
}

func TestNewEngine_RejectsBadSetup(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := testConfig(t, dataRoot, nil)

	_, err := dupes.NewEngine(nil, dataRoot, cfg, nil, nil)
	g.Expect(err).Should(MatchError(dupes.ErrNilFileSystem))

	_, err = dupes.NewEngine(sampleTree(), nil, cfg, nil, nil)
	g.Expect(err).Should(MatchError(config.ErrNoRoots))

	interactive := testConfig(t, dataRoot, func(cfg *config.Config) { cfg.Keep = config.KeepInteractive })
	_, err = dupes.NewEngine(sampleTree(), dataRoot, interactive, nil, nil)
	g.Expect(err).Should(MatchError(dupes.ErrNoChooser))

	badAlgo := testConfig(t, dataRoot, nil)
	badAlgo.Algorithm = fileops.HashAlgorithm("whirlpool")
	_, err = dupes.NewEngine(sampleTree(), dataRoot, badAlgo, nil, nil)
	g.Expect(err).Should(MatchError(config.ErrInvalidValue))
}

func TestEngine_HardlinkOnRealTree(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(root, name)
		g.Expect(os.MkdirAll(filepath.Dir(p), 0o750)).Should(Succeed())
		g.Expect(os.WriteFile(p, []byte(content), 0o600)).Should(Succeed())

		return p
	}

	a := write("a.txt", "hello")
	b := write("nested/b.txt", "hello")
	c := write("c.txt", "world")

	engine, err := dupes.NewEngine(filesystem.NewRealFileSystem(), []string{root},
		testConfig(t, []string{root}, func(cfg *config.Config) { cfg.Action = config.ActionHardlink }), nil, nil)
	g.Expect(err).ShouldNot(HaveOccurred())

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.FilesLinked).Should(Equal(1))

	infoA, err := os.Stat(a)
	g.Expect(err).ShouldNot(HaveOccurred())
	infoB, err := os.Stat(b)
	g.Expect(err).ShouldNot(HaveOccurred())
	infoC, err := os.Stat(c)
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(os.SameFile(infoA, infoB)).Should(BeTrue())
	g.Expect(os.SameFile(infoA, infoC)).Should(BeFalse())
}

func TestEngine_CachedDigestsSkipReads(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fsys := sampleTree()
	fsys.InjectError("open", "/data/a.txt", os.ErrPermission)
	fsys.InjectError("open", "/data/b.txt", os.ErrPermission)

	digests, err := cache.Load(filepath.Join(t.TempDir(), "hashes.json"), "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())
	digests.Store("/data/a.txt", 5, baseTime, "cached")
	digests.Store("/data/b.txt", 5, baseTime.Add(time.Hour), "cached")

	engine := newEngine(t, fsys, dataRoot, nil, nil)
	engine.SetCache(digests)

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(HaveLen(1))
	g.Expect(result.Groups[0].Group.Fingerprint).Should(Equal("cached"))
	g.Expect(result.Summary.CacheHits).Should(Equal(2))
	g.Expect(result.Summary.FilesSkipped).Should(BeZero())
}

func TestEngine_CacheLearnsAndForgetsRemovedFiles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	digests, err := cache.Load(filepath.Join(t.TempDir(), "hashes.json"), "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())

	engine := newEngine(t, sampleTree(), dataRoot, nil, func(cfg *config.Config) {
		cfg.Action = config.ActionRemove
	})
	engine.SetCache(digests)

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Summary.CacheHits).Should(BeZero())
	g.Expect(result.Summary.FilesRemoved).Should(Equal(1))

	_, ok := digests.Lookup("/data/a.txt", 5, baseTime)
	g.Expect(ok).Should(BeTrue(), "kept file stays cached")

	_, ok = digests.Lookup("/data/b.txt", 5, baseTime.Add(time.Hour))
	g.Expect(ok).Should(BeFalse(), "removed file is forgotten")
}

func TestEngine_UnreadableFileIsNeverGroupedOrActedOn(t *testing.T) {
	t.Parallel()

	for _, method := range []config.Method{config.MethodHash, config.MethodSize, config.MethodName} {
		t.Run(method.String(), func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			m := filesystem.NewMockFileSystem()
			m.AddFile("/data/1/f.txt", []byte("hello"), baseTime)
			m.AddFile("/data/2/f.txt", []byte("hello"), baseTime)
			m.AddFile("/data/3/f.txt", []byte("hello"), baseTime)
			m.InjectError("open", "/data/2/f.txt", syscall.EPERM)

			recorder := &eventRecorder{}
			engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
				cfg.Method = method
				cfg.Action = config.ActionRemove
			})
			engine.SetEventEmitter(recorder)

			result, err := engine.Run(context.Background())
			g.Expect(err).ShouldNot(HaveOccurred())
			g.Expect(result.Groups).Should(HaveLen(1))
			g.Expect(paths(result.Groups[0].Group.Members)).Should(Equal([]string{"/data/1/f.txt", "/data/3/f.txt"}))
			g.Expect(result.Summary.FilesSkipped).Should(Equal(1))
			g.Expect(result.Summary.FilesRemoved).Should(Equal(1))

			g.Expect(m.Exists("/data/1/f.txt")).Should(BeTrue())
			g.Expect(m.Exists("/data/2/f.txt")).Should(BeTrue(), "unreadable file must survive")
			g.Expect(m.Exists("/data/3/f.txt")).Should(BeFalse())

			errs := recorder.errors()
			g.Expect(errs).Should(HaveLen(1))
			g.Expect(errs[0].Path).Should(Equal("/data/2/f.txt"))
			g.Expect(errs[0].Err).Should(MatchError(syscall.EPERM))
		})
	}
}

func TestEngine_SameDirectoryUnderTwoNamesIsScannedOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := filesystem.NewMockFileSystem()
	m.AddFile("/data/only.txt", []byte("alone"), baseTime)
	m.AddSymlink("/photos", "/data")

	roots := []string{"/data", "data/", "/photos", "/data/../data"}
	engine := newEngine(t, m, roots, nil, func(cfg *config.Config) { cfg.Action = config.ActionRemove })

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(BeEmpty())
	g.Expect(result.Summary.FilesScanned).Should(Equal(1))
	g.Expect(result.Summary.FilesRemoved).Should(BeZero())
	g.Expect(m.Exists("/data/only.txt")).Should(BeTrue())
}

func TestEngine_RelativeAndAbsoluteRootOnRealTree(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	only := filepath.Join(root, "only.txt")
	g.Expect(os.WriteFile(only, []byte("alone"), 0o600)).Should(Succeed())

	wd, err := os.Getwd()
	g.Expect(err).ShouldNot(HaveOccurred())

	rel, err := filepath.Rel(wd, root)
	g.Expect(err).ShouldNot(HaveOccurred())

	link := filepath.Join(t.TempDir(), "alias")
	g.Expect(os.Symlink(root, link)).Should(Succeed())

	roots := []string{root, rel, link}
	engine, err := dupes.NewEngine(filesystem.NewRealFileSystem(), roots,
		testConfig(t, roots, func(cfg *config.Config) { cfg.Action = config.ActionRemove }), nil, nil)
	g.Expect(err).ShouldNot(HaveOccurred())

	result, err := engine.Run(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(result.Groups).Should(BeEmpty())
	g.Expect(result.Summary.FilesScanned).Should(Equal(1))
	g.Expect(only).Should(BeAnExistingFile())
}

func TestEngine_DryRunMatchesLiveRun(t *testing.T) {
	t.Parallel()

	tree := func() *filesystem.MockFileSystem {
		m := filesystem.NewMockFileSystem()
		m.AddFile("/data/x/1.bin", []byte("alpha"), baseTime)
		m.AddFile("/data/y/1.bin", []byte("alpha"), baseTime.Add(time.Hour))
		m.AddFile("/data/z/1.bin", []byte("alpha"), baseTime.Add(-time.Hour))
		m.AddFile("/data/x/2.bin", []byte("bravo!"), baseTime.Add(2*time.Hour))
		m.AddFile("/data/y/2.bin", []byte("bravo!"), baseTime)
		m.AddFile("/data/solo.bin", []byte("charlie"), baseTime)

		return m
	}

	type pair struct{ Path, Kept string }

	pairs := func(result *dupes.Result) []pair {
		out := make([]pair, 0)
		for _, gr := range result.Groups {
			for _, action := range gr.Actions {
				out = append(out, pair{Path: action.Path, Kept: action.Kept})
			}
		}

		return out
	}

	for _, action := range []config.Action{config.ActionRemove, config.ActionHardlink} {
		t.Run(action.String(), func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			run := func(dryRun bool) (*dupes.Result, *filesystem.MockFileSystem) {
				m := tree()
				engine := newEngine(t, m, dataRoot, nil, func(cfg *config.Config) {
					cfg.Keep = config.KeepOldest
					cfg.Action = action
					cfg.DryRun = dryRun
				})

				result, err := engine.Run(context.Background())
				g.Expect(err).ShouldNot(HaveOccurred())

				return result, m
			}

			dry, dryTree := run(true)
			live, _ := run(false)

			g.Expect(dry.Groups).Should(HaveLen(2))
			g.Expect(pairs(dry)).Should(HaveLen(3))
			g.Expect(pairs(dry)).Should(Equal(pairs(live)))
			g.Expect(pairs(dry)).Should(ContainElement(pair{Path: "/data/x/1.bin", Kept: "/data/z/1.bin"}))
			g.Expect(pairs(dry)).Should(ContainElement(pair{Path: "/data/x/2.bin", Kept: "/data/y/2.bin"}))
			g.Expect(dry.Summary.FilesRemoved + dry.Summary.FilesLinked).
				Should(Equal(live.Summary.FilesRemoved + live.Summary.FilesLinked))
			g.Expect(dry.Summary.BytesReclaimed).Should(Equal(live.Summary.BytesReclaimed))
			g.Expect(dryTree.ListFiles()).Should(Equal(tree().ListFiles()))
		})
	}
}

func TestEngine_RelativeRootCachesUnderCanonicalPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		file := filepath.Join(root, name)
		g.Expect(os.WriteFile(file, []byte("same"), 0o600)).Should(Succeed())
		g.Expect(os.Chtimes(file, baseTime, baseTime)).Should(Succeed())
	}

	canonical, err := filepath.EvalSymlinks(root)
	g.Expect(err).ShouldNot(HaveOccurred())

	wd, err := os.Getwd()
	g.Expect(err).ShouldNot(HaveOccurred())

	rel, err := filepath.Rel(wd, root)
	g.Expect(err).ShouldNot(HaveOccurred())

	digests, err := cache.Load(filepath.Join(t.TempDir(), "hashes.json"), "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())

	scan := func(dir string) *dupes.Result {
		roots := []string{dir}
		engine, err := dupes.NewEngine(filesystem.NewRealFileSystem(), roots, testConfig(t, roots, nil), nil, nil)
		g.Expect(err).ShouldNot(HaveOccurred())
		engine.SetCache(digests)

		result, err := engine.Run(context.Background())
		g.Expect(err).ShouldNot(HaveOccurred())

		return result
	}

	first := scan(rel)
	g.Expect(first.Groups).Should(HaveLen(1))
	g.Expect(first.Summary.CacheHits).Should(BeZero())

	_, ok := digests.Lookup(filepath.Join(canonical, "a.txt"), 4, baseTime)
	g.Expect(ok).Should(BeTrue())

	second := scan(canonical)
	g.Expect(second.Summary.CacheHits).Should(Equal(2))
	g.Expect(second.Groups[0].Group.Members[0].Path).Should(Equal(filepath.Join(canonical, "a.txt")))
}
