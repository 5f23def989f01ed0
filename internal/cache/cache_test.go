//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dupes/internal/cache"
)

var (
	modTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now     = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	c, err := cache.Load(filepath.Join(t.TempDir(), "none.json"), "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(c.Len()).Should(BeZero())
}

func TestLookup_MatchesSizeAndModTime(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	c, err := cache.Load(filepath.Join(t.TempDir(), "c.json"), "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())

	c.Store("/data/a.txt", 5, modTime, "abc123")

	digest, ok := c.Lookup("/data/a.txt", 5, modTime)
	g.Expect(ok).Should(BeTrue())
	g.Expect(digest).Should(Equal("abc123"))

	_, ok = c.Lookup("/data/a.txt", 6, modTime)
	g.Expect(ok).Should(BeFalse(), "size changed")

	_, ok = c.Lookup("/data/a.txt", 5, modTime.Add(time.Second))
	g.Expect(ok).Should(BeFalse(), "modification time changed")

	_, ok = c.Lookup("/data/b.txt", 5, modTime)
	g.Expect(ok).Should(BeFalse())

	c.Forget("/data/a.txt")
	g.Expect(c.Len()).Should(BeZero())
}

func TestSave_RoundTripsEntries(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "nested", "c.json")

	c, err := cache.Load(path, "blake3")
	g.Expect(err).ShouldNot(HaveOccurred())

	c.Store("/data/a.txt", 5, modTime, "abc123")
	g.Expect(c.Save()).Should(Succeed())

	reloaded, err := cache.Load(path, "blake3")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(reloaded.Len()).Should(Equal(1))

	digest, ok := reloaded.Lookup("/data/a.txt", 5, modTime)
	g.Expect(ok).Should(BeTrue())
	g.Expect(digest).Should(Equal("abc123"))

	entries, err := os.ReadDir(filepath.Dir(path))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(entries).Should(HaveLen(1), "no temp files left behind")
}

func TestSave_UnchangedCacheWritesNothing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "c.json")

	c, err := cache.Load(path, "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(c.Save()).Should(Succeed())
	g.Expect(path).ShouldNot(BeAnExistingFile())
}

func TestLoad_RejectsOtherAlgorithm(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "c.json")

	c, err := cache.Load(path, "md5")
	g.Expect(err).ShouldNot(HaveOccurred())
	c.Store("/data/a.txt", 5, modTime, "abc123")
	g.Expect(c.Save()).Should(Succeed())

	other, err := cache.Load(path, "sha256")
	g.Expect(err).Should(MatchError(cache.ErrAlgorithmMismatch))
	g.Expect(other).ShouldNot(BeNil())
	g.Expect(other.Len()).Should(BeZero())
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "c.json")
	g.Expect(os.WriteFile(path, []byte("{not json"), 0o600)).Should(Succeed())

	c, err := cache.Load(path, "sha256")
	g.Expect(err).Should(MatchError(cache.ErrCorrupt))
	g.Expect(c.Len()).Should(BeZero())
}

func TestPrune_DropsStaleEntries(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	current := now
	c, err := cache.Load(filepath.Join(t.TempDir(), "c.json"), "sha256")
	g.Expect(err).ShouldNot(HaveOccurred())
	c.WithClock(func() time.Time { return current })

	c.Store("/old", 1, modTime, "o")
	current = now.Add(40 * 24 * time.Hour)
	c.Store("/new", 1, modTime, "n")

	g.Expect(c.Prune(cache.DefaultMaxAge)).Should(Equal(1))
	g.Expect(c.Len()).Should(Equal(1))

	_, ok := c.Lookup("/new", 1, modTime)
	g.Expect(ok).Should(BeTrue())
}

func TestFileName_SeparatesEndpointsAndAlgorithms(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	local := cache.FileName("local", "sha256")
	g.Expect(local).Should(HavePrefix("hashes-"))
	g.Expect(local).Should(HaveSuffix("-sha256.json"))
	g.Expect(cache.FileName("sftp://joe@nas:22", "sha256")).ShouldNot(Equal(local))
	g.Expect(cache.FileName("local", "md5")).ShouldNot(Equal(local))
}
