//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package dupes_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/pkg/filesystem"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testConfig returns a validated config for roots with overrides applied.
func testConfig(t *testing.T, roots []string, overrides func(cfg *config.Config)) *config.Config {
	t.Helper()

	cfg := config.Defaults()
	cfg.Roots = roots
	cfg.Workers = 4

	if overrides != nil {
		overrides(cfg)
	}

	cfg, err := config.PostProcessConfig(cfg)
	NewWithT(t).Expect(err).ShouldNot(HaveOccurred())

	return cfg
}

// newEngine builds an engine over fsys rooted at roots.
func newEngine(
	t *testing.T,
	fsys filesystem.FileSystem,
	roots []string,
	chooser dupes.Chooser,
	overrides func(cfg *config.Config),
) *dupes.Engine {
	t.Helper()

	engine, err := dupes.NewEngine(fsys, roots, testConfig(t, roots, overrides), chooser, nil)
	NewWithT(t).Expect(err).ShouldNot(HaveOccurred())

	return engine
}

// sampleTree is the classic three-file scenario: a and b share content, c differs.
func sampleTree() *filesystem.MockFileSystem {
	m := filesystem.NewMockFileSystem()
	m.AddFile("/data/a.txt", []byte("hello"), baseTime)
	m.AddFile("/data/b.txt", []byte("hello"), baseTime.Add(time.Hour))
	m.AddFile("/data/c.txt", []byte("world"), baseTime)

	return m
}

func paths(records []dupes.FileRecord) []string {
	out := make([]string, len(records))
	for i, record := range records {
		out[i] = record.Path
	}

	return out
}

// eventRecorder collects engine events.
type eventRecorder struct {
	mu     sync.Mutex
	events []dupes.Event
}

func (r *eventRecorder) Emit(event dupes.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *eventRecorder) errors() []dupes.ErrorOccurred {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []dupes.ErrorOccurred

	for _, event := range r.events {
		if e, ok := event.(dupes.ErrorOccurred); ok {
			out = append(out, e)
		}
	}

	return out
}

func (r *eventRecorder) last() dupes.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.events) == 0 {
		return nil
	}

	return r.events[len(r.events)-1]
}

// cancellingChooser cancels the run context the first time it is asked
// and then keeps the first member.
type cancellingChooser struct {
	cancel context.CancelFunc
	asked  int
}

func (c *cancellingChooser) Choose(_ context.Context, _ dupes.Group) (int, bool, error) {
	c.asked++
	c.cancel()

	return 0, false, nil
}
