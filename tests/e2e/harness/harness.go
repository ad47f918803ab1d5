// Package harness provides the E2E test environment for ladder: an
// isolated project directory with a fixture tests tree, a history
// database, and a tier catalog, plus step logging and domain assertions.
package harness

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dicklesworthstone/ladder/internal/db"
	"github.com/Dicklesworthstone/ladder/internal/discover"
	"github.com/Dicklesworthstone/ladder/internal/plan"
	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// E2EEnvironment is an isolated ladder project for one test: its own temp
// directory, history DB, and tier catalog. All resources are released via
// t.Cleanup.
type E2EEnvironment struct {
	T          *testing.T
	ProjectDir string
	DB         *db.DB
	Catalog    *tier.Catalog
	Matcher    *tier.Matcher
	Logger     *StepLogger

	stepN atomic.Int64
	start time.Time
}

// NewE2EEnvironment creates a fresh environment rooted in a temp directory.
func NewE2EEnvironment(t *testing.T) *E2EEnvironment {
	t.Helper()

	dir := t.TempDir()
	database, err := db.OpenProjectDB(dir)
	if err != nil {
		t.Fatalf("open history db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	catalog := tier.New()
	return &E2EEnvironment{
		T:          t,
		ProjectDir: dir,
		DB:         database,
		Catalog:    catalog,
		Matcher:    tier.NewMatcher(catalog),
		Logger:     NewStepLogger(t),
		start:      time.Now(),
	}
}

// Step logs an auto-numbered test step.
func (env *E2EEnvironment) Step(format string, args ...any) {
	env.T.Helper()
	env.Logger.Step(int(env.stepN.Add(1)), format, args...)
}

// Result logs a step result.
func (env *E2EEnvironment) Result(format string, args ...any) {
	env.T.Helper()
	env.Logger.Result(format, args...)
}

// DBState logs the current run count from the history DB.
func (env *E2EEnvironment) DBState() {
	env.T.Helper()
	stats, err := env.DB.GetStats()
	if err != nil {
		env.T.Fatalf("DBState: %v", err)
	}
	env.Logger.DBState(stats.Runs)
}

// Elapsed returns time since environment creation.
func (env *E2EEnvironment) Elapsed() time.Duration {
	return time.Since(env.start)
}

// WriteTestFile writes a file relative to the project dir, creating parent
// directories, and returns its absolute path.
func (env *E2EEnvironment) WriteTestFile(rel string, content []byte) string {
	env.T.Helper()

	path := filepath.Join(env.ProjectDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		env.T.Fatalf("WriteTestFile mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		env.T.Fatalf("WriteTestFile: %v", err)
	}
	return path
}

// FixtureTree is the canonical test tree: one or more files per routable
// tier plus one file no pattern claims.
var FixtureTree = []string{
	"tests/engine/test_arg_utils.py",                   // L1
	"tests/workers/test_scheduler.py",                  // L1
	"tests/e2e/online_serving/test_qwen3_omni.py",      // L2
	"tests/e2e/offline_inference/test_batch.py",        // L2
	"tests/e2e/online_serving/test_video_expansion.py", // L3
	"tests/e2e/perf/nightly.json",                      // L4
	"tests/example/online_serving/test_demo.py",        // L4
	"tests/e2e/stability/weekly.json",                  // L5
	"tests/e2e/reliability/test_soak.py",               // L5
	"tests/legacy/helper_script.py",                    // unclassified
}

// SeedFixtureTree materializes FixtureTree under the project dir.
func (env *E2EEnvironment) SeedFixtureTree() {
	env.T.Helper()
	for _, rel := range FixtureTree {
		env.WriteTestFile(rel, []byte("# fixture\n"))
	}
}

// Classify routes one path through the matcher.
func (env *E2EEnvironment) Classify(path string) (tier.Match, error) {
	env.T.Helper()
	return env.Matcher.Classify(path)
}

// Discover walks the project's tests tree.
func (env *E2EEnvironment) Discover() *discover.Result {
	env.T.Helper()

	res, err := discover.Walk(context.Background(), discover.Options{
		ProjectDir: env.ProjectDir,
		TestsRoot:  "tests",
		Matcher:    env.Matcher,
	})
	if err != nil {
		env.T.Fatalf("Discover: %v", err)
	}
	return res
}

// BuildPlan builds a run plan for the trigger over the current tree.
func (env *E2EEnvironment) BuildPlan(trigger tier.Trigger) *plan.RunPlan {
	env.T.Helper()

	p, err := plan.Build(plan.Options{
		Trigger:   trigger,
		Catalog:   env.Catalog,
		Discovery: env.Discover(),
	})
	if err != nil {
		env.T.Fatalf("BuildPlan(%s): %v", trigger, err)
	}
	return p
}

// RecordDiscovery persists a discovery result as a run and returns it.
func (env *E2EEnvironment) RecordDiscovery(trigger tier.Trigger, res *discover.Result) *db.Run {
	env.T.Helper()

	counts := make(map[string]int, len(res.TierFiles))
	for id, files := range res.TierFiles {
		counts[string(id)] = len(files)
	}
	run := &db.Run{
		Trigger:      string(trigger),
		TestsRoot:    "tests",
		Total:        res.Total(),
		Classified:   res.ClassifiedCount(),
		Unclassified: res.Unclassified,
		TierCounts:   counts,
	}
	if err := env.DB.RecordRun(run); err != nil {
		env.T.Fatalf("RecordDiscovery: %v", err)
	}
	return run
}

// GetRun fetches a recorded run by id.
func (env *E2EEnvironment) GetRun(id string) *db.Run {
	env.T.Helper()
	run, err := env.DB.GetRun(id)
	if err != nil {
		env.T.Fatalf("GetRun(%s): %v", id, err)
	}
	return run
}

// RunCount returns the number of recorded runs.
func (env *E2EEnvironment) RunCount() int {
	env.T.Helper()
	stats, err := env.DB.GetStats()
	if err != nil {
		env.T.Fatalf("RunCount: %v", err)
	}
	return stats.Runs
}

// randomID returns n hex characters for unique fixture names.
func randomID(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
