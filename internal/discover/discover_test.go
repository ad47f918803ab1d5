package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// writeTree lays out a miniature tests tree in dir.
func writeTree(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("# test\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
}

func TestWalkClassifiesTree(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir,
		"tests/engine/test_arg_utils.py",
		"tests/sampler/test_topk.py",
		"tests/e2e/online_serving/test_qwen3_omni.py",
		"tests/e2e/online_serving/test_qwen3_omni_expansion.py",
		"tests/e2e/perf/nightly.json",
		"tests/e2e/stability/weekly.json",
		"tests/e2e/reliability/test_qwen3_omni.py",
		"tests/foo/bar.txt",       // wrong extension, skipped
		"tests/conftest.py",       // not under a component dir
		"tests/engine/__pycache__/test_cached.py", // cache dir, skipped
	)

	res, err := Walk(context.Background(), Options{ProjectDir: dir, TestsRoot: "tests"})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if res.Total() != 8 {
		t.Fatalf("Total() = %d, want 8 (got %v)", res.Total(), res.Candidates)
	}
	if got := len(res.Unclassified); got != 1 {
		t.Fatalf("unclassified = %v, want only tests/conftest.py", res.Unclassified)
	}
	if res.Unclassified[0] != "tests/conftest.py" {
		t.Errorf("unclassified[0] = %q", res.Unclassified[0])
	}
	if res.ClassifiedCount() != 7 {
		t.Errorf("ClassifiedCount() = %d, want 7", res.ClassifiedCount())
	}

	wantTiers := map[tier.ID]int{
		tier.L1: 2,
		tier.L2: 1,
		tier.L3: 1,
		tier.L4: 1,
		tier.L5: 2,
	}
	for id, n := range wantTiers {
		if got := len(res.TierFiles[id]); got != n {
			t.Errorf("tier %s files = %d, want %d (%v)", id, got, n, res.TierFiles[id])
		}
	}
}

func TestWalkCandidatesSorted(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir,
		"tests/zeta/test_z.py",
		"tests/alpha/test_a.py",
	)

	res, err := Walk(context.Background(), Options{ProjectDir: dir, TestsRoot: "tests"})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %v", res.Candidates)
	}
	if res.Candidates[0].Path != "tests/alpha/test_a.py" {
		t.Errorf("candidates not sorted: %v", res.Candidates)
	}
}

func TestWalkMissingRootPropagates(t *testing.T) {
	_, err := Walk(context.Background(), Options{
		ProjectDir: t.TempDir(),
		TestsRoot:  "no-such-dir",
	})
	if err == nil {
		t.Fatal("Walk succeeded on missing root")
	}
	if !os.IsNotExist(err) {
		t.Errorf("error = %v, want fs not-exist (propagated unmodified)", err)
	}
}

func TestWalkCancelled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "tests/engine/test_arg_utils.py")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, Options{ProjectDir: dir, TestsRoot: "tests"})
	if err != context.Canceled {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestWalkFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "tests/engine/test_arg_utils.py")

	// A component dir living outside the tests root, linked in.
	shared := filepath.Join(dir, "shared")
	writeTree(t, dir, "shared/test_shared.py")
	if err := os.Symlink(shared, filepath.Join(dir, "tests", "extra")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	// A cycle back into the tree must not hang the walk.
	if err := os.Symlink(filepath.Join(dir, "tests"), filepath.Join(dir, "tests", "loop")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res, err := Walk(context.Background(), Options{ProjectDir: dir, TestsRoot: "tests"})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if res.Total() != 1 {
		t.Fatalf("Total() without FollowSymlinks = %d, want 1 (%v)", res.Total(), res.Candidates)
	}

	res, err = Walk(context.Background(), Options{
		ProjectDir:     dir,
		TestsRoot:      "tests",
		FollowSymlinks: true,
	})
	if err != nil {
		t.Fatalf("Walk with FollowSymlinks failed: %v", err)
	}
	if res.Total() != 2 {
		t.Fatalf("Total() with FollowSymlinks = %d, want 2 (%v)", res.Total(), res.Candidates)
	}
	if got := len(res.TierFiles[tier.L1]); got != 2 {
		t.Errorf("L1 files = %v, want the linked dir classified too", res.TierFiles[tier.L1])
	}
}

func TestWalkExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir,
		"tests/engine/test_arg_utils.py",
		"tests/e2e/perf/nightly.json",
	)

	res, err := Walk(context.Background(), Options{
		ProjectDir:        dir,
		TestsRoot:         "tests",
		IncludeExtensions: []string{".py"},
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if res.Total() != 1 {
		t.Fatalf("Total() = %d, want 1 (json filtered out)", res.Total())
	}
	if res.Candidates[0].TierID != tier.L1 {
		t.Errorf("tier = %s, want L1", res.Candidates[0].TierID)
	}
}
