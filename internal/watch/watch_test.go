package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	var mu sync.Mutex
	calls := map[string]int{}
	fn := func(p string) {
		mu.Lock()
		calls[p]++
		mu.Unlock()
	}

	for i := 0; i < 10; i++ {
		d.trigger("a.py", fn)
	}
	d.trigger("b.py", fn)

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls["a.py"] != 1 {
		t.Errorf("a.py fired %d times, want 1", calls["a.py"])
	}
	if calls["b.py"] != 1 {
		t.Errorf("b.py fired %d times, want 1", calls["b.py"])
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	fired := make(chan string, 1)
	d.trigger("a.py", func(p string) { fired <- p })
	d.stop()

	select {
	case p := <-fired:
		t.Fatalf("debounced call fired after stop: %s", p)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRunClassifiesCreatedFile(t *testing.T) {
	dir := t.TempDir()
	testsDir := filepath.Join(dir, "tests", "engine")
	if err := os.MkdirAll(testsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	events := make(chan Event, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			ProjectDir: dir,
			TestsRoot:  "tests",
			Debounce:   20 * time.Millisecond,
			Logger:     log.New(io.Discard),
			OnEvent:    func(ev Event) { events <- ev },
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(testsDir, "test_arg_utils.py")
	if err := os.WriteFile(path, []byte("# test\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-events:
		if ev.TierID != tier.L1 {
			t.Errorf("tier = %s, want L1 (event %+v)", ev.TierID, ev)
		}
		if ev.Path != "tests/engine/test_arg_utils.py" {
			t.Errorf("path = %q", ev.Path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no classification event within 3s")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after cancel")
	}
}

func TestRunReportsUnclassified(t *testing.T) {
	dir := t.TempDir()
	testsDir := filepath.Join(dir, "tests", "e2e", "perf")
	if err := os.MkdirAll(testsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	events := make(chan Event, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Run(ctx, Options{
			ProjectDir: dir,
			TestsRoot:  "tests",
			Debounce:   20 * time.Millisecond,
			Logger:     log.New(io.Discard),
			OnEvent:    func(ev Event) { events <- ev },
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// A stray json that is not the nightly perf config.
	path := filepath.Join(testsDir, "scratch.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-events:
		if !ev.Unclassified {
			t.Errorf("event not marked unclassified: %+v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event within 3s")
	}

	cancel()
}

func TestWatchableExt(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"test_x.py", true},
		{"nightly.json", true},
		{"notes.md", false},
		{"test_x.pyc", false},
	}
	for _, tt := range tests {
		if got := watchableExt(tt.name); got != tt.want {
			t.Errorf("watchableExt(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
