package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/ladder/internal/discover"
	"github.com/Dicklesworthstone/ladder/internal/tier"
)

func discoverFixture(t *testing.T) *discover.Result {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		"tests/engine/test_arg_utils.py",
		"tests/e2e/online_serving/test_qwen3_omni.py",
		"tests/e2e/online_serving/test_qwen3_omni_expansion.py",
		"tests/e2e/perf/nightly.json",
		"tests/e2e/stability/weekly.json",
		"tests/helpers.py",
	}
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	res, err := discover.Walk(context.Background(), discover.Options{ProjectDir: dir, TestsRoot: "tests"})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	return res
}

func stageFor(t *testing.T, p *RunPlan, id tier.ID) Stage {
	t.Helper()
	for _, s := range p.Stages {
		if s.Tier == id {
			return s
		}
	}
	t.Fatalf("plan has no stage %s (stages: %v)", id, p.Stages)
	return Stage{}
}

func TestBuildNightlyPlan(t *testing.T) {
	res := discoverFixture(t)

	p, err := Build(Options{Trigger: tier.TriggerNightly, Discovery: res})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Nightly runs L4 plus everything below it.
	want := []tier.ID{tier.L1, tier.L2, tier.L3, tier.L4}
	if len(p.Stages) != len(want) {
		t.Fatalf("got %d stages, want %d", len(p.Stages), len(want))
	}
	for i, id := range want {
		if p.Stages[i].Tier != id {
			t.Errorf("stage[%d] = %s, want %s", i, p.Stages[i].Tier, id)
		}
	}

	l1 := stageFor(t, p, tier.L1)
	if l1.MarkerExpr != "core_model and cpu" {
		t.Errorf("L1 marker = %q", l1.MarkerExpr)
	}
	if l1.TimeBudget != "15m0s" {
		t.Errorf("L1 budget = %q", l1.TimeBudget)
	}
	if len(l1.Files) != 1 || l1.Files[0] != "tests/engine/test_arg_utils.py" {
		t.Errorf("L1 files = %v", l1.Files)
	}

	l4 := stageFor(t, p, tier.L4)
	if len(l4.Files) != 1 || l4.Files[0] != "tests/e2e/perf/nightly.json" {
		t.Errorf("L4 files = %v", l4.Files)
	}

	if len(p.Unclassified) != 1 || p.Unclassified[0] != "tests/helpers.py" {
		t.Errorf("unclassified = %v", p.Unclassified)
	}
}

func TestBuildArgv(t *testing.T) {
	res := discoverFixture(t)

	p, err := Build(Options{
		Trigger:    tier.TriggerPRReadyLabel,
		Discovery:  res,
		RunnerArgs: `-x --timeout 900 -k "not slow"`,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(p.Stages) != 1 {
		t.Fatalf("pr_ready_label stages = %d, want 1", len(p.Stages))
	}

	argv := p.Stages[0].Argv
	wantPrefix := []string{"pytest", "-m", "core_model and cpu", "tests/engine/test_arg_utils.py"}
	for i, w := range wantPrefix {
		if argv[i] != w {
			t.Fatalf("argv = %v, want prefix %v", argv, wantPrefix)
		}
	}
	// shellwords keeps the quoted -k expression as one arg.
	last := argv[len(argv)-1]
	if last != "not slow" {
		t.Errorf("last arg = %q, want %q", last, "not slow")
	}
}

func TestBuildWithoutDiscovery(t *testing.T) {
	p, err := Build(Options{Trigger: tier.TriggerWeekly})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(p.Stages) != 5 {
		t.Fatalf("weekly stages = %d, want 5", len(p.Stages))
	}
	l5 := stageFor(t, p, tier.L5)
	if l5.TimeBudget != "" {
		t.Errorf("L5 has a time budget: %q", l5.TimeBudget)
	}
	if len(l5.Files) != 0 {
		t.Errorf("L5 files without discovery = %v", l5.Files)
	}
}

func TestBuildUnknownTrigger(t *testing.T) {
	_, err := Build(Options{Trigger: tier.Trigger("on_push")})
	if !errors.Is(err, tier.ErrUnknownTrigger) {
		t.Fatalf("error = %v, want ErrUnknownTrigger", err)
	}
}

func TestBuildBadRunnerArgs(t *testing.T) {
	_, err := Build(Options{Trigger: tier.TriggerNightly, RunnerArgs: `--flag "unterminated`})
	if err == nil {
		t.Fatal("Build succeeded with unterminated quote in runner args")
	}
}

func TestPlanYAML(t *testing.T) {
	res := discoverFixture(t)
	p, err := Build(Options{Trigger: tier.TriggerPRMerged, Discovery: res})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	out, err := p.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{"trigger: pr_merged", "tier: L2", "marker_expr: core_model and gpu"} {
		if !strings.Contains(s, want) {
			t.Errorf("yaml missing %q:\n%s", want, s)
		}
	}
}
