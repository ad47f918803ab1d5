// Package scenarios contains end-to-end workflow tests for ladder: fixture
// tree in, classified run plan and recorded history out.
package scenarios

import (
	"testing"

	"github.com/Dicklesworthstone/ladder/internal/tier"
	"github.com/Dicklesworthstone/ladder/tests/e2e/harness"
)

// TestClassificationMatrix verifies the path-to-tier routing table the
// whole ladder hangs off. Misrouting here silently runs the wrong suites.
func TestClassificationMatrix(t *testing.T) {
	t.Log("=== TestClassificationMatrix ===")
	env := harness.NewE2EEnvironment(t)

	tests := []struct {
		name string
		path string
		tier tier.ID
	}{
		{"component unit test", "tests/engine/test_arg_utils.py", tier.L1},
		{"worker unit test", "tests/workers/test_scheduler.py", tier.L1},
		{"online serving e2e", "tests/e2e/online_serving/test_qwen3_omni.py", tier.L2},
		{"offline inference e2e", "tests/e2e/offline_inference/test_batch.py", tier.L2},
		{"expansion overrides e2e dir", "tests/e2e/online_serving/test_video_expansion.py", tier.L3},
		{"offline expansion", "tests/e2e/offline_inference/test_asr_expansion.py", tier.L3},
		{"perf config", "tests/e2e/perf/nightly.json", tier.L4},
		{"example doc test", "tests/example/online_serving/test_demo.py", tier.L4},
		{"stability config", "tests/e2e/stability/weekly.json", tier.L5},
		{"reliability soak", "tests/e2e/reliability/test_soak.py", tier.L5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.AssertTier(tt.path, tt.tier)
		})
	}

	t.Run("no pattern claims it", func(t *testing.T) {
		env.AssertUnclassified("tests/legacy/helper_script.py")
		env.AssertUnclassified("docs/readme.md")
	})
}

// TestNightlyWorkflow walks the full nightly path: seed tree, discover,
// build plan, record the run, read it back.
func TestNightlyWorkflow(t *testing.T) {
	env := harness.NewE2EEnvironment(t)

	env.Step("Seeding fixture tree")
	env.SeedFixtureTree()

	env.Step("Discovering tests tree")
	res := env.Discover()
	env.Result("%d candidates, %d unclassified", res.Total(), len(res.Unclassified))

	env.Step("Building nightly plan")
	p := env.BuildPlan(tier.TriggerNightly)
	env.AssertStageOrder(p, []tier.ID{tier.L1, tier.L2, tier.L3, tier.L4})

	for _, s := range p.Stages {
		if s.MarkerExpr == "" {
			t.Errorf("stage %s has empty marker expression", s.Tier)
		}
		if len(s.Argv) == 0 {
			t.Errorf("stage %s has empty argv", s.Tier)
		}
	}

	env.Step("Recording the run")
	run := env.RecordDiscovery(tier.TriggerNightly, res)
	env.AssertRunCount(1)

	env.Step("Reading the run back")
	got := env.GetRun(run.ID)
	if got.Classified != res.ClassifiedCount() {
		t.Errorf("classified = %d, want %d", got.Classified, res.ClassifiedCount())
	}
	if len(got.Unclassified) != len(res.Unclassified) {
		t.Errorf("unclassified = %v, want %v", got.Unclassified, res.Unclassified)
	}

	env.Logger.Elapsed()
}

// TestTriggerRouting verifies each CI event selects its slice of the
// ladder, lower tiers included.
func TestTriggerRouting(t *testing.T) {
	env := harness.NewE2EEnvironment(t)
	env.SeedFixtureTree()

	tests := []struct {
		trigger tier.Trigger
		stages  []tier.ID
	}{
		{tier.TriggerPRReadyLabel, []tier.ID{tier.L1}},
		{tier.TriggerPRMerged, []tier.ID{tier.L1, tier.L2}},
		{tier.TriggerNightly, []tier.ID{tier.L1, tier.L2, tier.L3, tier.L4}},
		{tier.TriggerWeekly, []tier.ID{tier.L1, tier.L2, tier.L3, tier.L4, tier.L5}},
		{tier.TriggerPreRelease, []tier.ID{tier.L1, tier.L2, tier.L3, tier.L4, tier.L5}},
	}

	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			p := env.BuildPlan(tt.trigger)
			env.AssertStageOrder(p, tt.stages)
		})
	}
}

// TestHistoryRetention verifies recorded runs survive a prune inside the
// retention window.
func TestHistoryRetention(t *testing.T) {
	env := harness.NewE2EEnvironment(t)
	env.SeedFixtureTree()
	res := env.Discover()

	env.Step("Recording runs for two triggers")
	env.RecordDiscovery(tier.TriggerPRMerged, res)
	env.RecordDiscovery(tier.TriggerNightly, res)
	env.AssertRunCount(2)

	env.Step("Pruning with a 30-day retention window")
	deleted, err := env.DB.PruneRuns(30)
	env.AssertNoError(err, "prune runs")
	if deleted != 0 {
		t.Errorf("prune deleted %d fresh runs", deleted)
	}
	env.AssertRunCount(2)
}
