package tier

import "time"

// Catalog is the authoritative mapping from tier identifier to metadata.
// It is purely declarative: no side effects, no mutation after build.
type Catalog struct {
	ordered []Tier
	byID    map[ID]int
}

// builtin returns the tiers of the testing ladder in escalation order.
// Order is significant: later tiers are supersets of earlier guarantees
// (an L3 run also runs L1 and L2).
func builtin() []Tier {
	return []Tier{
		{
			ID:    Common,
			Scope: "shared fixtures and conventions; not routed by any CI event",
		},
		{
			ID:       L1,
			Scope:    "component unit tests gating PR readiness",
			Budget:   15 * time.Minute,
			Trigger:  TriggerPRReadyLabel,
			Hardware: HardwareCPU,
			Patterns: []Pattern{
				{Glob: "tests/*/test_*.py", Kind: KindUnit},
			},
			Markers: []string{"core_model", "cpu"},
		},
		{
			ID:       L2,
			Scope:    "core model e2e, online serving and offline inference",
			Budget:   30 * time.Minute,
			Trigger:  TriggerPRMerged,
			Hardware: HardwareGPU,
			Patterns: []Pattern{
				{Glob: "tests/e2e/online_serving/test_*.py", Kind: KindFunctional},
				{Glob: "tests/e2e/offline_inference/test_*.py", Kind: KindFunctional},
			},
			Markers: []string{"core_model", "gpu"},
		},
		{
			ID:       L3,
			Scope:    "broader scenario coverage for core models (expansion tests)",
			Budget:   30 * time.Minute,
			Trigger:  TriggerNightly,
			Hardware: HardwareGPU,
			Patterns: []Pattern{
				{Glob: "tests/e2e/online_serving/test_*_expansion.py", Kind: KindExpansion},
				{Glob: "tests/e2e/offline_inference/test_*_expansion.py", Kind: KindExpansion},
			},
			Markers: []string{"expansion", "gpu"},
		},
		{
			ID:       L4,
			Scope:    "nightly performance benchmarks and documentation example tests",
			Budget:   3 * time.Hour,
			Trigger:  TriggerNightly,
			Hardware: HardwareGPU,
			Patterns: []Pattern{
				{Glob: "tests/e2e/perf/nightly.json", Kind: KindPerf},
				{Glob: "tests/example/online_serving/test_*.py", Kind: KindDoc},
				{Glob: "tests/example/offline_inference/test_*.py", Kind: KindDoc},
			},
			Markers: []string{"nightly", "gpu"},
		},
		{
			ID:       L5,
			Scope:    "weekly long-run stability and reliability",
			Trigger:  TriggerWeekly,
			Hardware: HardwareGPU,
			Patterns: []Pattern{
				{Glob: "tests/e2e/stability/weekly.json", Kind: KindStability},
				{Glob: "tests/e2e/reliability/test_*.py", Kind: KindReliability},
			},
			Markers: []string{"stability", "gpu"},
		},
	}
}

// New builds a catalog from the built-in policy table.
func New() *Catalog {
	return newCatalog(builtin())
}

// NewWithExtra builds a catalog with additional per-tier patterns layered
// onto the built-in table (from project config). Unknown ids in extra are
// rejected by config validation before this is called; they are ignored
// here.
func NewWithExtra(extra map[ID][]Pattern) *Catalog {
	tiers := builtin()
	for i := range tiers {
		if more, ok := extra[tiers[i].ID]; ok {
			tiers[i].Patterns = append(tiers[i].Patterns, more...)
		}
	}
	return newCatalog(tiers)
}

func newCatalog(tiers []Tier) *Catalog {
	c := &Catalog{
		ordered: tiers,
		byID:    make(map[ID]int, len(tiers)),
	}
	for i, t := range tiers {
		c.byID[t.ID] = i
	}
	return c
}

// Get returns the tier for id. Fails with *UnknownTierError for anything
// outside the six defined values.
func (c *Catalog) Get(id ID) (Tier, error) {
	i, ok := c.byID[id]
	if !ok {
		return Tier{}, &UnknownTierError{ID: string(id)}
	}
	return c.ordered[i], nil
}

// All returns the six tiers in escalation order (common, L1..L5).
func (c *Catalog) All() []Tier {
	out := make([]Tier, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Routable returns the routable tiers (L1..L5) in escalation order.
func (c *Catalog) Routable() []Tier {
	out := make([]Tier, 0, len(c.ordered))
	for _, t := range c.ordered {
		if t.Routable() {
			out = append(out, t)
		}
	}
	return out
}

// rank returns the escalation rank of a tier id; higher rank means a later
// (superset) tier.
func (c *Catalog) rank(id ID) int {
	return c.byID[id]
}

// Process-wide default catalog, loaded once at startup. Read-only after
// init, so concurrent callers need no synchronization.
var std = New()

// Default returns the process-wide catalog.
func Default() *Catalog {
	return std
}
