// Package tier implements the core domain logic for ladder: the static
// test-tier catalog and the path classifier that routes discovered test
// files onto it.
package tier

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ID identifies one testing level of the ladder.
type ID string

const (
	// Common is a documentation bucket, not a routable level. It carries
	// no trigger, no hardware class and no patterns; it exists so the
	// catalog mirrors the policy table one to one.
	Common ID = "common"
	L1     ID = "L1"
	L2     ID = "L2"
	L3     ID = "L3"
	L4     ID = "L4"
	L5     ID = "L5"
)

// Trigger is the CI event that causes a tier's tests to run.
type Trigger string

const (
	TriggerNone         Trigger = ""
	TriggerPRReadyLabel Trigger = "pr_ready_label"
	TriggerPRMerged     Trigger = "pr_merged"
	TriggerNightly      Trigger = "nightly"
	TriggerWeekly       Trigger = "weekly"
	TriggerPreRelease   Trigger = "pre_release"
)

// Hardware is the hardware class a tier's tests require.
type Hardware string

const (
	HardwareNone Hardware = ""
	HardwareCPU  Hardware = "cpu"
	HardwareGPU  Hardware = "gpu"
)

// Kind labels the sub-kind of test a pattern selects within its tier.
type Kind string

const (
	KindUnit        Kind = "unit"
	KindFunctional  Kind = "functional"
	KindExpansion   Kind = "expansion"
	KindPerf        Kind = "perf"
	KindDoc         Kind = "doc"
	KindStability   Kind = "stability"
	KindReliability Kind = "reliability"
)

// Pattern is one glob a tier claims, tagged with its sub-kind.
type Pattern struct {
	Glob string `json:"glob"`
	Kind Kind   `json:"kind"`
}

// Tier is one testing level: scope, trigger, hardware, time budget and the
// directory globs it owns. Tiers are immutable reference data built once at
// process start.
type Tier struct {
	ID       ID            `json:"id"`
	Scope    string        `json:"scope"`
	Budget   time.Duration `json:"time_budget"` // 0 means no fixed budget
	Trigger  Trigger       `json:"trigger"`
	Hardware Hardware      `json:"hardware"`
	Patterns []Pattern     `json:"patterns"`
	Markers  []string      `json:"markers"` // runner marker tags, e.g. core_model, cpu
}

// Routable reports whether CI events route to this tier. Only Common is
// non-routable.
func (t Tier) Routable() bool {
	return t.Trigger != TriggerNone
}

// MarkerExpr returns the runner marker expression for the tier, e.g.
// "core_model and cpu". Empty for non-routable tiers.
func (t Tier) MarkerExpr() string {
	return strings.Join(t.Markers, " and ")
}

// UnknownTierError reports a lookup for an identifier outside the six
// defined values. This is a config/programming error and aborts the run.
type UnknownTierError struct {
	ID string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("unknown tier %q (valid: common, L1, L2, L3, L4, L5)", e.ID)
}

// ErrUnclassified is returned when a path matches no tier pattern. It is
// advisory: unclassified tests are reported for manual triage, they do not
// block the run.
var ErrUnclassified = errors.New("path matches no tier pattern")

// ErrUnknownTrigger is returned when a trigger identifier is not one of the
// five CI events.
var ErrUnknownTrigger = errors.New("unknown trigger")

// ParseID normalizes a tier identifier. Accepts any case ("l3", "L3",
// "Common").
func ParseID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return Common, nil
	case "l1":
		return L1, nil
	case "l2":
		return L2, nil
	case "l3":
		return L3, nil
	case "l4":
		return L4, nil
	case "l5":
		return L5, nil
	}
	return "", &UnknownTierError{ID: s}
}

// ParseTrigger validates a CI event identifier.
func ParseTrigger(s string) (Trigger, error) {
	switch Trigger(strings.ToLower(strings.TrimSpace(s))) {
	case TriggerPRReadyLabel:
		return TriggerPRReadyLabel, nil
	case TriggerPRMerged:
		return TriggerPRMerged, nil
	case TriggerNightly:
		return TriggerNightly, nil
	case TriggerWeekly:
		return TriggerWeekly, nil
	case TriggerPreRelease:
		return TriggerPreRelease, nil
	}
	return "", fmt.Errorf("%w: %q (valid: pr_ready_label, pr_merged, nightly, weekly, pre_release)", ErrUnknownTrigger, s)
}
