// Package plan turns a CI trigger event plus discovered candidates into a
// run plan for the external test runner.
package plan

import (
	"fmt"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	yaml "go.yaml.in/yaml/v3"

	"github.com/Dicklesworthstone/ladder/internal/discover"
	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// Stage is one tier's slice of a run plan.
type Stage struct {
	Tier       tier.ID       `json:"tier" yaml:"tier"`
	Scope      string        `json:"scope" yaml:"scope"`
	Trigger    tier.Trigger  `json:"trigger" yaml:"trigger"`
	Hardware   tier.Hardware `json:"hardware" yaml:"hardware"`
	TimeBudget string        `json:"time_budget,omitempty" yaml:"time_budget,omitempty"`
	MarkerExpr string        `json:"marker_expr" yaml:"marker_expr"`
	Files      []string      `json:"files" yaml:"files"`
	Argv       []string      `json:"argv,omitempty" yaml:"argv,omitempty"`
}

// RunPlan is the ordered set of stages a CI event routes to. Execution is
// the external runner's job; the plan stops at files, markers and argv.
type RunPlan struct {
	Trigger      tier.Trigger `json:"trigger" yaml:"trigger"`
	GeneratedAt  time.Time    `json:"generated_at" yaml:"generated_at"`
	Stages       []Stage      `json:"stages" yaml:"stages"`
	Unclassified []string     `json:"unclassified,omitempty" yaml:"unclassified,omitempty"`
}

// Options configures plan building.
type Options struct {
	Trigger tier.Trigger
	// Catalog defaults to the process-wide catalog when nil.
	Catalog *tier.Catalog
	// Discovery supplies the classified candidates; stages of tiers with
	// no discovered files are kept, with empty file lists.
	Discovery *discover.Result
	// Runner is the test runner binary, default pytest.
	Runner string
	// RunnerArgs is appended to every stage's argv, split shell-style.
	RunnerArgs string
}

// Build produces the run plan for a CI event.
func Build(opts Options) (*RunPlan, error) {
	c := opts.Catalog
	if c == nil {
		c = tier.Default()
	}

	selected, err := c.ForTrigger(opts.Trigger)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == "" {
		runner = "pytest"
	}
	var extra []string
	if opts.RunnerArgs != "" {
		extra, err = shellwords.Parse(opts.RunnerArgs)
		if err != nil {
			return nil, fmt.Errorf("parse runner args: %w", err)
		}
	}

	p := &RunPlan{
		Trigger:     opts.Trigger,
		GeneratedAt: time.Now().UTC(),
	}
	for _, t := range selected {
		stage := Stage{
			Tier:       t.ID,
			Scope:      t.Scope,
			Trigger:    t.Trigger,
			Hardware:   t.Hardware,
			MarkerExpr: t.MarkerExpr(),
		}
		if t.Budget > 0 {
			stage.TimeBudget = t.Budget.String()
		}
		if opts.Discovery != nil {
			stage.Files = opts.Discovery.TierFiles[t.ID]
		}
		stage.Argv = buildArgv(runner, t, stage.Files, extra)
		p.Stages = append(p.Stages, stage)
	}
	if opts.Discovery != nil {
		p.Unclassified = opts.Discovery.Unclassified
	}
	return p, nil
}

// buildArgv assembles the runner invocation for one stage: marker filter
// first, then the stage's files, then any pass-through args.
func buildArgv(runner string, t tier.Tier, files, extra []string) []string {
	argv := []string{runner}
	if expr := t.MarkerExpr(); expr != "" {
		argv = append(argv, "-m", expr)
	}
	argv = append(argv, files...)
	argv = append(argv, extra...)
	return argv
}

// YAML serializes the plan for CI consumption.
func (p *RunPlan) YAML() ([]byte, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return out, nil
}
