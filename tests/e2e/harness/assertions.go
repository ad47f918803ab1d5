package harness

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/Dicklesworthstone/ladder/internal/plan"
	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// AssertTier verifies a path classifies to the expected tier.
func (env *E2EEnvironment) AssertTier(path string, expected tier.ID) {
	env.T.Helper()

	m, err := env.Classify(path)
	if err != nil {
		env.Logger.Error("classify %s: %v", path, err)
		env.T.Errorf("classify %s: %v", path, err)
		return
	}
	ok := m.Tier.ID == expected
	env.Logger.Expected("tier", expected, m.Tier.ID, ok)

	if !ok {
		env.T.Errorf("%s: expected tier %s, got %s", path, expected, m.Tier.ID)
	}
}

// AssertUnclassified verifies a path matches no tier pattern.
func (env *E2EEnvironment) AssertUnclassified(path string) {
	env.T.Helper()

	m, err := env.Classify(path)
	ok := errors.Is(err, tier.ErrUnclassified)
	env.Logger.Expected("unclassified", true, ok, ok)

	if !ok {
		if err != nil {
			env.T.Errorf("%s: expected ErrUnclassified, got %v", path, err)
		} else {
			env.T.Errorf("%s: expected no match, classified as %s", path, m.Tier.ID)
		}
	}
}

// AssertStageCount verifies the number of stages in a plan.
func (env *E2EEnvironment) AssertStageCount(p *plan.RunPlan, expected int) {
	env.T.Helper()

	ok := len(p.Stages) == expected
	env.Logger.Expected("stage count", expected, len(p.Stages), ok)

	if !ok {
		env.T.Errorf("expected %d stages, got %d", expected, len(p.Stages))
	}
}

// AssertStageFiles verifies the file list of one stage in a plan.
func (env *E2EEnvironment) AssertStageFiles(p *plan.RunPlan, id tier.ID, expected []string) {
	env.T.Helper()

	for _, s := range p.Stages {
		if s.Tier != id {
			continue
		}
		ok := slices.Equal(s.Files, expected)
		env.Logger.Expected("stage files", expected, s.Files, ok)
		if !ok {
			env.T.Errorf("stage %s: expected files %v, got %v", id, expected, s.Files)
		}
		return
	}
	env.T.Errorf("plan has no stage for tier %s", id)
}

// AssertStageOrder verifies stages appear in ladder order.
func (env *E2EEnvironment) AssertStageOrder(p *plan.RunPlan, expected []tier.ID) {
	env.T.Helper()

	got := make([]tier.ID, len(p.Stages))
	for i, s := range p.Stages {
		got[i] = s.Tier
	}
	ok := slices.Equal(got, expected)
	env.Logger.Expected("stage order", expected, got, ok)

	if !ok {
		env.T.Errorf("expected stage order %v, got %v", expected, got)
	}
}

// AssertRunCount verifies the number of recorded runs.
func (env *E2EEnvironment) AssertRunCount(expected int) {
	env.T.Helper()

	got := env.RunCount()
	ok := got == expected
	env.Logger.Expected("run count", expected, got, ok)

	if !ok {
		env.T.Errorf("expected %d recorded runs, got %d", expected, got)
	}
}

// AssertFileExists verifies a file exists relative to project dir.
func (env *E2EEnvironment) AssertFileExists(rel string) {
	env.T.Helper()

	path := env.MustPath(rel)
	_, err := os.Stat(path)
	ok := err == nil
	env.Logger.Expected("file exists", rel, ok, ok)

	if !ok {
		env.T.Errorf("file %s does not exist: %v", rel, err)
	}
}

// AssertFileNotExists verifies a file does not exist.
func (env *E2EEnvironment) AssertFileNotExists(rel string) {
	env.T.Helper()

	path := env.MustPath(rel)
	_, err := os.Stat(path)
	ok := os.IsNotExist(err)
	env.Logger.Expected("file not exists", rel, ok, ok)

	if !ok {
		env.T.Errorf("file %s exists but should not", rel)
	}
}

// MustPath returns the absolute path relative to project dir.
func (env *E2EEnvironment) MustPath(rel string) string {
	env.T.Helper()
	return filepath.Join(env.ProjectDir, filepath.FromSlash(rel))
}

// AssertNoError fails if err is non-nil.
func (env *E2EEnvironment) AssertNoError(err error, msg string) {
	env.T.Helper()
	if err != nil {
		env.Logger.Error("%s: %v", msg, err)
		env.T.Fatalf("%s: %v", msg, err)
	}
}

// AssertError fails if err is nil.
func (env *E2EEnvironment) AssertError(err error, msg string) {
	env.T.Helper()
	if err == nil {
		env.Logger.Error("%s: expected error but got nil", msg)
		env.T.Fatalf("%s: expected error but got nil", msg)
	}
}
