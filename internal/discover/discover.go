// Package discover walks a project's tests tree and classifies every
// candidate file against the tier catalog.
package discover

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// Candidate is a discovered test file or test-config entry. Candidates are
// per-run values, discarded after the run.
type Candidate struct {
	// Path is repo-relative, slash-separated.
	Path string `json:"path"`
	// TierID is empty when the path matched no pattern.
	TierID tier.ID   `json:"tier,omitempty"`
	Kind   tier.Kind `json:"kind,omitempty"`
}

// Classified reports whether the candidate was routed to a tier.
func (c Candidate) Classified() bool {
	return c.TierID != ""
}

// Options configures a discovery walk.
type Options struct {
	// ProjectDir is the repository root; candidate paths are reported
	// relative to it.
	ProjectDir string
	// TestsRoot is the tests directory relative to ProjectDir.
	TestsRoot string
	// IncludeExtensions filters candidate files (e.g. .py, .json).
	IncludeExtensions []string
	// FollowSymlinks descends into symlinked directories. Symlinked
	// files are always candidates; this only affects directory links.
	FollowSymlinks bool
	// Matcher classifies candidates; nil uses the default catalog.
	Matcher *tier.Matcher
}

// Result is the outcome of one discovery walk.
type Result struct {
	Candidates   []Candidate        `json:"candidates"`
	Unclassified []string           `json:"unclassified,omitempty"`
	TierFiles    map[tier.ID][]string `json:"tier_files,omitempty"`
}

// Total returns the number of discovered candidates.
func (r *Result) Total() int {
	return len(r.Candidates)
}

// ClassifiedCount returns the number of candidates routed to a tier.
func (r *Result) ClassifiedCount() int {
	return len(r.Candidates) - len(r.Unclassified)
}

// Walk traverses the tests tree and classifies every candidate file.
// Filesystem traversal errors propagate to the caller unmodified.
// Unclassified candidates are collected, not treated as failures.
func Walk(ctx context.Context, opts Options) (*Result, error) {
	m := opts.Matcher
	if m == nil {
		m = tier.NewMatcher(nil)
	}
	exts := opts.IncludeExtensions
	if len(exts) == 0 {
		exts = []string{".py", ".json"}
	}

	root := filepath.Join(opts.ProjectDir, opts.TestsRoot)
	res := &Result{TierFiles: map[tier.ID][]string{}}

	record := func(rel string) error {
		cand := Candidate{Path: rel}
		match, cerr := m.Classify(rel)
		switch {
		case cerr == nil:
			cand.TierID = match.Tier.ID
			cand.Kind = match.Pattern.Kind
			res.TierFiles[match.Tier.ID] = append(res.TierFiles[match.Tier.ID], rel)
		case errors.Is(cerr, tier.ErrUnclassified):
			// Advisory: listed for manual triage, never fatal.
			res.Unclassified = append(res.Unclassified, rel)
		default:
			return cerr
		}
		res.Candidates = append(res.Candidates, cand)
		return nil
	}

	// Guards against symlink cycles when FollowSymlinks is on. Reported
	// paths stay on the link side so they classify like any other file
	// under the tests root.
	visited := map[string]bool{}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		visited[resolved] = true
	}

	var walk func(dir, relDir string) error
	walk = func(dir, relDir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := e.Name()
			p := filepath.Join(dir, name)
			rel := path.Join(relDir, name)

			isDir := e.IsDir()
			if e.Type()&fs.ModeSymlink != 0 {
				info, err := os.Stat(p)
				if errors.Is(err, fs.ErrNotExist) {
					// Dangling link; nothing to classify.
					continue
				}
				if err != nil {
					return err
				}
				if info.IsDir() {
					if !opts.FollowSymlinks {
						continue
					}
					resolved, err := filepath.EvalSymlinks(p)
					if err != nil {
						return err
					}
					if visited[resolved] {
						continue
					}
					visited[resolved] = true
					isDir = true
				}
			}
			if isDir {
				if strings.HasPrefix(name, ".") || name == "__pycache__" {
					continue
				}
				if err := walk(p, rel); err != nil {
					return err
				}
				continue
			}
			if !hasExt(name, exts) {
				continue
			}
			if err := record(rel); err != nil {
				return err
			}
		}
		return nil
	}

	relRoot := filepath.ToSlash(filepath.Clean(opts.TestsRoot))
	if err := walk(root, relRoot); err != nil {
		return nil, err
	}

	sort.Slice(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Path < res.Candidates[j].Path
	})
	sort.Strings(res.Unclassified)
	for id := range res.TierFiles {
		sort.Strings(res.TierFiles[id])
	}
	return res, nil
}

func hasExt(name string, exts []string) bool {
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}
