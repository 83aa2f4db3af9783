// Package preview computes a summary of uncommitted working tree changes.
//
// The summary is what the user sees before a save or merge: which paths are
// staged, which carry unstaged edits, and which are untracked. It is computed
// from git plumbing output and never mutates the repository.
package preview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gitshelf/gitshelf/internal/gitx"
)

// BinaryLines marks line counts for binary files, where git reports no
// meaningful added or deleted totals.
const BinaryLines = -1

// ChangeEntry describes the change to a single path.
type ChangeEntry struct {
	// Path is the repository-relative path as git prints it, including
	// rename arrows such as "dir/{old => new}.go".
	Path string

	// Added and Deleted are line counts, or BinaryLines for binary files.
	Added   int
	Deleted int
}

// Summary is a snapshot-free view of the uncommitted state of the tree.
type Summary struct {
	Staged    []ChangeEntry
	Unstaged  []ChangeEntry
	Untracked []string
}

// HasChanges reports whether anything at all is uncommitted.
func (s *Summary) HasChanges() bool {
	return len(s.Staged) > 0 || len(s.Unstaged) > 0 || len(s.Untracked) > 0
}

// HasUntracked reports whether any untracked files are present.
func (s *Summary) HasUntracked() bool {
	return len(s.Untracked) > 0
}

// Mixed reports whether the summary contains mixed changes.
func (s *Summary) Mixed() bool {
	return Mixed(s.Staged, s.Unstaged)
}

// Paths returns every path mentioned in the summary, staged first, without
// deduplication across sections.
func (s *Summary) Paths() []string {
	paths := make([]string, 0, len(s.Staged)+len(s.Unstaged)+len(s.Untracked))
	for _, e := range s.Staged {
		paths = append(paths, e.Path)
	}
	for _, e := range s.Unstaged {
		paths = append(paths, e.Path)
	}
	paths = append(paths, s.Untracked...)
	return paths
}

// Mixed reports whether any path carries both staged and unstaged changes.
// Such paths lose their staged/unstaged split when captured and restored,
// so callers warn before proceeding, and saves that keep the staged layer
// refuse to run.
func Mixed(staged, unstaged []ChangeEntry) bool {
	if len(staged) == 0 || len(unstaged) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(staged))
	for _, e := range staged {
		seen[e.Path] = struct{}{}
	}
	for _, e := range unstaged {
		if _, ok := seen[e.Path]; ok {
			return true
		}
	}
	return false
}

// Calculator computes working tree previews.
type Calculator interface {
	Compute(ctx context.Context) (*Summary, error)
}

// GitCalculator computes previews by querying git.
type GitCalculator struct {
	run gitx.Runner
}

// NewGitCalculator creates a Calculator over the given runner.
func NewGitCalculator(run gitx.Runner) *GitCalculator {
	return &GitCalculator{run: run}
}

// Compute gathers staged, unstaged, and untracked changes.
func (c *GitCalculator) Compute(ctx context.Context) (*Summary, error) {
	stagedOut, err := c.run.Run(ctx, "diff", "--numstat", "--cached")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged changes: %w", err)
	}
	unstagedOut, err := c.run.Run(ctx, "diff", "--numstat")
	if err != nil {
		return nil, fmt.Errorf("failed to list unstaged changes: %w", err)
	}
	untrackedOut, err := c.run.Run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}

	return &Summary{
		Staged:    ParseNumstat(stagedOut),
		Unstaged:  ParseNumstat(unstagedOut),
		Untracked: splitLines(untrackedOut),
	}, nil
}

// ParseNumstat parses "git diff --numstat" output: one "added\tdeleted\tpath"
// line per change, with "-" counts for binary files. Malformed lines are
// skipped.
func ParseNumstat(out string) []ChangeEntry {
	var entries []ChangeEntry
	for _, line := range splitLines(out) {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 || fields[2] == "" {
			continue
		}
		entries = append(entries, ChangeEntry{
			Path:    fields[2],
			Added:   parseCount(fields[0]),
			Deleted: parseCount(fields[1]),
		})
	}
	return entries
}

func parseCount(s string) int {
	if s == "-" {
		return BinaryLines
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
