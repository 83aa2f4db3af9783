package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitshelf/gitshelf/internal/preview"
)

// listFormat emits the creation timestamp and subject separated by the unit
// separator, which cannot appear in either field.
const (
	listFormat = "%ct%x1f%s"
	fieldSep   = "\x1f"
)

// probeLimit bounds concurrent untracked-layer probes during List.
const probeLimit = 4

func (s *GitStore) List(ctx context.Context) ([]Snapshot, error) {
	out, err := s.run.Run(ctx, "stash", "list", "--format="+listFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}

	snaps := make([]Snapshot, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeLimit)
	for i, line := range lines {
		snaps[i] = parseEntry(i, line)
		g.Go(func() error {
			has, err := s.hasUntrackedLayer(gctx, i)
			if err != nil {
				return err
			}
			stats, err := s.Stats(gctx, i)
			if err != nil {
				return err
			}
			snaps[i].HasUntrackedLayer = has
			fillCounts(&snaps[i], stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to probe snapshots: %w", err)
	}
	return snaps, nil
}

// fillCounts sums per-path stats into the entry's totals. Binary files
// report no line counts and contribute to FileCount only.
func fillCounts(snap *Snapshot, stats []preview.ChangeEntry) {
	snap.FileCount = len(stats)
	for _, e := range stats {
		if e.Added > 0 {
			snap.Additions += e.Added
		}
		if e.Deleted > 0 {
			snap.Deletions += e.Deleted
		}
	}
}

// hasUntrackedLayer checks whether the entry has a third parent, the commit
// git uses to hold untracked files.
func (s *GitStore) hasUntrackedLayer(ctx context.Context, pos int) (bool, error) {
	_, err := s.run.Run(ctx, "rev-parse", "--quiet", "--verify", Ref(pos)+"^3")
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false, err
	}
	// Verification failure just means there is no third parent.
	return false, nil
}

func parseEntry(pos int, line string) Snapshot {
	snap := Snapshot{Position: pos}

	ts, subject, ok := strings.Cut(line, fieldSep)
	if !ok {
		subject = line
	} else if sec, err := strconv.ParseInt(ts, 10, 64); err == nil {
		snap.CreatedAt = time.Unix(sec, 0)
	}

	snap.Branch, snap.Label = parseSubject(subject)
	return snap
}

// parseSubject splits a stash subject into branch and label. Labeled saves
// produce "On <branch>: <label>", bare ones "WIP on <branch>: <sha> <msg>";
// anything else is kept whole as the label.
func parseSubject(subject string) (branch, label string) {
	switch {
	case strings.HasPrefix(subject, "WIP on "):
		return splitBranch(strings.TrimPrefix(subject, "WIP on "))
	case strings.HasPrefix(subject, "On "):
		return splitBranch(strings.TrimPrefix(subject, "On "))
	default:
		return "", subject
	}
}

func splitBranch(rest string) (branch, label string) {
	branch, label, ok := strings.Cut(rest, ": ")
	if !ok {
		return rest, ""
	}
	return branch, label
}
