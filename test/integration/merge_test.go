package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/gitshelf/gitshelf/internal/engine"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

func TestMerge_CombinesDisjointChanges(t *testing.T) {
	dir, run := setupRepo(t)
	store := snapshot.NewGitStore(run)
	eng := newTestEngine(run)
	ctx := context.Background()

	// Snapshot with a change to a.txt.
	writeFile(t, dir, "a.txt", "alpha\nfrom snapshot\n")
	if _, err := eng.Save(ctx, &engine.SaveRequest{Label: "feature"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// New working change to b.txt.
	writeFile(t, dir, "b.txt", "beta\nfrom working tree\n")

	res, err := eng.Merge(ctx, &engine.MergeRequest{TargetPosition: 0})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Merged.Label != "feature" {
		t.Errorf("combined label = %q, want %q", res.Merged.Label, "feature")
	}
	if res.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0", res.Elapsed)
	}

	// One snapshot before, one after; no temporary entries left over.
	snaps, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("len(snaps) = %d, want 1", len(snaps))
	}

	// The merge leaves the working tree clean.
	if got := readFile(t, dir, "a.txt"); got != "alpha\n" {
		t.Errorf("a.txt = %q, want pristine content", got)
	}
	if got := readFile(t, dir, "b.txt"); got != "beta\n" {
		t.Errorf("b.txt = %q, want pristine content", got)
	}

	// Popping the combined snapshot restores both change sets.
	if err := store.ApplyAndDiscard(ctx, 0); err != nil {
		t.Fatalf("ApplyAndDiscard() error = %v", err)
	}
	if got := readFile(t, dir, "a.txt"); got != "alpha\nfrom snapshot\n" {
		t.Errorf("a.txt = %q, want snapshot content", got)
	}
	if got := readFile(t, dir, "b.txt"); got != "beta\nfrom working tree\n" {
		t.Errorf("b.txt = %q, want working tree content", got)
	}
}

func TestMerge_CustomLabel(t *testing.T) {
	dir, run := setupRepo(t)
	eng := newTestEngine(run)
	ctx := context.Background()

	writeFile(t, dir, "a.txt", "alpha\nfrom snapshot\n")
	if _, err := eng.Save(ctx, &engine.SaveRequest{Label: "feature"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	writeFile(t, dir, "b.txt", "beta\nfrom working tree\n")

	res, err := eng.Merge(ctx, &engine.MergeRequest{TargetPosition: 0, CombinedLabel: "feature round 2"})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Merged.Label != "feature round 2" {
		t.Errorf("combined label = %q, want %q", res.Merged.Label, "feature round 2")
	}
}

func TestMerge_CleanTree(t *testing.T) {
	dir, run := setupRepo(t)
	eng := newTestEngine(run)
	ctx := context.Background()

	writeFile(t, dir, "a.txt", "alpha\nfrom snapshot\n")
	if _, err := eng.Save(ctx, &engine.SaveRequest{Label: "target"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := eng.Merge(ctx, &engine.MergeRequest{TargetPosition: 0})
	if !errors.Is(err, engine.ErrNoChanges) {
		t.Fatalf("Merge() error = %v, want ErrNoChanges", err)
	}

	// Nothing happened, so the stack is untouched.
	snaps, err := eng.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 1 || snaps[0].Label != "target" {
		t.Errorf("snaps = %v, want the single untouched target", snaps)
	}
}

// When the captured working changes cannot be restored on top of the applied
// target, the merge surfaces a conflict, removes its temporary capture, and
// leaves the applied target content in the tree for manual reconciliation.
func TestMerge_RestoreConflict(t *testing.T) {
	dir, run := setupRepo(t)
	store := snapshot.NewGitStore(run)
	eng := newTestEngine(run)
	ctx := context.Background()

	// Snapshot and working tree edit the same line of a.txt.
	writeFile(t, dir, "a.txt", "from snapshot\n")
	if _, err := eng.Save(ctx, &engine.SaveRequest{Label: "target"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	writeFile(t, dir, "a.txt", "from working tree\n")

	_, err := eng.Merge(ctx, &engine.MergeRequest{TargetPosition: 0})
	if !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("Merge() error = %v, want ErrConflict", err)
	}

	var stepErr *engine.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != engine.StepRestoreCapture {
		t.Errorf("err = %v, want a restore step failure", err)
	}
	var cleanupErr *engine.CleanupError
	if errors.As(err, &cleanupErr) {
		t.Errorf("unexpected cleanup failure: %v", err)
	}

	// No temporary capture lingers in the stack.
	snaps, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("len(snaps) = %d, want 0 (target consumed, capture dropped)", len(snaps))
	}

	// The applied target content stays in the tree.
	if got := readFile(t, dir, "a.txt"); got != "from snapshot\n" {
		t.Errorf("a.txt = %q, want applied snapshot content", got)
	}
}

func TestMerge_TargetOutOfRange(t *testing.T) {
	dir, run := setupRepo(t)
	eng := newTestEngine(run)
	ctx := context.Background()

	writeFile(t, dir, "a.txt", "alpha\nfrom snapshot\n")
	if _, err := eng.Save(ctx, &engine.SaveRequest{Label: "only"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	writeFile(t, dir, "b.txt", "beta\nworking\n")

	_, err := eng.Merge(ctx, &engine.MergeRequest{TargetPosition: 5})
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("Merge() error = %v, want ErrValidation", err)
	}

	// Validation happens before any mutation.
	snaps, err := eng.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("len(snaps) = %d, want 1", len(snaps))
	}
	if got := readFile(t, dir, "b.txt"); got != "beta\nworking\n" {
		t.Errorf("b.txt = %q, want working change untouched", got)
	}
}
