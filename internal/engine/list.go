package engine

import (
	"context"
	"fmt"

	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// List returns all snapshots, most recent first. Positions in the returned
// slice are live ordinals and stale after any mutation.
func (e *Engine) List(ctx context.Context) ([]snapshot.Snapshot, error) {
	return e.store.List(ctx)
}

// ShowRequest represents a request to inspect one snapshot.
type ShowRequest struct {
	// Position addresses the snapshot in the stack, 0 being most recent.
	Position int
}

// ShowResult represents the result of a show operation.
type ShowResult struct {
	Snapshot snapshot.Snapshot

	// Entries are the per-path change counts stored in the snapshot.
	Entries []preview.ChangeEntry
}

// Show returns one snapshot together with its change statistics.
func (e *Engine) Show(ctx context.Context, req *ShowRequest) (*ShowResult, error) {
	snaps, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	target, err := entryAt(snaps, req.Position)
	if err != nil {
		return nil, err
	}

	entries, err := e.store.Stats(ctx, req.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot stats: %w", err)
	}
	return &ShowResult{Snapshot: target, Entries: entries}, nil
}

// Preview returns the current uncommitted working tree summary.
func (e *Engine) Preview(ctx context.Context) (*preview.Summary, error) {
	return e.preview.Compute(ctx)
}
