package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// SaveRequest represents a request to save the working tree as a snapshot.
type SaveRequest struct {
	// Label describes the snapshot. Empty leaves git's default subject.
	Label string

	// IncludeUntracked captures untracked files as well.
	IncludeUntracked bool

	// KeepStaged leaves staged changes in place after capturing them.
	KeepStaged bool
}

// SaveResult represents the result of a save operation.
type SaveResult struct {
	// Saved is the new entry at the top of the stack.
	Saved snapshot.Snapshot

	// Summary is what the working tree looked like before the save.
	Summary *preview.Summary
}

// Save captures the working tree as a new snapshot and resets the tree.
// Returns ErrNoChanges when there is nothing to capture. A failed stack
// re-read after the capture does not fail the save; the result then carries
// only locally known fields.
func (e *Engine) Save(ctx context.Context, req *SaveRequest) (*SaveResult, error) {
	e.mu.Lock()
	defer e.notifyRefresh()
	defer e.mu.Unlock()

	sum, err := e.preview.Compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute preview: %w", err)
	}
	if !sum.HasChanges() {
		return nil, ErrNoChanges
	}
	// A path with both staged and unstaged edits cannot round-trip through
	// a capture that leaves the staged half behind.
	if req.KeepStaged && sum.Mixed() {
		return nil, fmt.Errorf(
			"%w: cannot keep staged changes while files have both staged and unstaged edits", ErrValidation)
	}

	opts := snapshot.SaveOptions{
		IncludeUntracked: req.IncludeUntracked,
		KeepStaged:       req.KeepStaged,
	}
	if err := e.store.Save(ctx, req.Label, opts); err != nil {
		// Untracked-only trees save nothing unless untracked capture is on.
		if errors.Is(err, snapshot.ErrNoChanges) {
			return nil, ErrNoChanges
		}
		return nil, asFatal(err)
	}

	snaps, err := e.store.List(ctx)
	if err != nil {
		// The capture landed even though the re-read failed; report success
		// with what is known locally.
		e.log.Warn("failed to re-read stack after save", zap.Error(err))
		saved := snapshot.Snapshot{
			Label:             req.Label,
			HasUntrackedLayer: opts.IncludeUntracked && sum.HasUntracked(),
		}
		return &SaveResult{Saved: saved, Summary: sum}, nil
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: snapshot missing after save", ErrFatal)
	}

	e.log.Debug("saved snapshot",
		zap.String("label", snaps[0].Label),
		zap.Bool("untracked", opts.IncludeUntracked))

	return &SaveResult{Saved: snaps[0], Summary: sum}, nil
}
