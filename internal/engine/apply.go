package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// ApplyRequest represents a request to restore a snapshot into the tree.
type ApplyRequest struct {
	// Position addresses the snapshot in the stack, 0 being most recent.
	Position int

	// Discard removes the entry after a clean restore. A conflicted
	// restore keeps the entry so no content is lost.
	Discard bool
}

// ApplyResult represents the result of an apply operation.
type ApplyResult struct {
	// Applied is the entry that was restored, at its pre-apply position.
	Applied snapshot.Snapshot
}

// Apply restores a snapshot into the working tree. Failures are classified:
// the returned error matches ErrConflict when tree content blocked the
// restore and ErrFatal otherwise.
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	e.mu.Lock()
	defer e.notifyRefresh()
	defer e.mu.Unlock()

	snaps, err := e.store.List(ctx)
	if err != nil {
		return nil, asFatal(err)
	}
	target, err := entryAt(snaps, req.Position)
	if err != nil {
		return nil, err
	}

	if req.Discard {
		err = e.store.ApplyAndDiscard(ctx, req.Position)
	} else {
		err = e.store.Apply(ctx, req.Position)
	}
	if err != nil {
		return nil, classified(err)
	}

	e.log.Debug("applied snapshot",
		zap.Int("position", req.Position),
		zap.Bool("discarded", req.Discard))

	return &ApplyResult{Applied: target}, nil
}

// DropRequest represents a request to discard a snapshot.
type DropRequest struct {
	// Position addresses the snapshot in the stack, 0 being most recent.
	Position int
}

// DropResult represents the result of a drop operation.
type DropResult struct {
	// Dropped is the entry that was removed, at its pre-drop position.
	Dropped snapshot.Snapshot
}

// Drop discards a snapshot without touching the working tree.
func (e *Engine) Drop(ctx context.Context, req *DropRequest) (*DropResult, error) {
	e.mu.Lock()
	defer e.notifyRefresh()
	defer e.mu.Unlock()

	snaps, err := e.store.List(ctx)
	if err != nil {
		return nil, asFatal(err)
	}
	target, err := entryAt(snaps, req.Position)
	if err != nil {
		return nil, err
	}

	if err := e.store.Discard(ctx, req.Position); err != nil {
		return nil, asFatal(err)
	}

	e.log.Debug("dropped snapshot",
		zap.Int("position", req.Position),
		zap.String("label", target.Label))

	return &DropResult{Dropped: target}, nil
}
