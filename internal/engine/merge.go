package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitshelf/gitshelf/internal/position"
	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// tempLabelPrefix marks the temporary capture created during a merge. The
// uuid suffix keeps it unique so a failed merge can locate it by label.
const tempLabelPrefix = "gitshelf-merge-"

func tempMergeLabel() string {
	return tempLabelPrefix + uuid.NewString()
}

// MergeRequest represents a request to fold the working changes into an
// existing snapshot.
type MergeRequest struct {
	// TargetPosition addresses the snapshot to merge into, 0 being the
	// most recent.
	TargetPosition int

	// CombinedLabel names the merged snapshot. Empty keeps the target's
	// label.
	CombinedLabel string
}

// MergeResult represents the result of a merge operation.
type MergeResult struct {
	// Merged is the combined entry, now at the top of the stack.
	Merged snapshot.Snapshot

	// Summary is what the working tree contributed to the merge.
	Summary *preview.Summary

	// Elapsed is how long the merge took.
	Elapsed time.Duration
}

// Merge folds the uncommitted working changes into the snapshot at the
// target position. The target entry is replaced by a new entry at position 0
// containing both change sets.
//
// The workflow captures the working changes, applies and discards the target
// underneath that capture, merges the capture back, and saves the combined
// tree. Each step that fails triggers a compensation that puts the working
// changes back within reach; compensation failures are reported as a
// CleanupError. No step is retried.
//
// The returned error matches ErrNoChanges, ErrValidation, ErrConflict, or
// ErrFatal; conflict and fatal failures additionally carry a StepError
// naming the step that failed. A failed stack re-read after the final save
// does not fail the merge; the result then carries only locally known
// fields.
func (e *Engine) Merge(ctx context.Context, req *MergeRequest) (*MergeResult, error) {
	e.mu.Lock()
	defer e.notifyRefresh()
	defer e.mu.Unlock()

	start := e.clock.Now()

	// A clean tree means nothing to merge, checked before any state change.
	sum, err := e.preview.Compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute preview: %w", err)
	}
	if !sum.HasChanges() {
		return nil, ErrNoChanges
	}

	snaps, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	target, err := entryAt(snaps, req.TargetPosition)
	if err != nil {
		return nil, err
	}

	label := req.CombinedLabel
	if label == "" {
		label = target.Label
	}

	e.log.Debug("merging working changes into snapshot",
		zap.Int("target", req.TargetPosition),
		zap.String("label", label))

	// Capture the working changes, untracked included, so the tree is
	// clean for the target apply.
	tempLabel := tempMergeLabel()
	if err := e.store.Save(ctx, tempLabel, snapshot.SaveOptions{IncludeUntracked: true}); err != nil {
		if errors.Is(err, snapshot.ErrNoChanges) {
			return nil, ErrNoChanges
		}
		return nil, &StepError{Step: StepCapture, Err: asFatal(err)}
	}

	// The capture pushed one entry, so the target now sits one lower.
	shifted := position.Shift(req.TargetPosition, 1)

	// Apply the target onto the cleaned tree. On failure, undo the capture
	// so the user's changes are back where they started.
	if err := e.store.Apply(ctx, shifted); err != nil {
		return nil, e.compensate(ctx, &StepError{Step: StepApplyTarget, Err: classified(err)})
	}

	// Apply does not move stack entries, so the target is still at the
	// shifted position. Discard it; its content now lives in the tree.
	if err := e.store.Discard(ctx, shifted); err != nil {
		return nil, e.compensate(ctx, &StepError{Step: StepDiscardTarget, Err: asFatal(err)})
	}

	// Merge the capture back on top of the target's content. A conflicted
	// restore leaves the capture entry in the stack; drop it by label so
	// the stack is not polluted, the conflicted content stays in the tree.
	if err := e.store.ApplyAndDiscard(ctx, 0); err != nil {
		stepErr := &StepError{Step: StepRestoreCapture, Err: asConflict(err)}
		e.log.Warn("merge step failed, discarding capture",
			zap.Stringer("step", stepErr.Step), zap.Error(err))
		if cleanupErr := e.discardCaptureByLabel(ctx, tempLabel); cleanupErr != nil {
			return nil, &CleanupError{Primary: stepErr, Cleanup: cleanupErr}
		}
		return nil, stepErr
	}

	// Save the combined tree. The untracked layer is carried forward from
	// either source.
	opts := snapshot.SaveOptions{
		IncludeUntracked: target.HasUntrackedLayer || sum.HasUntracked(),
	}
	if err := e.store.Save(ctx, label, opts); err != nil {
		if errors.Is(err, snapshot.ErrNoChanges) {
			err = fmt.Errorf("combined changes are empty, tree left as is: %w", err)
		}
		return nil, &StepError{Step: StepSaveCombined, Err: asFatal(err)}
	}

	elapsed := e.clock.Now().Sub(start)

	snaps, err = e.store.List(ctx)
	if err != nil {
		// The combined snapshot exists even though the re-read failed;
		// report success with what is known locally.
		e.log.Warn("failed to re-read stack after merge", zap.Error(err))
		merged := snapshot.Snapshot{
			Label:             label,
			Branch:            target.Branch,
			HasUntrackedLayer: opts.IncludeUntracked,
		}
		return &MergeResult{Merged: merged, Summary: sum, Elapsed: elapsed}, nil
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: combined snapshot missing after merge", ErrFatal)
	}

	e.log.Debug("merge complete",
		zap.String("label", snaps[0].Label),
		zap.Duration("elapsed", elapsed))

	return &MergeResult{Merged: snaps[0], Summary: sum, Elapsed: elapsed}, nil
}

// compensate restores the capture at position 0 back into the working tree
// after a failed step, wrapping both errors when the restore itself fails.
// It runs detached from the caller's cancellation; a caller that gave up
// mid-merge still gets its tree back.
func (e *Engine) compensate(ctx context.Context, stepErr *StepError) error {
	e.log.Warn("merge step failed, restoring captured changes",
		zap.Stringer("step", stepErr.Step), zap.Error(stepErr.Err))

	ctx = context.WithoutCancel(ctx)
	if cleanupErr := e.store.ApplyAndDiscard(ctx, 0); cleanupErr != nil {
		return &CleanupError{Primary: stepErr, Cleanup: cleanupErr}
	}
	return stepErr
}

// discardCaptureByLabel drops the temporary capture after a failed restore.
// A failed restore leaves the entry in the stack, so it is located by label
// rather than assumed to still sit at position 0. An absent entry means the
// restore got far enough to drop it, which needs no cleanup. Like compensate,
// it runs detached from the caller's cancellation.
func (e *Engine) discardCaptureByLabel(ctx context.Context, label string) error {
	ctx = context.WithoutCancel(ctx)
	snaps, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to locate capture %q: %w", label, err)
	}
	found, ok := snapshot.FindLabel(snaps, label)
	if !ok {
		return nil
	}
	return e.store.Discard(ctx, found.Position)
}
