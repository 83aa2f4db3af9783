package engine

import (
	"errors"
	"fmt"

	"github.com/gitshelf/gitshelf/internal/conflict"
)

var (
	// ErrNoChanges indicates the working tree was clean, so there was
	// nothing to save or merge. No repository state was changed.
	ErrNoChanges = errors.New("no changes in working tree")

	// ErrConflict indicates working tree content blocked an operation.
	// The user can resolve it and retry.
	ErrConflict = errors.New("conflict detected")

	// ErrFatal indicates a failure outside the normal conflict flow, such
	// as repository corruption or a timeout.
	ErrFatal = errors.New("operation failed")

	// ErrValidation indicates a rejected request, such as a position
	// outside the stack.
	ErrValidation = errors.New("validation failed")
)

// Step identifies a stage of the merge workflow.
type Step int

const (
	// StepCapture saves the working changes to a temporary snapshot.
	StepCapture Step = iota + 1

	// StepApplyTarget applies the target snapshot onto the cleaned tree.
	StepApplyTarget

	// StepDiscardTarget removes the target entry from the stack.
	StepDiscardTarget

	// StepRestoreCapture merges the temporary snapshot back into the tree.
	StepRestoreCapture

	// StepSaveCombined saves the combined result as the new snapshot.
	StepSaveCombined
)

func (s Step) String() string {
	switch s {
	case StepCapture:
		return "capture working changes"
	case StepApplyTarget:
		return "apply target snapshot"
	case StepDiscardTarget:
		return "discard target snapshot"
	case StepRestoreCapture:
		return "restore captured changes"
	case StepSaveCombined:
		return "save combined snapshot"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// StepError reports which merge step failed. The wrapped error carries the
// ErrConflict or ErrFatal classification.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CleanupError reports a failure whose compensating cleanup also failed.
// Primary is the failure that triggered the cleanup, Cleanup the error from
// the compensation itself. The repository may need manual attention.
type CleanupError struct {
	Primary error
	Cleanup error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("%v (cleanup also failed: %v)", e.Primary, e.Cleanup)
}

// Unwrap exposes both branches so errors.Is finds the classification
// sentinels through either.
func (e *CleanupError) Unwrap() []error {
	return []error{e.Primary, e.Cleanup}
}

// classified wraps err in the sentinel matching its conflict classification.
func classified(err error) error {
	if conflict.Classify(err) == conflict.KindConflict {
		return asConflict(err)
	}
	return asFatal(err)
}

func asConflict(err error) error {
	return fmt.Errorf("%w: %w", ErrConflict, err)
}

func asFatal(err error) error {
	return fmt.Errorf("%w: %w", ErrFatal, err)
}
