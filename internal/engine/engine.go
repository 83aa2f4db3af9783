// Package engine provides the core business logic for gitshelf operations.
//
// The engine package acts as the orchestration layer between front ends and
// the snapshot store. It validates requests against the live stack, runs the
// multi-step merge workflow with its compensations, and signals front ends
// to refresh after state changes.
//
// Key components:
//   - Engine: main orchestrator called by the CLI
//   - Save/Apply/Drop: single-snapshot operations
//   - Merge: folds working changes into an existing snapshot
//   - List/Show: read-only stack inspection
package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gitshelf/gitshelf/internal/clock"
	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// RefreshFunc is called after every operation that may have changed the
// working tree or the snapshot stack, exactly once per operation regardless
// of outcome. It runs after the operation releases its lock, so callbacks
// may call back into the engine. Front ends use it to re-read repository
// state.
type RefreshFunc func()

// Engine orchestrates all gitshelf operations.
// It is the main API surface called by the CLI.
type Engine struct {
	store   snapshot.Store
	preview preview.Calculator
	clock   clock.Clock
	log     *zap.Logger
	refresh RefreshFunc

	// mu serializes mutating operations; the store primitives are not
	// transactional and must not interleave.
	mu sync.Mutex
}

// New creates a new Engine with the given dependencies. A nil logger
// disables logging and a nil refresh disables notifications.
func New(store snapshot.Store, calc preview.Calculator, clk clock.Clock, log *zap.Logger, refresh RefreshFunc) *Engine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:   store,
		preview: calc,
		clock:   clk,
		log:     log,
		refresh: refresh,
	}
}

func (e *Engine) notifyRefresh() {
	if e.refresh != nil {
		e.refresh()
	}
}

// entryAt bounds-checks pos against the listed stack.
func entryAt(snaps []snapshot.Snapshot, pos int) (snapshot.Snapshot, error) {
	if pos < 0 || pos >= len(snaps) {
		return snapshot.Snapshot{}, fmt.Errorf(
			"%w: position %d out of range, stack has %d snapshots", ErrValidation, pos, len(snaps))
	}
	return snaps[pos], nil
}
