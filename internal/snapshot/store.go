// Package snapshot saves and restores uncommitted working tree state.
//
// Snapshots live in the repository's stash: a LIFO stack addressed by live
// ordinal positions. Position 0 is the most recent entry and every save
// shifts existing entries down by one, so positions must be recomputed after
// any mutation rather than cached across calls.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gitshelf/gitshelf/internal/gitx"
	"github.com/gitshelf/gitshelf/internal/preview"
)

var (
	// ErrNoChanges is returned by Save when the working tree is clean.
	ErrNoChanges = errors.New("no local changes to save")

	// ErrNotFound is returned when no snapshot exists at the requested
	// position.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidPosition is returned for negative positions.
	ErrInvalidPosition = errors.New("invalid snapshot position")
)

// Snapshot describes one stored entry.
type Snapshot struct {
	// Position is the entry's current place in the stack, 0 being the most
	// recent. It is only valid until the next save or discard.
	Position int

	// Label is the user-supplied description, empty for bare WIP entries.
	Label string

	// Branch is the branch the snapshot was taken on.
	Branch string

	// FileCount is how many paths the snapshot touches, untracked layer
	// included. Additions and Deletions total the changed lines; binary
	// files count toward FileCount only.
	FileCount int
	Additions int
	Deletions int

	// CreatedAt is when the snapshot was saved.
	CreatedAt time.Time

	// HasUntrackedLayer reports whether the snapshot captured untracked
	// files in addition to tracked changes.
	HasUntrackedLayer bool
}

// Ref returns the snapshot's git reference, e.g. "stash@{2}".
func (s Snapshot) Ref() string {
	return Ref(s.Position)
}

// Ref returns the git reference for a stack position.
func Ref(pos int) string {
	return fmt.Sprintf("stash@{%d}", pos)
}

// FindLabel returns the most recent snapshot whose label matches exactly.
func FindLabel(snaps []Snapshot, label string) (Snapshot, bool) {
	for _, s := range snaps {
		if s.Label == label {
			return s, true
		}
	}
	return Snapshot{}, false
}

// SaveOptions controls what Save captures.
type SaveOptions struct {
	// IncludeUntracked captures untracked files in a separate layer.
	IncludeUntracked bool

	// KeepStaged leaves staged changes in place after capturing them.
	KeepStaged bool
}

// Store is the snapshot storage primitive set. Operations address entries by
// live position; none of them retry.
type Store interface {
	// Save captures the working tree as a new entry at position 0 and
	// resets the tree. Returns ErrNoChanges when there is nothing to save.
	Save(ctx context.Context, label string, opts SaveOptions) error

	// Apply restores the entry at pos into the working tree, keeping the
	// entry in the stack.
	Apply(ctx context.Context, pos int) error

	// Discard removes the entry at pos without touching the working tree.
	Discard(ctx context.Context, pos int) error

	// ApplyAndDiscard restores the entry at pos and removes it. When the
	// restore conflicts, the entry is kept and an error returned.
	ApplyAndDiscard(ctx context.Context, pos int) error

	// List returns all entries, most recent first.
	List(ctx context.Context) ([]Snapshot, error)

	// Stats returns per-path change counts for the entry at pos.
	Stats(ctx context.Context, pos int) ([]preview.ChangeEntry, error)
}

// GitStore implements Store on top of the git stash.
type GitStore struct {
	run gitx.Runner
}

// NewGitStore creates a Store over the given runner.
func NewGitStore(run gitx.Runner) *GitStore {
	return &GitStore{run: run}
}

// noChangesMarker is what git prints, with exit status 0, when a stash push
// finds nothing to capture.
const noChangesMarker = "no local changes to save"

func (s *GitStore) Save(ctx context.Context, label string, opts SaveOptions) error {
	args := []string{"stash", "push"}
	if opts.IncludeUntracked {
		args = append(args, "--include-untracked")
	}
	if opts.KeepStaged {
		args = append(args, "--keep-index")
	}
	if label != "" {
		args = append(args, "-m", label)
	}

	out, err := s.run.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	// A successful push echoes the label in its output, so only an output
	// that is exactly the marker means a clean tree.
	if strings.EqualFold(strings.TrimSpace(out), noChangesMarker) {
		return ErrNoChanges
	}
	return nil
}

func (s *GitStore) Apply(ctx context.Context, pos int) error {
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	if _, err := s.run.Run(ctx, "stash", "apply", Ref(pos)); err != nil {
		return fmt.Errorf("failed to apply snapshot %d: %w", pos, refError(err))
	}
	return nil
}

func (s *GitStore) Discard(ctx context.Context, pos int) error {
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	if _, err := s.run.Run(ctx, "stash", "drop", Ref(pos)); err != nil {
		return fmt.Errorf("failed to discard snapshot %d: %w", pos, refError(err))
	}
	return nil
}

// ApplyAndDiscard pops the entry. Note that on a conflicted restore git
// leaves the entry in the stack, so a failed pop has apply-only effects.
func (s *GitStore) ApplyAndDiscard(ctx context.Context, pos int) error {
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	if _, err := s.run.Run(ctx, "stash", "pop", Ref(pos)); err != nil {
		return fmt.Errorf("failed to restore snapshot %d: %w", pos, refError(err))
	}
	return nil
}

func (s *GitStore) Stats(ctx context.Context, pos int) ([]preview.ChangeEntry, error) {
	if pos < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	out, err := s.run.Run(ctx, "stash", "show", "--numstat", "--include-untracked", Ref(pos))
	if err != nil {
		return nil, fmt.Errorf("failed to show snapshot %d: %w", pos, refError(err))
	}
	return preview.ParseNumstat(out), nil
}

// missingRefSignatures are lowercase fragments of the errors git prints when
// a stash reference does not exist.
var missingRefSignatures = []string{
	"is not a valid reference",
	"unknown revision",
	"log for 'refs/stash' only has",
}

// refError maps git's missing reference failures to ErrNotFound, leaving
// other failures untouched.
func refError(err error) error {
	var cmdErr *gitx.CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}
	msg := strings.ToLower(cmdErr.Stderr)
	for _, sig := range missingRefSignatures {
		if strings.Contains(msg, sig) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}
