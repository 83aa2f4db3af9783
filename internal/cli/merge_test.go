package cli

import (
	"strings"
	"testing"

	"github.com/gitshelf/gitshelf/internal/snapshot"
)

func TestRenderStackDiff(t *testing.T) {
	snaps := []snapshot.Snapshot{
		{Position: 0, Label: "wip ui"},
		{Position: 1, Label: "auth fix"},
		{Position: 2, Label: "old work"},
	}

	diff := renderStackDiff(snaps, 1, "auth fix v2")
	if diff == "" {
		t.Fatal("renderStackDiff() returned empty diff")
	}
	for _, want := range []string{
		"--- stack (before)",
		"+++ stack (after)",
		"-stash@{1}: auth fix",
		"+stash@{0}: auth fix v2",
		" stash@{2}: old work",
	} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}

func TestRenderStackDiff_TargetOnTop(t *testing.T) {
	snaps := []snapshot.Snapshot{
		{Position: 0, Label: "feature"},
		{Position: 1, Label: "old"},
	}

	diff := renderStackDiff(snaps, 0, "feature v2")
	if !strings.Contains(diff, "+stash@{0}: feature v2") {
		t.Errorf("combined snapshot should land at position 0:\n%s", diff)
	}
	if !strings.Contains(diff, " stash@{1}: old") {
		t.Errorf("entries below the target should keep their position:\n%s", diff)
	}
}

func TestRenderStackDiff_NoChange(t *testing.T) {
	snaps := []snapshot.Snapshot{{Position: 0, Label: "only"}}
	if diff := renderStackDiff(snaps, 0, "only"); diff != "" {
		t.Errorf("expected empty diff for an unchanged manifest, got %q", diff)
	}
}

func TestManifestLine(t *testing.T) {
	if got, want := manifestLine(2, "wip"), "stash@{2}: wip"; got != want {
		t.Errorf("manifestLine() = %q, want %q", got, want)
	}
	if got, want := manifestLine(3, ""), "stash@{3}: (no label)"; got != want {
		t.Errorf("manifestLine() = %q, want %q", got, want)
	}
}
