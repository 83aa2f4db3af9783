package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return "", err
	}
	return f.responses[key], nil
}

func TestCommits(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"log -n 2 --format=%H%x1f%an%x1f%ct%x1f%s": "aaaabbbbccccdddd\x1fAda\x1f1755900000\x1ffix parser\n" +
			"eeeeffff00001111\x1fGrace\x1f1755890000\x1finitial commit",
	}}

	commits, err := NewReader(run).Commits(context.Background(), 2)
	if err != nil {
		t.Fatalf("Commits returned error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("len(commits) = %d, want 2", len(commits))
	}

	first := commits[0]
	if first.Hash != "aaaabbbbccccdddd" || first.Author != "Ada" || first.Subject != "fix parser" {
		t.Errorf("commits[0] = %+v", first)
	}
	if !first.Date.Equal(time.Unix(1755900000, 0)) {
		t.Errorf("Date = %v, want %v", first.Date, time.Unix(1755900000, 0))
	}
	if got := first.ShortHash(); got != "aaaabbbb" {
		t.Errorf("ShortHash = %q, want %q", got, "aaaabbbb")
	}
}

func TestCommitsDefaultLimit(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{}}
	if _, err := NewReader(run).Commits(context.Background(), 0); err != nil {
		t.Fatalf("Commits returned error: %v", err)
	}
	want := "log -n 20 --format=%H%x1f%an%x1f%ct%x1f%s"
	if len(run.calls) != 1 || run.calls[0] != want {
		t.Errorf("git called with %v, want [%s]", run.calls, want)
	}
}

func TestCommitsPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	run := &fakeRunner{errs: map[string]error{
		"log -n 20 --format=%H%x1f%an%x1f%ct%x1f%s": boom,
	}}
	if _, err := NewReader(run).Commits(context.Background(), 0); !errors.Is(err, boom) {
		t.Fatalf("Commits error = %v, want wrapped boom", err)
	}
}

func TestBranches(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"for-each-ref --format=%(HEAD)%x1f%(refname:short)%x1f%(upstream:short) refs/heads": "*\x1fmain\x1forigin/main\n" +
			" \x1ffeature/login\x1f\n" +
			" \x1fscratch\x1forigin/scratch",
	}}

	branches, err := NewReader(run).Branches(context.Background())
	if err != nil {
		t.Fatalf("Branches returned error: %v", err)
	}
	if len(branches) != 3 {
		t.Fatalf("len(branches) = %d, want 3", len(branches))
	}

	if !branches[0].Current || branches[0].Name != "main" || branches[0].Upstream != "origin/main" {
		t.Errorf("branches[0] = %+v", branches[0])
	}
	if branches[1].Current || branches[1].Name != "feature/login" || branches[1].Upstream != "" {
		t.Errorf("branches[1] = %+v", branches[1])
	}
}

func TestShortHashShortInput(t *testing.T) {
	c := Commit{Hash: "abc"}
	if got := c.ShortHash(); got != "abc" {
		t.Errorf("ShortHash = %q, want %q", got, "abc")
	}
}
