package gitx

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// requireGit skips the test when no git binary is available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// setupRepo creates a temporary git repository with one commit.
func setupRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	run("add", "README.md")
	run("commit", "-m", "initial commit")

	return dir
}

func TestNewCLIRunnerDefaults(t *testing.T) {
	r := NewCLIRunner("/tmp", Options{})

	if r.bin != "git" {
		t.Errorf("bin = %q, want %q", r.bin, "git")
	}
	if r.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", r.timeout, DefaultTimeout)
	}
	if r.log == nil {
		t.Error("log should default to a no-op logger, got nil")
	}
}

func TestArgvPrependsExtraArgs(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
		args  []string
		want  []string
	}{
		{
			name: "no extra args",
			args: []string{"status", "--porcelain"},
			want: []string{"status", "--porcelain"},
		},
		{
			name:  "extra args come first",
			extra: []string{"-c", "core.quotepath=false"},
			args:  []string{"stash", "list"},
			want:  []string{"-c", "core.quotepath=false", "stash", "list"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCLIRunner("/tmp", Options{ExtraArgs: tt.extra})
			got := r.argv(tt.args)
			if len(got) != len(tt.want) {
				t.Fatalf("argv = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("argv = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCommandErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "stderr preferred over exit error",
			err: &CommandError{
				Args:   []string{"stash", "drop", "stash@{9}"},
				Stderr: "error: refs/stash@{9} is not a valid reference",
				Err:    errors.New("exit status 1"),
			},
			want: "git stash drop stash@{9}: error: refs/stash@{9} is not a valid reference",
		},
		{
			name: "stdout used when stderr is empty",
			err: &CommandError{
				Args:   []string{"stash", "pop", "stash@{0}"},
				Stdout: "CONFLICT (content): Merge conflict in a.txt",
				Err:    errors.New("exit status 1"),
			},
			want: "git stash pop stash@{0}: CONFLICT (content): Merge conflict in a.txt",
		},
		{
			name: "falls back to process error",
			err: &CommandError{
				Args: []string{"stash", "list"},
				Err:  errors.New("exit status 128"),
			},
			want: "git stash list: exit status 128",
		},
		{
			name: "timeout is called out explicitly",
			err: &CommandError{
				Args:   []string{"stash", "apply", "stash@{0}"},
				Stderr: "half-written output",
				Err:    context.DeadlineExceeded,
			},
			want: "git stash apply stash@{0}: timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &CommandError{Args: []string{"status"}, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped process error")
	}
}

func TestRunReturnsTrimmedOutput(t *testing.T) {
	dir := setupRepo(t)
	r := NewCLIRunner(dir, Options{})

	out, err := r.Run(context.Background(), "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsAny(out, "\n\r") {
		t.Errorf("output not trimmed: %q", out)
	}
	if out == "" {
		t.Error("expected a branch name, got empty output")
	}
}

func TestRunFailureCarriesStderr(t *testing.T) {
	dir := setupRepo(t)
	r := NewCLIRunner(dir, Options{})

	_, err := r.Run(context.Background(), "rev-parse", "--verify", "no-such-ref")
	if err == nil {
		t.Fatal("expected error for unknown ref")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error is %T, want *CommandError", err)
	}
	if cmdErr.Stderr == "" {
		t.Error("expected captured stderr, got empty")
	}
}

// Callers match git's English messages, so the runner must pin the message
// locale even when the environment asks for another one.
func TestRunPinsMessageLocale(t *testing.T) {
	dir := setupRepo(t)
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	r := NewCLIRunner(dir, Options{})

	_, err := r.Run(context.Background(), "rev-parse", "--verify", "no-such-ref")
	if err == nil {
		t.Fatal("expected error for unknown ref")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error is %T, want *CommandError", err)
	}
	if !strings.Contains(cmdErr.Stderr, "Needed a single revision") {
		t.Errorf("stderr = %q, want the C-locale message", cmdErr.Stderr)
	}
}

func TestRunHonorsTimeout(t *testing.T) {
	requireGit(t)

	// An expired timeout must surface as a deadline error, not as a plain
	// exit error.
	dir := setupRepo(t)
	r := NewCLIRunner(dir, Options{Timeout: time.Nanosecond})

	_, err := r.Run(context.Background(), "status")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded in chain", err)
	}
}

func TestEnsureRepo(t *testing.T) {
	dir := setupRepo(t)

	if err := EnsureRepo(context.Background(), NewCLIRunner(dir, Options{})); err != nil {
		t.Errorf("unexpected error inside a repository: %v", err)
	}

	outside := t.TempDir()
	err := EnsureRepo(context.Background(), NewCLIRunner(outside, Options{}))
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("err = %v, want ErrNotRepository", err)
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := setupRepo(t)
	r := NewCLIRunner(dir, Options{})

	cmd := exec.Command("git", "checkout", "-b", "feature-x")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git checkout -b: %v\n%s", err, out)
	}

	branch, err := CurrentBranch(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch != "feature-x" {
		t.Errorf("branch = %q, want %q", branch, "feature-x")
	}
}
