// Package integration exercises the snapshot store and the engine against a
// real git binary. Each test builds a throwaway repository under t.TempDir
// and is skipped when git is not installed.
package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gitshelf/gitshelf/internal/engine"
	"github.com/gitshelf/gitshelf/internal/gitx"
	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// requireGit skips the test when no git binary is available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// setupRepo initializes a repository on branch main with two committed files,
// a.txt ("alpha\n") and b.txt ("beta\n"), and returns its directory and a
// runner bound to it.
func setupRepo(t *testing.T) (string, gitx.Runner) {
	t.Helper()
	requireGit(t)

	// Keep host git configuration out of the test repository.
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_SYSTEM", os.DevNull)

	dir := t.TempDir()
	run := gitx.NewCLIRunner(dir, gitx.Options{Timeout: 30 * time.Second})

	mustGit(t, run, "init", "-b", "main")
	mustGit(t, run, "config", "user.email", "dev@example.com")
	mustGit(t, run, "config", "user.name", "Dev")
	mustGit(t, run, "config", "commit.gpgsign", "false")

	writeFile(t, dir, "a.txt", "alpha\n")
	writeFile(t, dir, "b.txt", "beta\n")
	mustGit(t, run, "add", ".")
	mustGit(t, run, "commit", "-m", "initial")

	return dir, run
}

func mustGit(t *testing.T, run gitx.Runner, args ...string) string {
	t.Helper()
	out, err := run.Run(context.Background(), args...)
	if err != nil {
		t.Fatalf("git %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func fileExists(t *testing.T, dir, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, name))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("failed to stat %s: %v", name, err)
	return false
}

// newTestEngine wires an engine with real store and preview implementations.
func newTestEngine(run gitx.Runner) *engine.Engine {
	return engine.New(snapshot.NewGitStore(run), preview.NewGitCalculator(run), nil, nil, nil)
}
