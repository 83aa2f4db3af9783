// Package gitx executes git commands for gitshelf.
//
// Everything gitshelf knows about a repository it learns by running the git
// binary and reading its output. Runner is the single seam between the rest of
// the codebase and the external process: higher layers describe the command,
// gitx owns working directory, timeout, stderr capture, and logging.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single git invocation. Commands that exceed it are
// killed and reported as failed; they are never retried.
const DefaultTimeout = 60 * time.Second

// Runner executes a git command and returns its trimmed stdout.
// Implementations must be safe for concurrent use.
type Runner interface {
	// Run executes git with the given arguments in the repository directory.
	// On failure the returned error is a *CommandError carrying the argv and
	// captured stderr.
	Run(ctx context.Context, args ...string) (string, error)
}

// CommandError describes a failed git invocation.
type CommandError struct {
	// Args is the argv passed to git, without the binary name.
	Args []string

	// Stdout is the trimmed stdout output. Git reports merge conflicts here
	// even when exiting non-zero, so it is kept alongside stderr.
	Stdout string

	// Stderr is the trimmed stderr output, empty if git produced none.
	Stderr string

	// Err is the underlying process error (exit status, context deadline, ...).
	Err error
}

func (e *CommandError) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s: timed out", cmd)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", cmd, e.Stderr)
	}
	if e.Stdout != "" {
		return fmt.Sprintf("%s: %s", cmd, e.Stdout)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Options configures a CLIRunner.
type Options struct {
	// Bin is the git binary to execute (default "git").
	Bin string

	// Timeout bounds each invocation (default DefaultTimeout).
	Timeout time.Duration

	// ExtraArgs are global git arguments inserted before the subcommand,
	// e.g. ["-c", "core.quotepath=false"].
	ExtraArgs []string

	// Log receives a debug entry per invocation. Nil disables logging.
	Log *zap.Logger
}

// CLIRunner implements Runner by executing the git binary.
type CLIRunner struct {
	dir     string
	bin     string
	timeout time.Duration
	extra   []string
	log     *zap.Logger
}

// NewCLIRunner creates a runner for the repository containing dir. Git itself
// resolves dir to the repository root, so any path inside the work tree works.
func NewCLIRunner(dir string, opts Options) *CLIRunner {
	if opts.Bin == "" {
		opts.Bin = "git"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &CLIRunner{
		dir:     dir,
		bin:     opts.Bin,
		timeout: opts.Timeout,
		extra:   opts.ExtraArgs,
		log:     opts.Log,
	}
}

// Run executes git with the configured extra args prepended.
func (r *CLIRunner) Run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	argv := r.argv(args)
	cmd := exec.CommandContext(ctx, r.bin, argv...)
	cmd.Dir = r.dir
	// Failure classification matches git's English messages, so the child
	// must not localize them.
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.log.Debug("git",
		zap.Strings("args", argv),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("failed", err != nil),
	)

	if err != nil {
		// Prefer the context error so timeouts classify consistently
		// regardless of how the process died.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &CommandError{
			Args:   argv,
			Stdout: strings.TrimSpace(stdout.String()),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// argv prepends the configured global arguments to the subcommand arguments.
func (r *CLIRunner) argv(args []string) []string {
	if len(r.extra) == 0 {
		return args
	}
	out := make([]string, 0, len(r.extra)+len(args))
	out = append(out, r.extra...)
	out = append(out, args...)
	return out
}

// ErrNotRepository indicates the working directory is not inside a git work tree.
var ErrNotRepository = errors.New("not in a git repository")

// EnsureRepo verifies the runner's directory is inside a git repository.
func EnsureRepo(ctx context.Context, r Runner) error {
	if _, err := r.Run(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return nil
}

// CurrentBranch returns the checked-out branch name, or "HEAD" when detached.
func CurrentBranch(ctx context.Context, r Runner) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve current branch: %w", err)
	}
	return out, nil
}
