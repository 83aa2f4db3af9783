package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gitshelf/gitshelf/internal/clock"
	"github.com/gitshelf/gitshelf/internal/config"
	"github.com/gitshelf/gitshelf/internal/engine"
	"github.com/gitshelf/gitshelf/internal/gitx"
	"github.com/gitshelf/gitshelf/internal/logging"
	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

// app bundles the wired dependencies every command needs.
type app struct {
	settings *config.Settings
	log      *zap.Logger
	run      gitx.Runner
	eng      *engine.Engine
}

// newApp loads settings and wires an engine against the repository in the
// current directory.
func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	settings.BindFlags(rootCmd.PersistentFlags())

	log, err := logging.New(settings.LogLevel)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	run := gitx.NewCLIRunner(cwd, gitx.Options{
		Bin:       settings.GitBin,
		Timeout:   settings.Timeout,
		ExtraArgs: settings.GitExtraArgs,
		Log:       log,
	})
	if err := gitx.EnsureRepo(ctx, run); err != nil {
		return nil, err
	}

	store := snapshot.NewGitStore(run)
	calc := preview.NewGitCalculator(run)
	refresh := func() { log.Debug("repository state changed") }

	return &app{
		settings: settings,
		log:      log,
		run:      run,
		eng:      engine.New(store, calc, clock.RealClock{}, log, refresh),
	}, nil
}

// parsePosition converts a positional argument to a stack position.
func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: expected a stack index like 0 or 2", arg)
	}
	if pos < 0 {
		return 0, fmt.Errorf("invalid position %d: positions start at 0", pos)
	}
	return pos, nil
}

// describeSnapshot renders a one-line identity for messages.
func describeSnapshot(s snapshot.Snapshot) string {
	label := s.Label
	if label == "" {
		label = "(no label)"
	}
	if s.Branch != "" {
		return fmt.Sprintf("%s %q on %s", s.Ref(), label, s.Branch)
	}
	return fmt.Sprintf("%s %q", s.Ref(), label)
}

// summarizeChanges renders working tree counts like "2 staged, 1 unstaged,
// 3 untracked".
func summarizeChanges(sum *preview.Summary) string {
	parts := []string{}
	if n := len(sum.Staged); n > 0 {
		parts = append(parts, PrintCount(n, "staged file", "staged files"))
	}
	if n := len(sum.Unstaged); n > 0 {
		parts = append(parts, PrintCount(n, "unstaged file", "unstaged files"))
	}
	if n := len(sum.Untracked); n > 0 {
		parts = append(parts, PrintCount(n, "untracked file", "untracked files"))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// warnMixed points out paths that would lose their staged/unstaged split.
func warnMixed(sum *preview.Summary) {
	if sum.Mixed() {
		PrintWarning("Some files carry both staged and unstaged changes; the split is not preserved in a snapshot.")
	}
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
