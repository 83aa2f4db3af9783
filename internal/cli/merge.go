package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/gitshelf/gitshelf/internal/engine"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

var (
	mergeLabel string
	mergeYes   bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <position>",
	Short: "Fold working tree changes into an existing snapshot",
	Long: `Combine the current working tree changes with an existing snapshot.

The target snapshot is replaced by a new snapshot holding both change
sets, and the working tree is left clean. If any step fails, the
previous state is restored where possible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		snaps, err := app.eng.List(ctx)
		if err != nil {
			return err
		}
		if pos >= len(snaps) {
			return fmt.Errorf("%w: position %d out of range, stack has %d snapshots", engine.ErrValidation, pos, len(snaps))
		}
		target := snaps[pos]

		sum, err := app.eng.Preview(ctx)
		if err != nil {
			return err
		}
		if !sum.HasChanges() {
			PrintInfo("Working tree is clean; nothing to merge.")
			return nil
		}
		warnMixed(sum)

		combined := mergeLabel
		if combined == "" {
			combined = target.Label
		}
		if diff := renderStackDiff(snaps, pos, combined); diff != "" && !jsonOutput {
			PrintSection("Planned stack change")
			fmt.Print(diff)
			fmt.Println()
		}

		approved := mergeYes || !app.settings.Confirm
		prompt := fmt.Sprintf("Merge working tree changes into %s?", describeSnapshot(target))
		if err := confirm(os.Stdin, cmd.OutOrStdout(), prompt, approved, stdinIsTerminal()); err != nil {
			if errors.Is(err, ErrAborted) {
				PrintInfo("Merge cancelled.")
				return nil
			}
			return err
		}

		res, err := app.eng.Merge(ctx, &engine.MergeRequest{TargetPosition: pos, CombinedLabel: mergeLabel})
		if err != nil {
			if errors.Is(err, engine.ErrNoChanges) {
				PrintInfo("Working tree is clean; nothing to merge.")
				return nil
			}
			reportMergeFailure(err)
			return err
		}

		if jsonOutput {
			return outputJSON(res)
		}
		PrintSuccess(fmt.Sprintf("Merged working tree changes into %s", describeSnapshot(res.Merged)))
		PrintDim(fmt.Sprintf("Completed in %s", res.Elapsed.Round(time.Millisecond)))
		return nil
	},
}

// renderStackDiff shows the stack manifest before and after the merge:
// the target entry is replaced by the combined snapshot at position 0
// and everything above the target shifts down by one.
func renderStackDiff(snaps []snapshot.Snapshot, target int, combinedLabel string) string {
	before := make([]string, 0, len(snaps))
	for _, s := range snaps {
		before = append(before, manifestLine(s.Position, s.Label))
	}

	after := make([]string, 0, len(snaps))
	after = append(after, manifestLine(0, combinedLabel))
	next := 1
	for _, s := range snaps {
		if s.Position == target {
			continue
		}
		after = append(after, manifestLine(next, s.Label))
		next++
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(before, "\n") + "\n"),
		B:        difflib.SplitLines(strings.Join(after, "\n") + "\n"),
		FromFile: "stack (before)",
		ToFile:   "stack (after)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return text
}

func manifestLine(pos int, label string) string {
	if label == "" {
		label = "(no label)"
	}
	return fmt.Sprintf("%s: %s", snapshot.Ref(pos), label)
}

func reportMergeFailure(err error) {
	step := ""
	var stepErr *engine.StepError
	if errors.As(err, &stepErr) {
		step = stepErr.Step.String()
	}

	var cleanup *engine.CleanupError
	switch {
	case errors.As(err, &cleanup):
		PrintError("Merge failed and the automatic rollback also failed.")
		PrintWarning("The stack may hold a leftover capture snapshot; inspect it with 'gitshelf list'.")
	case errors.Is(err, engine.ErrConflict):
		if step == "" {
			PrintWarning("Merge stopped on a conflict.")
		} else {
			PrintWarning(fmt.Sprintf("Merge stopped on a conflict while trying to %s.", step))
		}
		PrintDim("Resolve the conflicted files, then save or discard the result.")
	default:
		if step != "" {
			PrintDim(fmt.Sprintf("Failed while trying to %s.", step))
		}
	}
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeLabel, "label", "m", "", "Label for the combined snapshot (defaults to the target's)")
	mergeCmd.Flags().BoolVarP(&mergeYes, "yes", "y", false, "Skip the confirmation prompt")
}
