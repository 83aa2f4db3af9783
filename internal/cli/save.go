package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitshelf/gitshelf/internal/engine"
)

var (
	saveUntracked   bool
	saveNoUntracked bool
	saveKeepStaged  bool
)

var saveCmd = &cobra.Command{
	Use:   "save [label]...",
	Short: "Save the working tree as a new snapshot",
	Long: `Capture all uncommitted changes as a snapshot at the top of the stack and
reset the working tree. Extra arguments are joined into the label.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		includeUntracked := app.settings.IncludeUntracked
		if saveUntracked {
			includeUntracked = true
		}
		if saveNoUntracked {
			includeUntracked = false
		}

		res, err := app.eng.Save(ctx, &engine.SaveRequest{
			Label:            strings.Join(args, " "),
			IncludeUntracked: includeUntracked,
			KeepStaged:       saveKeepStaged,
		})
		if err != nil {
			if errors.Is(err, engine.ErrNoChanges) {
				PrintInfo("Working tree is clean; nothing to save.")
				return nil
			}
			return err
		}

		if jsonOutput {
			return outputJSON(res)
		}

		warnMixed(res.Summary)
		PrintSuccess(fmt.Sprintf("Saved %s (%s)", describeSnapshot(res.Saved), summarizeChanges(res.Summary)))
		if !includeUntracked && res.Summary.HasUntracked() {
			PrintWarning(fmt.Sprintf("Left %s in place; use --include-untracked to capture them.",
				PrintCount(len(res.Summary.Untracked), "untracked file", "untracked files")))
		}
		return nil
	},
}

func init() {
	saveCmd.Flags().BoolVarP(&saveUntracked, "include-untracked", "u", false, "Capture untracked files as well")
	saveCmd.Flags().BoolVar(&saveNoUntracked, "no-untracked", false, "Leave untracked files in place")
	saveCmd.Flags().BoolVar(&saveKeepStaged, "keep-staged", false, "Leave staged changes in place after saving")
	saveCmd.MarkFlagsMutuallyExclusive("include-untracked", "no-untracked")
}
