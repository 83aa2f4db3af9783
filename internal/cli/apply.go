package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitshelf/gitshelf/internal/engine"
)

var applyCmd = &cobra.Command{
	Use:   "apply <position>",
	Short: "Apply a snapshot to the working tree",
	Long:  `Re-apply a snapshot's changes to the working tree while keeping the snapshot in the stack.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		return runApply(cmd, pos, false)
	},
}

func runApply(cmd *cobra.Command, pos int, discard bool) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}

	res, err := app.eng.Apply(ctx, &engine.ApplyRequest{Position: pos, Discard: discard})
	if err != nil {
		if errors.Is(err, engine.ErrConflict) {
			PrintWarning("Applying the snapshot hit a conflict with the working tree.")
			PrintDim("Resolve or stash the conflicting files, then try again.")
		}
		return err
	}

	if jsonOutput {
		return outputJSON(res)
	}

	verb := "Applied"
	if discard {
		verb = "Popped"
	}
	PrintSuccess(fmt.Sprintf("%s %s", verb, describeSnapshot(res.Applied)))
	return nil
}
