package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitshelf/gitshelf/internal/engine"
)

var dropYes bool

var dropCmd = &cobra.Command{
	Use:   "drop <position>",
	Short: "Delete a snapshot without applying it",
	Long:  `Remove a snapshot from the stack. The snapshot's changes are discarded permanently.`,
	Args:  cobra.ExactArgs(1),
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

		approved := dropYes || !app.settings.Confirm
		prompt := fmt.Sprintf("Permanently delete %s?", describeSnapshot(target))
		if err := confirm(os.Stdin, cmd.OutOrStdout(), prompt, approved, stdinIsTerminal()); err != nil {
			if errors.Is(err, ErrAborted) {
				PrintInfo("Drop cancelled.")
				return nil
			}
			return err
		}

		res, err := app.eng.Drop(ctx, &engine.DropRequest{Position: pos})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(res)
		}
		PrintSuccess(fmt.Sprintf("Dropped %s", describeSnapshot(res.Dropped)))
		return nil
	},
}

func init() {
	dropCmd.Flags().BoolVarP(&dropYes, "yes", "y", false, "Skip the confirmation prompt")
}
