package cli

import (
	"github.com/spf13/cobra"
)

var popCmd = &cobra.Command{
	Use:   "pop [position]",
	Short: "Apply a snapshot and remove it from the stack",
	Long:  `Apply a snapshot to the working tree and drop it from the stack. Defaults to the most recent snapshot.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos := 0
		if len(args) == 1 {
			var err error
			pos, err = parsePosition(args[0])
			if err != nil {
				return err
			}
		}
		return runApply(cmd, pos, true)
	},
}
