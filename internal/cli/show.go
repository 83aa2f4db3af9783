package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitshelf/gitshelf/internal/engine"
	"github.com/gitshelf/gitshelf/internal/preview"
)

var showCmd = &cobra.Command{
	Use:   "show <position>",
	Short: "Show one snapshot's changes",
	Long:  `Display a snapshot's metadata and per-file change counts.`,
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

		res, err := app.eng.Show(ctx, &engine.ShowRequest{Position: pos})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(res)
		}

		s := res.Snapshot
		PrintSection(describeSnapshot(s))
		if !s.CreatedAt.IsZero() {
			PrintLabelValue("Created", s.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if s.HasUntrackedLayer {
			PrintLabelValue("Untracked", "captured")
		}
		if s.FileCount > 0 {
			PrintLabelValue("Changes", fmt.Sprintf("%s, +%d -%d",
				PrintCount(s.FileCount, "file", "files"), s.Additions, s.Deletions))
		}

		if len(res.Entries) == 0 {
			PrintEmptyState("No file changes recorded.")
			return nil
		}
		rows := make([][]string, 0, len(res.Entries))
		for _, e := range res.Entries {
			rows = append(rows, []string{formatLineCount(e.Added), formatLineCount(e.Deleted), e.Path})
		}
		fmt.Println()
		PrintTable([]string{"ADDED", "DELETED", "PATH"}, rows)
		return nil
	},
}

func formatLineCount(n int) string {
	if n == preview.BinaryLines {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
