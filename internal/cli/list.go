package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all snapshots",
	Long:  `Display the snapshot stack, most recent first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		snaps, err := app.eng.List(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(snaps)
		}

		if len(snaps) == 0 {
			PrintInfo("No snapshots saved.")
			return nil
		}

		rows := make([][]string, 0, len(snaps))
		for _, s := range snaps {
			label := s.Label
			if label == "" {
				label = "(no label)"
			}
			untracked := ""
			if s.HasUntrackedLayer {
				untracked = "yes"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", s.Position),
				label,
				s.Branch,
				formatAge(s.CreatedAt),
				fmt.Sprintf("%d", s.FileCount),
				fmt.Sprintf("+%d -%d", s.Additions, s.Deletions),
				untracked,
			})
		}
		PrintTable([]string{"POS", "LABEL", "BRANCH", "AGE", "FILES", "CHANGES", "UNTRACKED"}, rows)
		return nil
	},
}

// formatAge renders a creation time as a coarse relative age.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
