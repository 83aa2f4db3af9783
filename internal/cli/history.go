package cli

import (
	"github.com/spf13/cobra"

	"github.com/gitshelf/gitshelf/internal/history"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent commits on the current branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		commits, err := history.NewReader(app.run).Commits(ctx, logLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(commits)
		}
		if len(commits) == 0 {
			PrintEmptyState("No commits yet.")
			return nil
		}

		rows := make([][]string, 0, len(commits))
		for _, c := range commits {
			rows = append(rows, []string{c.ShortHash(), c.Author, formatAge(c.Date), c.Subject})
		}
		PrintTable([]string{"COMMIT", "AUTHOR", "AGE", "SUBJECT"}, rows)
		return nil
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List local branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		branches, err := history.NewReader(app.run).Branches(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(branches)
		}
		if len(branches) == 0 {
			PrintEmptyState("No branches found.")
			return nil
		}

		rows := make([][]string, 0, len(branches))
		for _, b := range branches {
			marker := " "
			if b.Current {
				marker = "*"
			}
			rows = append(rows, []string{marker, b.Name, b.Upstream})
		}
		PrintTable([]string{"", "BRANCH", "UPSTREAM"}, rows)
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", history.DefaultCommitLimit, "Number of commits to show")
}
