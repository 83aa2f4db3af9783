package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gitshelf/gitshelf/internal/gitx"
	"github.com/gitshelf/gitshelf/internal/preview"
	"github.com/gitshelf/gitshelf/internal/snapshot"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree and snapshot stack at a glance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		var (
			branch string
			sum    *preview.Summary
			snaps  []snapshot.Snapshot
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			branch, err = gitx.CurrentBranch(gctx, app.run)
			return err
		})
		g.Go(func() error {
			var err error
			sum, err = app.eng.Preview(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			snaps, err = app.eng.List(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(struct {
				Branch    string              `json:"branch"`
				Summary   *preview.Summary    `json:"summary"`
				Snapshots []snapshot.Snapshot `json:"snapshots"`
			}{branch, sum, snaps})
		}

		PrintSection("Repository")
		PrintLabelValue("Branch", branch)
		PrintLabelValue("Snapshots", fmt.Sprintf("%d", len(snaps)))
		if len(snaps) > 0 {
			PrintLabelValue("Most recent", describeSnapshot(snaps[0]))
		}

		PrintSection("Working tree")
		if !sum.HasChanges() {
			PrintDim("clean")
			return nil
		}
		PrintLabelValue("Changes", summarizeChanges(sum))
		warnMixed(sum)
		return nil
	},
}
