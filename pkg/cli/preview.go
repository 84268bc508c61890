package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/usecase"
)

func cmdPreview() *cli.Command {
	var env reconcileEnv

	return &cli.Command{
		Name:  "preview",
		Usage: "Show what a reconciliation run would submit, without writing anything",
		Flags: env.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			week, err := env.weekStart()
			if err != nil {
				return err
			}

			uc, closer, err := env.configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			result, err := uc.Reconcile.Preview(ctx, types.UserID(env.user), week)
			if err != nil {
				return err
			}

			printPreview(result)
			return nil
		},
	}
}

func printPreview(result *usecase.PreviewResult) {
	bold := color.New(color.Bold)
	bold.Printf("Preview for %s, week of %s\n\n", result.UserID, result.WeekStart)

	if len(result.Candidates) > 0 {
		bold.Println("Candidates:")
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROJECT\tTASK\tDAY\tHOURS")
		for _, cand := range result.Candidates {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
				cand.ID(), cand.ProjectName, cand.TaskName, cand.Day, cand.Hours)
		}
		w.Flush()
		fmt.Println()
	} else {
		fmt.Println("Nothing to submit.")
	}

	for _, skipped := range result.Skipped {
		color.Yellow("skip %s: %s", skipped.Candidate.ID(), skipped.Detail)
	}
	for _, unmapped := range result.Unmapped {
		color.Red("unmapped %q on %s (signature %q)",
			unmapped.Event.Summary, types.DayOf(unmapped.Event.Start), unmapped.Signature)
	}
	for _, warning := range result.Warnings {
		color.Cyan("warning: %s", warning)
	}
	if result.SkippedEvents > 0 {
		fmt.Printf("\n%d events excluded before grouping (declined, multi-day or zero-length)\n",
			result.SkippedEvents)
	}
}
