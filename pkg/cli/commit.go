package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/usecase"
)

func cmdCommit() *cli.Command {
	var env reconcileEnv
	var candidateIDs []string

	flags := append(env.flags(),
		&cli.StringSliceFlag{
			Name:        "candidate",
			Usage:       "Candidate ID to submit (repeatable). Without this flag every candidate is submitted",
			Destination: &candidateIDs,
		},
	)

	return &cli.Command{
		Name:  "commit",
		Usage: "Run reconciliation and submit candidates to the timesheet",
		Flags: flags,
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

			result, err := uc.Reconcile.Commit(ctx, types.UserID(env.user), week, candidateIDs)
			if err != nil {
				return err
			}

			printCommit(result)

			if result.PartiallyFailed {
				return goerr.New("some candidates failed to submit",
					goerr.V("failed", len(result.Failed)),
					goerr.V("submitted", len(result.Submitted)))
			}
			return nil
		},
	}
}

func printCommit(result *usecase.CommitResult) {
	bold := color.New(color.Bold)
	bold.Printf("Commit for %s, week of %s\n\n", result.UserID, result.WeekStart)

	for _, outcome := range result.Submitted {
		color.Green("submitted %s: %.2fh as entry %d",
			outcome.Candidate.ID(), outcome.Candidate.Hours, outcome.SinkEntryID)
	}
	for _, outcome := range result.Skipped {
		color.Yellow("skipped %s: %s", outcome.Candidate.ID(), outcome.Detail)
	}
	for _, outcome := range result.Failed {
		color.Red("failed %s: %s", outcome.Candidate.ID(), outcome.Detail)
	}
	for _, unmapped := range result.Unmapped {
		color.Red("unmapped %q (signature %q)", unmapped.Event.Summary, unmapped.Signature)
	}
	for _, warning := range result.Warnings {
		color.Cyan("warning: %s", warning)
	}

	fmt.Printf("\n%d submitted, %d skipped, %d failed, %d unmapped\n",
		len(result.Submitted), len(result.Skipped), len(result.Failed), len(result.Unmapped))
}
