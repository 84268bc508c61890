package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/cli/config"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/usecase"
	"github.com/hourbeam/hourbeam/pkg/utils/logging"
)

// reconcileEnv bundles the flags shared by the one-shot reconciliation
// commands (preview and commit)
type reconcileEnv struct {
	user string
	week string

	appCfg     config.App
	repoCfg    config.Repository
	harvestCfg config.Harvest
	googleCfg  config.Google
}

func (e *reconcileEnv) flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Usage:       "User ID to reconcile",
			Required:    true,
			Sources:     cli.EnvVars("HOURBEAM_USER"),
			Destination: &e.user,
		},
		&cli.StringFlag{
			Name:        "week",
			Usage:       "Week start day (YYYY-MM-DD), defaults to Monday of the current week",
			Sources:     cli.EnvVars("HOURBEAM_WEEK"),
			Destination: &e.week,
		},
	}
	flags = append(flags, e.appCfg.Flags()...)
	flags = append(flags, e.repoCfg.Flags()...)
	flags = append(flags, e.harvestCfg.Flags()...)
	flags = append(flags, e.googleCfg.Flags()...)
	return flags
}

// weekStart resolves the target week. Without an explicit value the Monday
// of the current week is used.
func (e *reconcileEnv) weekStart() (types.Day, error) {
	if e.week != "" {
		return types.ParseDay(e.week)
	}
	now := time.Now()
	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	return types.DayOf(monday), nil
}

// configure wires repository and services into use cases. The returned closer
// releases the repository.
func (e *reconcileEnv) configure(ctx context.Context) (*usecase.UseCases, func(), error) {
	tuning, labels, err := e.appCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load application configuration")
	}

	repo, err := e.repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	e.googleCfg.DefaultUser(e.user)
	source, err := e.googleCfg.Configure(labels)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure calendar source")
	}

	ucOpts := []usecase.Option{
		usecase.WithSource(source),
		usecase.WithSink(e.harvestCfg.Client()),
		usecase.WithTuning(tuning),
	}
	if oauth := e.harvestCfg.OAuth(); oauth != nil {
		ucOpts = append(ucOpts, usecase.WithOAuth(oauth))
	}

	return usecase.New(repo, ucOpts...), closer, nil
}
