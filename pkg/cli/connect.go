package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/cli/config"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/usecase"
	"github.com/hourbeam/hourbeam/pkg/utils/logging"
)

func cmdConnect() *cli.Command {
	var user string
	var code string
	var legacyToken string
	var legacyAccountID int
	var disconnect bool
	var repoCfg config.Repository
	var harvestCfg config.Harvest
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Usage:       "User ID to connect",
			Required:    true,
			Sources:     cli.EnvVars("HOURBEAM_USER"),
			Destination: &user,
		},
		&cli.StringFlag{
			Name:        "code",
			Usage:       "Authorization code from the OAuth callback. Without it the authorization URL is printed",
			Destination: &code,
		},
		&cli.StringFlag{
			Name:        "legacy-token",
			Usage:       "Static personal access token (deprecated, no identity guarantee)",
			Destination: &legacyToken,
		},
		&cli.IntFlag{
			Name:        "legacy-account-id",
			Usage:       "Harvest account ID for the legacy token",
			Destination: &legacyAccountID,
		},
		&cli.BoolFlag{
			Name:        "disconnect",
			Usage:       "Remove the stored credential instead of connecting",
			Destination: &disconnect,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, harvestCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:  "connect",
		Usage: "Connect a user's Harvest account (OAuth or legacy token)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			userID := types.UserID(user)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure audit notifier")
			}

			ucOpts := []usecase.Option{
				usecase.WithSink(harvestCfg.Client()),
				usecase.WithNotifier(notifier),
			}
			if oauth := harvestCfg.OAuth(); oauth != nil {
				ucOpts = append(ucOpts, usecase.WithOAuth(oauth))
			}
			uc := usecase.New(repo, ucOpts...)

			switch {
			case disconnect:
				if err := uc.Credential.Disconnect(ctx, userID); err != nil {
					return err
				}
				color.Green("Disconnected %s", userID)
				return nil

			case legacyToken != "":
				if legacyAccountID <= 0 {
					return goerr.New("legacy-account-id is required with legacy-token")
				}
				if err := uc.Credential.ConnectLegacy(ctx, userID, legacyToken, types.AccountID(legacyAccountID)); err != nil {
					return err
				}
				color.Yellow("Connected %s with a legacy token. Identity validation is disabled for this credential; prefer OAuth.", userID)
				return nil

			case code != "":
				if !harvestCfg.IsOAuthConfigured() {
					return goerr.New("harvest-client-id and harvest-client-secret are required for OAuth connect")
				}
				material, err := uc.Credential.Connect(ctx, userID, code)
				if err != nil {
					return err
				}
				color.Green("Connected %s to account %q as %s",
					userID, material.OAuth.AccountName, material.OAuth.RemoteEmail)
				return nil

			default:
				if !harvestCfg.IsOAuthConfigured() {
					return goerr.New("harvest-client-id and harvest-client-secret are required for OAuth connect")
				}
				state := uuid.NewString()
				fmt.Println("Visit the URL below to authorize access, then re-run with --code:")
				fmt.Println(uc.Credential.AuthCodeURL(state))
				return nil
			}
		},
	}
}
