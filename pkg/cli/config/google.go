package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/service/googlecal"
)

// Google holds CLI flags for the Google Calendar source
type Google struct {
	user         string
	clientID     string
	clientSecret string
	accessToken  string
	refreshToken string
	calendarID   string
}

// Flags returns CLI flags for Google Calendar configuration
func (x *Google) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "google-user",
			Usage:       "User ID the configured calendar token belongs to",
			Category:    "Google Calendar",
			Sources:     cli.EnvVars("HOURBEAM_GOOGLE_USER"),
			Destination: &x.user,
		},
		&cli.StringFlag{
			Name:        "google-client-id",
			Usage:       "Google OAuth client ID (required for token refresh)",
			Category:    "Google Calendar",
			Sources:     cli.EnvVars("HOURBEAM_GOOGLE_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "google-client-secret",
			Usage:       "Google OAuth client secret",
			Category:    "Google Calendar",
			Sources:     cli.EnvVars("HOURBEAM_GOOGLE_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "google-access-token",
			Usage:       "Google OAuth access token with calendar.readonly scope",
			Category:    "Google Calendar",
			Sources:     cli.EnvVars("HOURBEAM_GOOGLE_ACCESS_TOKEN"),
			Destination: &x.accessToken,
		},
		&cli.StringFlag{
			Name:        "google-refresh-token",
			Usage:       "Google OAuth refresh token",
			Category:    "Google Calendar",
			Sources:     cli.EnvVars("HOURBEAM_GOOGLE_REFRESH_TOKEN"),
			Destination: &x.refreshToken,
		},
		&cli.StringFlag{
			Name:        "google-calendar-id",
			Usage:       "Calendar to read events from",
			Category:    "Google Calendar",
			Value:       "primary",
			Sources:     cli.EnvVars("HOURBEAM_GOOGLE_CALENDAR_ID"),
			Destination: &x.calendarID,
		},
	}
}

func (x Google) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", x.user),
		slog.Int("client-id.len", len(x.clientID)),
		slog.Bool("access-token", x.accessToken != ""),
		slog.Bool("refresh-token", x.refreshToken != ""),
		slog.String("calendar-id", x.calendarID),
	)
}

// calendarTokens serves the configured token to its owner only. Requests for
// any other user are refused rather than reading the owner's calendar.
type calendarTokens struct {
	userID types.UserID
	conf   *oauth2.Config
	token  *oauth2.Token
}

func (x *calendarTokens) TokenSource(ctx context.Context, userID types.UserID) (oauth2.TokenSource, error) {
	if userID != x.userID {
		return nil, goerr.Wrap(types.ErrAuthExpired, "no calendar token configured for user",
			goerr.V("user_id", userID))
	}
	if x.conf != nil && x.token.RefreshToken != "" {
		return x.conf.TokenSource(ctx, x.token), nil
	}
	return oauth2.StaticTokenSource(x.token), nil
}

// DefaultUser sets the token owner when google-user was not given. One-shot
// commands reuse their --user value here.
func (x *Google) DefaultUser(id string) {
	if x.user == "" {
		x.user = id
	}
}

func (x *Google) tokenProvider() (*calendarTokens, error) {
	if x.user == "" {
		return nil, goerr.New("google-user is required")
	}
	if x.accessToken == "" && x.refreshToken == "" {
		return nil, goerr.New("google-access-token or google-refresh-token is required")
	}
	if x.refreshToken != "" && (x.clientID == "" || x.clientSecret == "") {
		return nil, goerr.New("google-client-id and google-client-secret are required to use a refresh token")
	}

	tokens := &calendarTokens{
		userID: types.UserID(x.user),
		token: &oauth2.Token{
			AccessToken:  x.accessToken,
			RefreshToken: x.refreshToken,
		},
	}
	if x.refreshToken != "" {
		tokens.conf = &oauth2.Config{
			ClientID:     x.clientID,
			ClientSecret: x.clientSecret,
			Endpoint:     google.Endpoint,
		}
	}
	return tokens, nil
}

// Configure builds the calendar source client. A refresh token needs the
// OAuth client credentials to be usable; a bare access token works until it
// expires.
func (x *Google) Configure(colorLabels map[string]string) (*googlecal.Client, error) {
	tokens, err := x.tokenProvider()
	if err != nil {
		return nil, err
	}

	return googlecal.New(tokens,
		googlecal.WithCalendarID(x.calendarID),
		googlecal.WithColorLabels(colorLabels),
	), nil
}
