package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/service/harvest"
)

// Harvest holds CLI flags for the Harvest sink and its OAuth application
type Harvest struct {
	clientID     string
	clientSecret string
	redirectURL  string
}

// Flags returns CLI flags for Harvest configuration
func (x *Harvest) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "harvest-client-id",
			Usage:       "Harvest OAuth application client ID",
			Category:    "Harvest",
			Sources:     cli.EnvVars("HOURBEAM_HARVEST_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "harvest-client-secret",
			Usage:       "Harvest OAuth application client secret",
			Category:    "Harvest",
			Sources:     cli.EnvVars("HOURBEAM_HARVEST_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "harvest-redirect-url",
			Usage:       "OAuth redirect URL registered with the Harvest application",
			Category:    "Harvest",
			Sources:     cli.EnvVars("HOURBEAM_HARVEST_REDIRECT_URL"),
			Destination: &x.redirectURL,
		},
	}
}

func (x Harvest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("redirect-url", x.redirectURL),
	)
}

// IsOAuthConfigured reports whether the OAuth application credentials are set.
// Without them only legacy static tokens can be connected.
func (x *Harvest) IsOAuthConfigured() bool {
	return x.clientID != "" && x.clientSecret != ""
}

// Client returns the Harvest API client
func (x *Harvest) Client() *harvest.Client {
	return harvest.New()
}

// OAuth returns the OAuth service, or nil when the application credentials
// are not configured
func (x *Harvest) OAuth() *harvest.OAuth {
	if !x.IsOAuthConfigured() {
		return nil
	}
	return harvest.NewOAuth(x.clientID, x.clientSecret, x.redirectURL)
}
