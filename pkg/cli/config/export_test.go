package config

import (
	"github.com/hourbeam/hourbeam/pkg/service/googlecal"
)

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(path string) *App {
	return &App{path: path}
}

// NewHarvestForTest creates a Harvest config for testing purposes
func NewHarvestForTest(clientID, clientSecret, redirectURL string) *Harvest {
	return &Harvest{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
	}
}

// NewGoogleForTest creates a Google config for testing purposes
func NewGoogleForTest(user, clientID, clientSecret, accessToken, refreshToken, calendarID string) *Google {
	return &Google{
		user:         user,
		clientID:     clientID,
		clientSecret: clientSecret,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		calendarID:   calendarID,
	}
}

// TokenProviderForTest exposes the calendar token provider for testing purposes
func (x *Google) TokenProviderForTest() (googlecal.TokenProvider, error) {
	return x.tokenProvider()
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL}
}
