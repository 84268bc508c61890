package harvest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/utils/safe"
)

const (
	defaultAuthURL     = "https://id.getharvest.com/oauth2/authorize"
	defaultTokenURL    = "https://id.getharvest.com/api/v2/oauth2/token"
	defaultAccountsURL = "https://id.getharvest.com/api/v2/accounts"
)

// OAuth drives the sink's authorization code flow and token refresh.
type OAuth struct {
	conf        *oauth2.Config
	accountsURL string
	httpClient  *http.Client
}

// OAuthOption is a functional option for OAuth
type OAuthOption func(*OAuth)

// WithOAuthEndpoint overrides the authorize/token endpoints (tests)
func WithOAuthEndpoint(authURL, tokenURL string) OAuthOption {
	return func(x *OAuth) {
		x.conf.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
}

// WithAccountsURL overrides the account info endpoint (tests)
func WithAccountsURL(accountsURL string) OAuthOption {
	return func(x *OAuth) {
		x.accountsURL = accountsURL
	}
}

// WithOAuthHTTPClient overrides the HTTP client used for account lookups and
// token exchange
func WithOAuthHTTPClient(httpClient *http.Client) OAuthOption {
	return func(x *OAuth) {
		x.httpClient = httpClient
	}
}

// NewOAuth creates an OAuth service for the given client credentials
func NewOAuth(clientID, clientSecret, redirectURL string, opts ...OAuthOption) *OAuth {
	x := &OAuth{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  defaultAuthURL,
				TokenURL: defaultTokenURL,
			},
		},
		accountsURL: defaultAccountsURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *OAuth) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, x.httpClient)
}

// AuthCodeURL builds the URL the user visits to grant access. The state value
// must be verified on callback.
func (x *OAuth) AuthCodeURL(state string) string {
	return x.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for token material
func (x *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := x.conf.Exchange(x.clientContext(ctx), code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange authorization code")
	}
	return token, nil
}

// Refresh obtains a fresh access token from a refresh token. A rejected
// refresh token means the grant was revoked and the stored material is dead.
func (x *OAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := x.conf.TokenSource(x.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, goerr.Wrap(types.ErrAuthExpired, "token refresh rejected",
			goerr.V("cause", err.Error()))
	}
	return token, nil
}

// AccountInfo is the identity and account set bound to an access token
type AccountInfo struct {
	RemoteUserID int64
	RemoteEmail  string
	AccountID    types.AccountID
	AccountName  string
}

// FetchAccountInfo resolves the remote identity and the first accessible
// account for an access token. Harvest scopes a token to the accounts chosen
// at grant time; the engine binds the credential to the first one.
func (x *OAuth) FetchAccountInfo(ctx context.Context, accessToken string) (*AccountInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.accountsURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create accounts request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(types.ErrSinkUnavailable, "accounts request failed",
			goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(types.ErrSinkUnavailable, "failed to read accounts response")
	}
	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return nil, goerr.Wrap(err, "accounts endpoint error")
	}

	var accounts accountsResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, goerr.Wrap(err, "failed to parse accounts response")
	}
	if accounts.User.ID == 0 {
		return nil, goerr.New("accounts response carries no user identity")
	}
	if len(accounts.Accounts) == 0 {
		return nil, goerr.Wrap(types.ErrSinkRejected, "token grants access to no accounts",
			goerr.V("remote_user_id", accounts.User.ID))
	}

	return &AccountInfo{
		RemoteUserID: accounts.User.ID,
		RemoteEmail:  accounts.User.Email,
		AccountID:    types.AccountID(accounts.Accounts[0].ID),
		AccountName:  accounts.Accounts[0].Name,
	}, nil
}

// MaterialFromToken converts an exchanged token plus resolved account info
// into storable credential material
func MaterialFromToken(token *oauth2.Token, info *AccountInfo) *auth.OAuthMaterial {
	return &auth.OAuthMaterial{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		AccountID:    info.AccountID,
		AccountName:  info.AccountName,
		RemoteUserID: info.RemoteUserID,
		RemoteEmail:  info.RemoteEmail,
	}
}
