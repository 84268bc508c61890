package auth

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// Method is the authentication method a resolved context was built from
type Method string

const (
	MethodOAuth  Method = "oauth"
	MethodLegacy Method = "legacy"
)

// OAuthMaterial is token material obtained through the sink's OAuth flow.
// It carries the remote identity captured at authorization time, which the
// identity gate compares against the live identity endpoint before commits.
type OAuthMaterial struct {
	AccessToken  string          `firestore:"access_token" masq:"secret"`
	RefreshToken string          `firestore:"refresh_token" masq:"secret"`
	Expiry       time.Time       `firestore:"expiry"`
	AccountID    types.AccountID `firestore:"account_id"`
	AccountName  string          `firestore:"account_name"`
	RemoteUserID int64           `firestore:"remote_user_id"`
	RemoteEmail  string          `firestore:"remote_email"`
}

// Expired reports whether the access token is past its expiry at t
func (x *OAuthMaterial) Expired(t time.Time) bool {
	return !x.Expiry.IsZero() && !t.Before(x.Expiry)
}

// LegacyMaterial is a static personal access token. Deprecated path: it
// carries no identity-mismatch guarantee.
type LegacyMaterial struct {
	AccessToken string          `firestore:"access_token" masq:"secret"`
	AccountID   types.AccountID `firestore:"account_id"`
}

// Material is the stored credential state for one (user, sink account) pair.
// OAuth is always preferred when both variants exist.
type Material struct {
	UserID    types.UserID    `firestore:"user_id"`
	OAuth     *OAuthMaterial  `firestore:"oauth,omitempty"`
	Legacy    *LegacyMaterial `firestore:"legacy,omitempty"`
	UpdatedAt time.Time       `firestore:"updated_at"`
}

// Validate checks if the Material is well-formed
func (x *Material) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if x.OAuth == nil && x.Legacy == nil {
		return goerr.New("credential material requires oauth or legacy variant",
			goerr.V("user_id", x.UserID))
	}
	if x.OAuth != nil && x.OAuth.AccessToken == "" {
		return goerr.New("oauth material requires access token", goerr.V("user_id", x.UserID))
	}
	if x.Legacy != nil && (x.Legacy.AccessToken == "" || x.Legacy.AccountID <= 0) {
		return goerr.New("legacy material requires access token and account ID",
			goerr.V("user_id", x.UserID))
	}
	return nil
}

// HasOAuth reports whether OAuth material is present
func (x *Material) HasOAuth() bool {
	return x.OAuth != nil
}

// Context is a validated, ready-to-use authorization context, resolved once
// per request from the stored Material. One instance per (user, account);
// invalidated and replaced on refresh or disconnect.
type Context struct {
	UserID       types.UserID
	Method       Method
	AccessToken  string `masq:"secret"`
	AccountID    types.AccountID
	RemoteUserID int64
	RemoteEmail  string
}

// Validate checks if the Context is usable
func (x *Context) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if x.AccessToken == "" {
		return goerr.New("auth context requires access token", goerr.V("user_id", x.UserID))
	}
	if x.AccountID <= 0 {
		return goerr.New("auth context requires account ID", goerr.V("user_id", x.UserID))
	}
	return nil
}

// HasIdentityGuarantee reports whether the context carries a stored remote
// identity the live identity check can be compared against
func (x *Context) HasIdentityGuarantee() bool {
	return x.Method == MethodOAuth
}
