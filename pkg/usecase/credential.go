package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/service/harvest"
	"github.com/hourbeam/hourbeam/pkg/utils/async"
	"github.com/hourbeam/hourbeam/pkg/utils/logging"
)

// OAuthService drives the sink's authorization flow. Implemented by
// service/harvest.OAuth.
type OAuthService interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	FetchAccountInfo(ctx context.Context, accessToken string) (*harvest.AccountInfo, error)
}

// CredentialUseCase manages the credential lifecycle: connect, resolve,
// refresh, validate, disconnect. Every resolution produces a valid context or
// a typed error; there is no degraded half-authorized state.
type CredentialUseCase struct {
	repo     interfaces.Repository
	oauth    OAuthService
	sink     interfaces.TimeSink
	notifier interfaces.AuditNotifier
	now      func() time.Time
}

func newCredentialUseCase(repo interfaces.Repository, oauth OAuthService, sink interfaces.TimeSink, notifier interfaces.AuditNotifier, now func() time.Time) *CredentialUseCase {
	return &CredentialUseCase{
		repo:     repo,
		oauth:    oauth,
		sink:     sink,
		notifier: notifier,
		now:      now,
	}
}

// AuthCodeURL returns the URL a user visits to authorize the sink
func (x *CredentialUseCase) AuthCodeURL(state string) string {
	return x.oauth.AuthCodeURL(state)
}

// GetAuthContext resolves stored material into a usable authorization
// context. OAuth material is preferred and refreshed when expired; a failed
// refresh clears the material so the next attempt fails fast with a
// reconnect-required error instead of hammering a dead grant. Legacy material
// is used only when no OAuth material exists, and every such use is audited.
func (x *CredentialUseCase) GetAuthContext(ctx context.Context, userID types.UserID) (*auth.Context, error) {
	material, err := x.repo.GetCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(types.ErrAuthExpired, "no credential stored",
				goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to load credential", goerr.V("user_id", userID))
	}

	if material.HasOAuth() {
		return x.oauthContext(ctx, material)
	}

	x.audit(ctx, userID, types.AuditKindLegacyFallback,
		"static token used, no identity guarantee")

	return &auth.Context{
		UserID:      userID,
		Method:      auth.MethodLegacy,
		AccessToken: material.Legacy.AccessToken,
		AccountID:   material.Legacy.AccountID,
	}, nil
}

func (x *CredentialUseCase) oauthContext(ctx context.Context, material *auth.Material) (*auth.Context, error) {
	oa := material.OAuth
	userID := material.UserID

	if oa.Expired(x.now()) {
		token, err := x.oauth.Refresh(ctx, oa.RefreshToken)
		if err != nil {
			x.audit(ctx, userID, types.AuditKindRefreshFailed, err.Error())
			if delErr := x.repo.DeleteCredential(ctx, userID); delErr != nil {
				logging.From(ctx).Warn("failed to clear dead credential",
					"user_id", userID, "error", delErr)
			}
			return nil, goerr.Wrap(types.ErrAuthExpired, "token refresh failed, reconnect required",
				goerr.V("user_id", userID))
		}

		oa.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			oa.RefreshToken = token.RefreshToken
		}
		oa.Expiry = token.Expiry
		material.UpdatedAt = x.now()

		if err := x.repo.PutCredential(ctx, material); err != nil {
			return nil, goerr.Wrap(err, "failed to store refreshed credential",
				goerr.V("user_id", userID))
		}
		x.audit(ctx, userID, types.AuditKindTokenRefresh, "")
	}

	return &auth.Context{
		UserID:       userID,
		Method:       auth.MethodOAuth,
		AccessToken:  oa.AccessToken,
		AccountID:    oa.AccountID,
		RemoteUserID: oa.RemoteUserID,
		RemoteEmail:  oa.RemoteEmail,
	}, nil
}

// ValidateIdentity calls the sink's identity endpoint and compares the live
// identity against the one captured at authorization time. A mismatch is a
// hard stop: nothing may be written on another account's behalf. Contexts
// without a stored identity (legacy tokens) pass with the live identity only.
func (x *CredentialUseCase) ValidateIdentity(ctx context.Context, authCtx *auth.Context) (*model.RemoteIdentity, error) {
	identity, err := x.sink.GetIdentity(ctx, authCtx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch remote identity",
			goerr.V("user_id", authCtx.UserID))
	}

	if !authCtx.HasIdentityGuarantee() {
		return identity, nil
	}

	if identity.ID != authCtx.RemoteUserID ||
		(authCtx.RemoteEmail != "" && !strings.EqualFold(identity.Email, authCtx.RemoteEmail)) {
		detail := fmt.Sprintf("stored remote user %d (%s), live remote user %d (%s)",
			authCtx.RemoteUserID, authCtx.RemoteEmail, identity.ID, identity.Email)
		x.audit(ctx, authCtx.UserID, types.AuditKindIdentityMismatch, detail)

		return nil, goerr.Wrap(types.ErrIdentityMismatch, detail,
			goerr.V("user_id", authCtx.UserID),
			goerr.V("stored_remote_user_id", authCtx.RemoteUserID),
			goerr.V("live_remote_user_id", identity.ID))
	}

	return identity, nil
}

// Connect exchanges an authorization code, resolves the granted account and
// identity, and stores the resulting material
func (x *CredentialUseCase) Connect(ctx context.Context, userID types.UserID, code string) (*auth.Material, error) {
	token, err := x.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange authorization code",
			goerr.V("user_id", userID))
	}

	info, err := x.oauth.FetchAccountInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve account info", goerr.V("user_id", userID))
	}

	material := &auth.Material{
		UserID:    userID,
		OAuth:     harvest.MaterialFromToken(token, info),
		UpdatedAt: x.now(),
	}
	if err := material.Validate(); err != nil {
		return nil, err
	}
	if err := x.repo.PutCredential(ctx, material); err != nil {
		return nil, goerr.Wrap(err, "failed to store credential", goerr.V("user_id", userID))
	}

	x.audit(ctx, userID, types.AuditKindConnect,
		fmt.Sprintf("account %d (%s)", info.AccountID, info.AccountName))

	return material, nil
}

// ConnectLegacy stores a static personal access token. Deprecated path kept
// for accounts that cannot complete the OAuth flow.
func (x *CredentialUseCase) ConnectLegacy(ctx context.Context, userID types.UserID, accessToken string, accountID types.AccountID) error {
	material := &auth.Material{
		UserID: userID,
		Legacy: &auth.LegacyMaterial{
			AccessToken: accessToken,
			AccountID:   accountID,
		},
		UpdatedAt: x.now(),
	}
	if err := material.Validate(); err != nil {
		return err
	}
	if err := x.repo.PutCredential(ctx, material); err != nil {
		return goerr.Wrap(err, "failed to store credential", goerr.V("user_id", userID))
	}

	x.audit(ctx, userID, types.AuditKindConnect, "legacy token")
	return nil
}

// Disconnect clears stored material. Missing material is not an error:
// disconnect is idempotent.
func (x *CredentialUseCase) Disconnect(ctx context.Context, userID types.UserID) error {
	if err := x.repo.DeleteCredential(ctx, userID); err != nil && !errors.Is(err, types.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete credential", goerr.V("user_id", userID))
	}

	x.audit(ctx, userID, types.AuditKindDisconnect, "")
	return nil
}

// audit appends a record to the credential audit trail and pushes it to the
// notifier. Audit failures are logged, never propagated: the trail must not
// block the credential path itself.
func (x *CredentialUseCase) audit(ctx context.Context, userID types.UserID, kind types.AuditKind, detail string) {
	record := &model.AuditRecord{
		ID:        model.NewAuditID(),
		UserID:    userID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: x.now(),
	}

	if _, err := x.repo.Audit().Append(ctx, record); err != nil {
		logging.From(ctx).Error("failed to append audit record",
			"user_id", userID, "kind", kind, "error", err)
	}

	if x.notifier != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return x.notifier.NotifyAudit(ctx, record)
		})
	}
}
