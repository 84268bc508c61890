package harvest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/service/harvest"
)

func TestAuthCodeURL(t *testing.T) {
	svc := harvest.NewOAuth("client-id", "client-secret", "https://app.example.com/callback")
	u := svc.AuthCodeURL("state-token")
	gt.Bool(t, strings.HasPrefix(u, "https://id.getharvest.com/oauth2/authorize")).True()
	gt.Bool(t, strings.Contains(u, "state=state-token")).True()
	gt.Bool(t, strings.Contains(u, "client_id=client-id")).True()
}

func TestRefreshRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer ts.Close()

	svc := harvest.NewOAuth("client-id", "client-secret", "https://app.example.com/callback",
		harvest.WithOAuthEndpoint(ts.URL+"/authorize", ts.URL+"/token"))
	_, err := svc.Refresh(context.Background(), "dead-refresh-token")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrAuthExpired)).True()
}

func TestFetchAccountInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer fresh-token")
		_, _ = w.Write([]byte(`{
			"user": {"id": 777, "email": "worker@example.com"},
			"accounts": [{"id": 42, "name": "Example Org"}]
		}`))
	}))
	defer ts.Close()

	svc := harvest.NewOAuth("client-id", "client-secret", "https://app.example.com/callback",
		harvest.WithAccountsURL(ts.URL))
	info, err := svc.FetchAccountInfo(context.Background(), "fresh-token")
	gt.NoError(t, err).Required()
	gt.Value(t, info.RemoteUserID).Equal(int64(777))
	gt.Value(t, info.RemoteEmail).Equal("worker@example.com")
	gt.Value(t, info.AccountID).Equal(types.AccountID(42))
	gt.Value(t, info.AccountName).Equal("Example Org")
}

func TestFetchAccountInfoNoAccounts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user": {"id": 777, "email": "worker@example.com"}, "accounts": []}`))
	}))
	defer ts.Close()

	svc := harvest.NewOAuth("client-id", "client-secret", "https://app.example.com/callback",
		harvest.WithAccountsURL(ts.URL))
	_, err := svc.FetchAccountInfo(context.Background(), "fresh-token")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrSinkRejected)).True()
}
