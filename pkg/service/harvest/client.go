package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/utils/safe"
)

const (
	defaultBaseURL = "https://api.harvestapp.com/v2"
	userAgent      = "hourbeam (support@hourbeam.dev)"
)

// Client talks to the Harvest v2 REST API. It implements interfaces.TimeSink.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.TimeSink = &Client{}

// Option is a functional option for Client
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests, proxies)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Harvest API client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, authCtx *auth.Context, method, path string, query url.Values, body, out any) error {
	if err := authCtx.Validate(); err != nil {
		return goerr.Wrap(err, "invalid auth context")
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+authCtx.AccessToken)
	req.Header.Set("Harvest-Account-Id", strconv.FormatInt(authCtx.AccountID.Int64(), 10))
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(types.ErrSinkUnavailable, "request failed",
			goerr.V("method", method), goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(types.ErrSinkUnavailable, "failed to read response body")
	}

	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return goerr.Wrap(err, "harvest API error",
			goerr.V("method", method), goerr.V("path", path))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return goerr.Wrap(err, "failed to parse response", goerr.V("path", path))
		}
	}

	return nil
}

// classifyStatus maps HTTP status codes onto the error taxonomy: 401 means
// the token no longer works, 4xx validation failures are permanent per-call
// rejections, 5xx and 429 are transient.
func classifyStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)
	reason := apiErr.Message
	if reason == "" {
		reason = apiErr.Error
	}
	if reason == "" {
		reason = http.StatusText(statusCode)
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return goerr.Wrap(types.ErrAuthExpired, reason, goerr.V("status", statusCode))
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return goerr.Wrap(types.ErrSinkUnavailable, reason, goerr.V("status", statusCode))
	default:
		return goerr.Wrap(types.ErrSinkRejected, reason, goerr.V("status", statusCode))
	}
}

// ListEntries retrieves existing time entries for the authorized remote user
// within [from, to]. Results are filtered server-side by the remote user ID
// captured at authorization time, so one user can never see another's entries.
func (c *Client) ListEntries(ctx context.Context, authCtx *auth.Context, from, to types.Day) ([]*model.SinkEntry, error) {
	var entries []*model.SinkEntry

	page := 1
	for {
		query := url.Values{}
		query.Set("from", from.String())
		query.Set("to", to.String())
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", "100")
		if authCtx.RemoteUserID > 0 {
			query.Set("user_id", strconv.FormatInt(authCtx.RemoteUserID, 10))
		}

		var resp timeEntriesResponse
		if err := c.do(ctx, authCtx, http.MethodGet, "/time_entries", query, nil, &resp); err != nil {
			return nil, err
		}

		for _, entry := range resp.TimeEntries {
			day, err := types.ParseDay(entry.SpentDate)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid spent_date in sink entry",
					goerr.V("entry_id", entry.ID))
			}
			entries = append(entries, &model.SinkEntry{
				ID:        types.EntryID(entry.ID),
				ProjectID: types.ProjectID(entry.Project.ID),
				TaskID:    types.TaskID(entry.Task.ID),
				Day:       day,
				Hours:     entry.Hours,
				Notes:     entry.Notes,
				IsLocked:  entry.IsLocked,
			})
		}

		if resp.NextPage == nil {
			break
		}
		page = *resp.NextPage
	}

	return entries, nil
}

// CreateEntry records one time entry and returns its sink-assigned ID
func (c *Client) CreateEntry(ctx context.Context, authCtx *auth.Context, entry *interfaces.NewEntry) (types.EntryID, error) {
	if err := entry.ProjectID.Validate(); err != nil {
		return 0, goerr.Wrap(err, "invalid project ID")
	}
	if err := entry.TaskID.Validate(); err != nil {
		return 0, goerr.Wrap(err, "invalid task ID")
	}

	req := createEntryRequest{
		ProjectID: entry.ProjectID.Int64(),
		TaskID:    entry.TaskID.Int64(),
		SpentDate: entry.Day.String(),
		Hours:     entry.Hours,
		Notes:     entry.Notes,
	}

	var resp createEntryResponse
	if err := c.do(ctx, authCtx, http.MethodPost, "/time_entries", nil, &req, &resp); err != nil {
		return 0, err
	}
	if resp.ID == 0 {
		return 0, goerr.Wrap(types.ErrSinkRejected, "sink returned no entry ID")
	}

	return types.EntryID(resp.ID), nil
}

// GetIdentity performs a live call to the sink's identity endpoint
func (c *Client) GetIdentity(ctx context.Context, authCtx *auth.Context) (*model.RemoteIdentity, error) {
	var resp userResponse
	if err := c.do(ctx, authCtx, http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, goerr.Wrap(types.ErrSinkUnavailable, "identity endpoint returned no user")
	}

	return &model.RemoteIdentity{ID: resp.ID, Email: resp.Email}, nil
}

// String implements fmt.Stringer for debug logging
func (c *Client) String() string {
	return fmt.Sprintf("harvest.Client(%s)", c.baseURL)
}
