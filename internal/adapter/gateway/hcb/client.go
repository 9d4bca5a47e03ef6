package hcb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hackclub/hermes/internal/domain"
)

const (
	// DefaultBaseURL is the production HCB V4 API root.
	DefaultBaseURL = "https://hcb.hackclub.com/api/v4"
	// DefaultTokenURL is the OAuth2 endpoint used for refresh_token grants.
	DefaultTokenURL = "https://hcb.hackclub.com/api/v4/oauth/token"

	defaultTimeout = 30 * time.Second
	maxPerPage     = 100
)

// Config for Client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	Timeout      time.Duration
	HTTPClient   *http.Client // Optional; built from Timeout when nil
	Logger       *slog.Logger
}

// Client talks to the HCB V4 API with OAuth2 bearer credentials. The token
// pair lives on the client and is swapped under a lock when a 401 forces a
// refresh, so concurrent callers share one credential.
//
// Errors come back as *domain.GatewayError. A zero StatusCode means the
// request never produced an HTTP status (timeout, connection failure), which
// the billing passes treat as retryable.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewClient creates a new Client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
		accessToken:  cfg.AccessToken,
		refreshToken: cfg.RefreshToken,
	}
}

type createTransferRequest struct {
	ToOrganizationID string `json:"to_organization_id"`
	AmountCents      int64  `json:"amount_cents"`
	Name             string `json:"name"`
}

type transferResponse struct {
	ID          string `json:"id"`
	Memo        string `json:"memo"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// AccountInfo is the slice of an HCB organization this service reads.
type AccountInfo struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// CreateTransfer moves amountCents from the source organization to the
// destination. The gateway deduplicates resubmissions by memo, so callers
// retry with the identical memo after an ambiguous failure.
func (c *Client) CreateTransfer(ctx context.Context, sourceSlug, destination string, amountCents int64, memo string) (*domain.TransferReceipt, error) {
	body, err := json.Marshal(createTransferRequest{
		ToOrganizationID: destination,
		AmountCents:      amountCents,
		Name:             memo,
	})
	if err != nil {
		return nil, &domain.GatewayError{Message: fmt.Sprintf("encoding transfer request: %v", err)}
	}

	requestURL := c.baseURL + "/organizations/" + url.PathEscape(sourceSlug) + "/transfers"

	status, respBody, err := c.do(ctx, http.MethodPost, requestURL, body)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, &domain.GatewayError{Message: "organization not found: " + sourceSlug, StatusCode: status}
	case status == http.StatusForbidden:
		return nil, &domain.GatewayError{Message: "not authorized to create transfers for " + sourceSlug, StatusCode: status}
	case status != http.StatusOK && status != http.StatusCreated:
		return nil, errorFromResponse(status, respBody)
	}

	var transfer transferResponse
	if err := json.Unmarshal(respBody, &transfer); err != nil {
		return nil, &domain.GatewayError{Message: fmt.Sprintf("decoding transfer response: %v", err)}
	}

	return &domain.TransferReceipt{TransferID: transfer.ID}, nil
}

// ListTransfers returns recent transfers for an organization, newest first.
// limit is clamped to the API page size.
func (c *Client) ListTransfers(ctx context.Context, accountSlug string, limit int) ([]*domain.TransferRecord, error) {
	if limit <= 0 || limit > maxPerPage {
		limit = maxPerPage
	}

	requestURL := fmt.Sprintf("%s/organizations/%s/transfers?per_page=%d",
		c.baseURL, url.PathEscape(accountSlug), limit)

	status, respBody, err := c.do(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, &domain.GatewayError{Message: "organization not found: " + accountSlug, StatusCode: status}
	case status != http.StatusOK:
		return nil, errorFromResponse(status, respBody)
	}

	var transfers []transferResponse
	if err := json.Unmarshal(respBody, &transfers); err != nil {
		return nil, &domain.GatewayError{Message: fmt.Sprintf("decoding transfers response: %v", err)}
	}

	records := make([]*domain.TransferRecord, 0, len(transfers))
	for _, t := range transfers {
		memo := t.Memo
		if memo == "" {
			memo = t.Name
		}
		records = append(records, &domain.TransferRecord{
			TransferID:  t.ID,
			Memo:        memo,
			AmountCents: t.AmountCents,
		})
	}

	return records, nil
}

// GetOrganization fetches an HCB organization by slug or id.
func (c *Client) GetOrganization(ctx context.Context, slugOrID string) (*AccountInfo, error) {
	requestURL := c.baseURL + "/organizations/" + url.PathEscape(slugOrID)

	status, respBody, err := c.do(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, &domain.GatewayError{Message: "organization not found: " + slugOrID, StatusCode: status}
	case status != http.StatusOK:
		return nil, errorFromResponse(status, respBody)
	}

	var info AccountInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, &domain.GatewayError{Message: fmt.Sprintf("decoding organization response: %v", err)}
	}

	return &info, nil
}

// do sends one request with the current access token. A 401 triggers a
// single token refresh followed by one retry with the new credential.
func (c *Client) do(ctx context.Context, method, requestURL string, body []byte) (int, []byte, error) {
	token := c.token()

	status, respBody, err := c.send(ctx, method, requestURL, body, token)
	if err != nil {
		return 0, nil, err
	}

	if status != http.StatusUnauthorized {
		return status, respBody, nil
	}

	refreshed, err := c.refreshAccessToken(ctx, token)
	if err != nil {
		return 0, nil, err
	}

	return c.send(ctx, method, requestURL, body, refreshed)
}

func (c *Client) send(ctx context.Context, method, requestURL string, body []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return 0, nil, &domain.GatewayError{Message: fmt.Sprintf("building request: %v", err)}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &domain.GatewayError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &domain.GatewayError{Message: fmt.Sprintf("reading response: %v", err)}
	}

	return resp.StatusCode, respBody, nil
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// refreshAccessToken exchanges the refresh token for a new access token.
// usedToken is the credential the caller just saw rejected; when another
// caller already refreshed while we waited on the lock, that newer token is
// returned without a second exchange.
//
// Refresh failures deliberately carry no HTTP status. A lapsed credential
// says nothing about the transfer itself, so the billing passes must treat
// it as retryable rather than failing disbursements permanently.
func (c *Client) refreshAccessToken(ctx context.Context, usedToken string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != usedToken && c.accessToken != "" {
		return c.accessToken, nil
	}

	if c.refreshToken == "" {
		return "", &domain.GatewayError{Message: "access token rejected and no refresh token available"}
	}
	if c.clientID == "" || c.clientSecret == "" {
		return "", &domain.GatewayError{Message: "client credentials required for token refresh"}
	}

	c.logger.Info("refreshing hcb access token")

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.GatewayError{Message: fmt.Sprintf("building token refresh request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.GatewayError{Message: fmt.Sprintf("token refresh failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.GatewayError{Message: fmt.Sprintf("reading token refresh response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.GatewayError{Message: fmt.Sprintf("token refresh rejected with status %d", resp.StatusCode)}
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(respBody, &tokens); err != nil {
		return "", &domain.GatewayError{Message: fmt.Sprintf("decoding token refresh response: %v", err)}
	}
	if tokens.AccessToken == "" {
		return "", &domain.GatewayError{Message: "token refresh response missing access_token"}
	}

	c.accessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.refreshToken = tokens.RefreshToken
	}

	c.logger.Info("hcb access token refreshed")

	return c.accessToken, nil
}

func errorFromResponse(status int, body []byte) *domain.GatewayError {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}

	if detail == "" {
		return &domain.GatewayError{Message: "unexpected response", StatusCode: status}
	}

	return &domain.GatewayError{Message: "unexpected response: " + detail, StatusCode: status}
}
