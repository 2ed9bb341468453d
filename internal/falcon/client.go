// Package falcon implements a minimal CrowdStrike Falcon API client
// covering the Intel combined query endpoints. Authentication uses the
// OAuth2 client credentials flow; tokens are fetched and refreshed
// transparently, so callers never handle authentication state.
package falcon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultBaseURL is the US-1 CrowdStrike API region.
const DefaultBaseURL = "https://api.crowdstrike.com"

const defaultTimeout = 30 * time.Second

const (
	tokenPath      = "/oauth2/token"
	actorsPath     = "/intel/combined/actors/v1"
	indicatorsPath = "/intel/combined/indicators/v1"
)

// RequestRecorder observes completed upstream calls. The metrics
// manager implements it; a nil recorder disables observation.
type RequestRecorder interface {
	RecordUpstreamRequest(operation string, statusCode int)
}

// Config holds credentials and connection settings for the Falcon API.
type Config struct {
	ClientID     string
	ClientSecret string
	// BaseURL selects the API region. Defaults to DefaultBaseURL.
	BaseURL string
	// Timeout applies to each HTTP request, token fetches included.
	Timeout   time.Duration
	UserAgent string
}

// Client is an authenticated Falcon Intel API client. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	oauth      clientcredentials.Config
	base       *http.Client
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	recorder   RequestRecorder
}

// NewClient builds a client from config. Credentials are not verified
// here; call Login to force a token fetch before serving traffic.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("falcon client ID and client secret are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// The token endpoint wants client_id/client_secret form-encoded in
	// the request body, not HTTP basic auth.
	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// The oauth2 transport does not forward CloseIdleConnections, so the
	// base client gets its own transport that both token fetches and API
	// calls ride on.
	base := &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	httpClient := oauthCfg.Client(tokenCtx)
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    baseURL,
		oauth:      oauthCfg,
		base:       base,
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}, nil
}

// SetRecorder attaches a metrics recorder to the client. Must be called
// before the client starts serving requests.
func (c *Client) SetRecorder(r RequestRecorder) {
	c.recorder = r
}

// BaseURL returns the API base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login fetches an access token, verifying the credentials against the
// token endpoint. The transport keeps its own token cache, so this is
// purely a startup check.
func (c *Client) Login(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	tok, err := c.oauth.Token(ctx)
	if err != nil {
		return fmt.Errorf("falcon authentication failed: %w", err)
	}
	if !tok.Valid() {
		return fmt.Errorf("falcon authentication failed: received an expired token")
	}
	c.logger.Debug("Falcon API authentication succeeded", "base_url", c.baseURL)
	return nil
}

// QueryActorEntities runs a combined threat actor query returning full
// actor records.
func (c *Client) QueryActorEntities(ctx context.Context, opts QueryOptions) (*Response, error) {
	return c.get(ctx, "query_actor_entities", actorsPath, opts.values())
}

// QueryIndicatorEntities runs a combined indicator query returning full
// IOC records.
func (c *Client) QueryIndicatorEntities(ctx context.Context, opts QueryOptions) (*Response, error) {
	return c.get(ctx, "query_indicator_entities", indicatorsPath, opts.values())
}

// get performs an authenticated GET and decodes the JSON body whatever
// the status. Transport failures and undecodable bodies are Go errors;
// HTTP error statuses come back as a Response for the caller to
// classify.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values) (*Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("falcon request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	body := Dict{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	if c.recorder != nil {
		c.recorder.RecordUpstreamRequest(operation, resp.StatusCode)
	}

	c.logger.Debug("Falcon API call",
		"operation", operation,
		"status", resp.StatusCode,
		"trace_id", resp.Header.Get("X-Cs-Traceid"))

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// values renders the options as query parameters, omitting zero values.
func (o QueryOptions) values() url.Values {
	v := url.Values{}
	if o.Filter != "" {
		v.Set("filter", o.Filter)
	}
	if o.Q != "" {
		v.Set("q", o.Q)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Limit != 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset != 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	return v
}
