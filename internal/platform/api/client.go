package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	log "m2b4a/pkg/log"
	"m2b4a/pkg/version"
)

const (
	// DefaultDashboardURL hosts the account and application management API.
	DefaultDashboardURL = "https://dashboard.back4app.com"
	// DefaultParseURL is the public Parse Server endpoint of hosted applications.
	DefaultParseURL = "https://parseapi.back4app.com"
	// DefaultFilesURL accepts file uploads on behalf of an application.
	DefaultFilesURL = "http://s3proxy.back4app.com"
	// DefaultTimeout bounds every control call. Uploads are bounded by the
	// caller's context only.
	DefaultTimeout = 30 * time.Second

	appDescription = "Created using m2b4a"
	maxErrorBody   = 512
)

// Endpoints groups the base URLs the client talks to.
type Endpoints struct {
	Dashboard string
	Parse     string
	Files     string
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Dashboard: DefaultDashboardURL,
		Parse:     DefaultParseURL,
		Files:     DefaultFilesURL,
	}
}

// Client issues calls to the platform's control API. It holds no session:
// every call receives the credential or key bag it needs.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-call timeout of control calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a new control API client.
func NewClient(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		endpoints:  trimEndpoints(endpoints),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  "m2b4a/" + version.GetVersion(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func trimEndpoints(e Endpoints) Endpoints {
	return Endpoints{
		Dashboard: strings.TrimRight(e.Dashboard, "/"),
		Parse:     strings.TrimRight(e.Parse, "/"),
		Files:     strings.TrimRight(e.Files, "/"),
	}
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Body       []byte
	Cookies    []*http.Cookie
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.New().String())
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send performs the request and reads the whole body. Transport failures are
// returned as *APIError for op.
func (c *Client) send(op string, req *http.Request) (*response, error) {
	log.Debug("Sending control request", "op", op, "method", req.Method, "url", req.URL.String(),
		"request_id", req.Header.Get("X-Request-Id"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	log.Debug("Control response", "op", op, "status", resp.StatusCode, "bytes", len(body))

	return &response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Cookies:    resp.Cookies(),
	}, nil
}

// withTimeout derives the per-call context of a control call.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "…"
	}
	return s
}
