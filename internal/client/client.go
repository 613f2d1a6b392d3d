// Package client is the HTTP client for the Deals API.
//
// Every call sends JSON content negotiation headers and carries credentials: the
// client's own cookie jar, plus any cookies attached to the context with WithCookies.
// Calls are never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/hyperjump/dealbrief/internal/metrics"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/query"
)

const (
	dealsPath = "/api/deals/"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

// Messages surfaced to users.
const (
	MsgListFailed   = "Failed to fetch deals"
	MsgCreateFailed = "Failed to create deal."
	MsgNetwork      = "Network error. Please try again."
	MsgNotFound     = "Deal not found"
)

var (
	// ErrNotFound is returned by FetchOne for any non-success response.
	ErrNotFound = errors.New(MsgNotFound)
	// ErrTransport wraps failures that happened before a response was received.
	ErrTransport = errors.New("transport failure")
)

// APIError is a non-success response from the Deals API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deals api: %d: %s", e.Status, e.Message)
}

// Client talks to one Deals API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its cookie jar, if any, is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets a logger for debug output of each call.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records call outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a client for baseURL (e.g. "http://localhost:8000").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout, Jar: jar},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL (no trailing slash).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

type cookiesKey struct{}

// WithCookies attaches cookies to be sent with every call made with ctx.
// The web dashboard uses it to forward the browser's session to the API.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	if len(cookies) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

// FetchList returns one page of deals matching p.
func (c *Client) FetchList(ctx context.Context, p models.ListParams) (*models.DealPage, error) {
	body, err := c.get(ctx, "fetch_list", dealsPath+query.RequestQuery(p))
	if err != nil {
		return nil, err
	}
	page, err := decodeList(body)
	if err != nil {
		c.observe("fetch_list", "decode_error")
		return nil, fmt.Errorf("decode deal list: %w", err)
	}
	c.observe("fetch_list", "ok")
	return page, nil
}

// FetchAll returns every deal from the unfiltered list route.
func (c *Client) FetchAll(ctx context.Context) ([]*models.Deal, error) {
	body, err := c.get(ctx, "fetch_all", dealsPath)
	if err != nil {
		return nil, err
	}
	page, err := decodeList(body)
	if err != nil {
		c.observe("fetch_all", "decode_error")
		return nil, fmt.Errorf("decode deal list: %w", err)
	}
	c.observe("fetch_all", "ok")
	return page.Results, nil
}

// FetchOne returns the deal with the given id. Any non-success status is ErrNotFound.
func (c *Client) FetchOne(ctx context.Context, id string) (*models.Deal, error) {
	body, err := c.get(ctx, "fetch_one", dealsPath+url.PathEscape(id)+"/")
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var deal models.Deal
	if err := json.Unmarshal(body, &deal); err != nil {
		c.observe("fetch_one", "decode_error")
		return nil, fmt.Errorf("decode deal: %w", err)
	}
	c.observe("fetch_one", "ok")
	return &deal, nil
}

// CreateDeal submits rawText as a new deal. A non-success status yields an *APIError
// whose Message is the server's error string, or MsgCreateFailed when none was sent.
func (c *Client) CreateDeal(ctx context.Context, rawText string) (*models.Deal, error) {
	payload, err := json.Marshal(models.DealInput{RawText: rawText})
	if err != nil {
		return nil, fmt.Errorf("marshal deal input: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, dealsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	status, body, err := c.do("create", req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		msg := serverMessage(body)
		if msg == "" {
			msg = MsgCreateFailed
		}
		c.observe("create", "status_"+statusClass(status))
		return nil, &APIError{Status: status, Message: msg}
	}
	var deal models.Deal
	if err := json.Unmarshal(body, &deal); err != nil {
		c.observe("create", "decode_error")
		return nil, fmt.Errorf("decode created deal: %w", err)
	}
	c.observe("create", "ok")
	return &deal, nil
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	status, body, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		c.observe(op, "status_"+statusClass(status))
		msg := MsgListFailed
		if op == "fetch_one" {
			msg = MsgNotFound
		}
		return nil, &APIError{Status: status, Message: msg}
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cookies, ok := ctx.Value(cookiesKey{}).([]*http.Cookie); ok {
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
	}
	return req, nil
}

func (c *Client) do(op string, req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, "transport_error")
		c.logger.Debug("deals api call failed",
			zap.String("op", op), zap.String("url", req.URL.String()), zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(op, "transport_error")
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	c.logger.Debug("deals api call",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *Client) observe(op, outcome string) {
	c.metrics.ObserveClientCall(op, outcome)
}

// decodeList accepts both the paginated envelope and a bare array of deals.
func decodeList(body []byte) (*models.DealPage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var deals []*models.Deal
		if err := json.Unmarshal(trimmed, &deals); err != nil {
			return nil, err
		}
		return &models.DealPage{Count: len(deals), Results: deals}, nil
	}
	var page models.DealPage
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []*models.Deal{}
	}
	return &page, nil
}

func serverMessage(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

// UserMessage maps a client error to the message shown to users.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return MsgNetwork
	case errors.Is(err, ErrNotFound):
		return MsgNotFound
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return fallback
}
