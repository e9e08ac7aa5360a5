// Package assetapi is the HTTP JSON client for the remote asset service.
//
// Every call is a single request: no retries, no caching. Callers decide what
// a failure means for the page.
package assetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetmix/internal/core"
	"assetmix/internal/log"
)

const maxErrorBody = 512

// Client talks to the asset service under its /api base path.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *log.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAssetAPI) }
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// New creates a client for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse asset api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("asset api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    u,
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListAssets fetches every asset (GET /assets).
func (c *Client) ListAssets(ctx context.Context) ([]core.Asset, error) {
	var assets []core.Asset
	if err := c.do(ctx, http.MethodGet, "/assets", nil, &assets); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

type createAssetRequest struct {
	AssetType core.AssetType `json:"assetType"`
	Name      string         `json:"name"`
	Amount    json.Number    `json:"amount"`
}

// CreateAsset stores a new asset (POST /assets) and returns what the service
// saved.
func (c *Client) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	req := createAssetRequest{
		AssetType: a.Type,
		Name:      a.Name,
		Amount:    json.Number(a.Amount.String()),
	}
	var created core.Asset
	if err := c.do(ctx, http.MethodPost, "/assets", req, &created); err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	return created, nil
}

// Recommendation fetches the target allocation (GET /calculate/recommendation).
func (c *Client) Recommendation(ctx context.Context) (core.Recommendation, error) {
	var rec core.Recommendation
	if err := c.do(ctx, http.MethodGet, "/calculate/recommendation", nil, &rec); err != nil {
		return core.Recommendation{}, fmt.Errorf("fetch recommendation: %w", err)
	}
	return rec, nil
}

// CreateSnapshot asks the service to persist the current holdings as a new
// history record (POST /records, no body).
func (c *Client) CreateSnapshot(ctx context.Context) (core.HistoryRecord, error) {
	var rec core.HistoryRecord
	if err := c.do(ctx, http.MethodPost, "/records", nil, &rec); err != nil {
		return core.HistoryRecord{}, fmt.Errorf("create snapshot: %w", err)
	}
	return rec, nil
}

// ListRecords fetches all history records, newest first (GET /records).
func (c *Client) ListRecords(ctx context.Context) ([]core.HistoryRecord, error) {
	var records []core.HistoryRecord
	if err := c.do(ctx, http.MethodGet, "/records", nil, &records); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Ping checks that the service answers the asset listing.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/assets", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Asset service request failed",
			log.FieldMethod, method,
			log.FieldPath, path,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork)
		return err
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Asset service responded",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty 2xx body: leave out at its zero value.
			return nil
		}
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
