package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Source defines the remote operations the browser needs.
// This interface is implemented by *Client and can be used for testing.
type Source interface {
	FetchTemplates(ctx context.Context, opts FetchOptions) (*CatalogResponse, error)
	MarkFavorite(ctx context.Context, id TemplateID, favorite bool) error
}

// Ensure Client implements Source at compile time.
var _ Source = (*Client)(nil)

// Client talks to the Style Kits REST API of a WordPress site.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	username  string
	password  string
	logger    *zap.Logger
	titles    *bluemonday.Policy
}

const (
	defaultSiteURL   = "http://localhost"
	defaultUserAgent = "stylekit/0.1"
	requestTimeout   = 10 * time.Second

	apiPrefix         = "/wp-json/agwp/v1"
	templatesPath     = apiPrefix + "/templates/"
	markFavoritePath  = apiPrefix + "/mark_favorite/"
	requestIDHeader   = "X-Request-ID"
	forceUpdateParam  = "force_update"
	maxErrorBodyBytes = 512
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCredentials enables basic auth, typically a WordPress application password.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = strings.TrimSpace(username)
		c.password = strings.TrimSpace(password)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the site at siteURL.
func NewClient(siteURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(siteURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
		titles:    bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchOptions configures template list requests.
type FetchOptions struct {
	// ForceUpdate asks the server to bypass its cached copy of the library.
	ForceUpdate bool
}

// FetchTemplates retrieves the full template library.
func (c *Client) FetchTemplates(ctx context.Context, opts FetchOptions) (*CatalogResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if opts.ForceUpdate {
		values.Set(forceUpdateParam, "true")
	}
	var payload CatalogResponse
	if err := c.do(ctx, http.MethodGet, templatesPath, values, nil, &payload); err != nil {
		return nil, err
	}
	for i := range payload.Templates {
		payload.Templates[i].Title = c.plainTitle(payload.Templates[i].Title)
	}
	return &payload, nil
}

type markFavoriteRequest struct {
	TemplateID TemplateID `json:"template_id"`
	Favorite   bool       `json:"favorite"`
}

// MarkFavorite records or clears a favorite for the current user.
func (c *Client) MarkFavorite(ctx context.Context, id TemplateID, favorite bool) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("template id required")
	}
	body := markFavoriteRequest{TemplateID: id, Favorite: favorite}
	return c.do(ctx, http.MethodPost, markFavoritePath, nil, body, nil)
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	reqURL := *c.baseURL
	reqURL.Path = strings.TrimSuffix(c.baseURL.Path, "/") + path
	reqURL.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("library request failed", zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("library response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		statusErr := &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		log.Warn("library request rejected", zap.Int("status", resp.StatusCode))
		return statusErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		log.Warn("library response undecodable", zap.Error(err))
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// plainTitle strips markup from WordPress-rendered titles and decodes entities.
func (c *Client) plainTitle(title string) string {
	cleaned := c.titles.Sanitize(title)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func parseBaseURL(siteURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(siteURL)
	if trimmed == "" {
		trimmed = defaultSiteURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse site_url %q: %w", siteURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse site_url %q: missing host", siteURL)
	}
	// Sites installed in a subdirectory keep their path prefix.
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
