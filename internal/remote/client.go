// Package remote fetches the read-only remote book collection over HTTP.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// DefaultBaseURL is the public test API the inventory was built against.
const DefaultBaseURL = "https://freetestapi.com/api/v1"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client talks to GET <base>/books and GET <base>/books/{id}.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves the HTTP client's own
// timeout in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for skipped remote records.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for baseURL, e.g. "https://host/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("remote base URL must not be empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse remote base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// List fetches the remote collection. A body that is not a JSON array is
// treated as an empty collection; array elements that are not book objects
// are skipped.
func (c *Client) List(ctx context.Context) ([]types.Book, error) {
	body, status, err := c.get(ctx, c.base.JoinPath("books"))
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: list books: status %d", types.ErrRemoteUnavailable, status)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Debug("remote list body is not an array; treating as empty")
		return []types.Book{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: decode book list: %v", types.ErrRemoteUnavailable, err)
	}

	books := make([]types.Book, 0, len(elems))
	for i, elem := range elems {
		var b types.Book
		if err := json.Unmarshal(elem, &b); err != nil || isNullJSON(elem) {
			c.logger.Debug("skipping malformed remote book", zap.Int("index", i), zap.Error(err))
			continue
		}
		books = append(books, b)
	}
	return books, nil
}

// Get fetches one remote book. A 404 wraps types.ErrNotFound; any other
// failure wraps types.ErrRemoteUnavailable.
func (c *Client) Get(ctx context.Context, id string) (types.Book, error) {
	if id == "" {
		return types.Book{}, types.ErrInvalidID
	}

	body, status, err := c.get(ctx, c.bookURL(id))
	if err != nil {
		return types.Book{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return types.Book{}, fmt.Errorf("remote book %q: %w", id, types.ErrNotFound)
	case status < 200 || status > 299:
		return types.Book{}, fmt.Errorf("%w: get book %q: status %d", types.ErrRemoteUnavailable, id, status)
	}

	var b types.Book
	if err := json.Unmarshal(body, &b); err != nil || isNullJSON(body) {
		return types.Book{}, fmt.Errorf("%w: decode book %q: %v", types.ErrRemoteUnavailable, id, err)
	}
	return b, nil
}

// bookURL returns <base>/books/{id} with id as a single escaped segment.
// Dot segments are percent-encoded so they are not resolved against the
// base path.
func (c *Client) bookURL(id string) *url.URL {
	seg := url.PathEscape(id)
	if id == "." || id == ".." {
		seg = strings.Repeat("%2E", len(id))
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/books/" + id
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/books/" + seg
	return &u
}

func (c *Client) get(ctx context.Context, u *url.URL) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request: %v", types.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", types.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", types.ErrRemoteUnavailable, err)
	}
	return body, resp.StatusCode, nil
}

func isNullJSON(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
