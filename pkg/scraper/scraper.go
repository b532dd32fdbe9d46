// Package scraper fetches pages from the Intralism ranking site and extracts
// their tables
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/myusername/intralism-score-checker/pkg/metrics"
	"github.com/myusername/intralism-score-checker/pkg/models"
)

// DefaultBaseURL is the ranking site root
const DefaultBaseURL = "https://intralism.khb-soft.ru/"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "intralism-score-checker"
	maxRedirects     = 10
)

// Page kinds, used for metrics and snapshot names
const (
	kindProfile = "profile"
	kindRanks   = "ranks"
	kindSearch  = "search"
)

// Client reads the ranking site. It implements models.Gateway and is safe
// for concurrent use.
type Client struct {
	baseURL     string
	userAgent   string
	timeout     time.Duration
	snapshotDir string
	client      *fasthttp.Client
	metrics     *metrics.Manager
	logger      zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithSnapshotDir saves every fetched page under dir
func WithSnapshotDir(dir string) Option {
	return func(c *Client) {
		c.snapshotDir = dir
	}
}

// WithMetrics records request counts and latencies
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the client's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the site rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		timeout:   defaultTimeout,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &fasthttp.Client{
		Name:                c.userAgent,
		MaxConnsPerHost:     16,
		ReadTimeout:         c.timeout,
		WriteTimeout:        c.timeout,
		MaxIdleConnDuration: time.Minute,
	}
	return c
}

// FetchProfilePage downloads a player's profile page and extracts its fields
func (c *Client) FetchProfilePage(ctx context.Context, link string) (*models.ProfilePage, error) {
	htmlContent, err := c.FetchURL(ctx, kindProfile, link)
	if err != nil {
		return nil, err
	}
	return ParseProfilePage(htmlContent)
}

// FetchRankPage downloads one page of the global ranking
func (c *Client) FetchRankPage(ctx context.Context, page int) ([]models.Row, error) {
	if page < 1 {
		return nil, models.NewError("scraper.FetchRankPage", models.ErrInvalidInput, "rank page %d", page)
	}
	htmlContent, err := c.FetchURL(ctx, kindRanks, c.baseURL+"?page=ranks&n="+strconv.Itoa(page))
	if err != nil {
		return nil, err
	}
	return ParseRankRows(htmlContent, c.baseURL)
}

// SearchPlayer returns the profile link of the first player matching query
func (c *Client) SearchPlayer(ctx context.Context, query string) (string, error) {
	htmlContent, err := c.FetchURL(ctx, kindSearch, c.baseURL+"?page=ranks&search="+url.QueryEscape(query))
	if err != nil {
		return "", err
	}
	rows, err := ParseRankRows(htmlContent, c.baseURL)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", models.NewError("scraper.SearchPlayer", models.ErrNotFound, "no player matches %q", query)
	}
	if rows[0].Link == "" {
		return "", models.NewError("scraper.SearchPlayer", models.ErrDataFormat, "first result for %q has no profile link", query)
	}
	return rows[0].Link, nil
}

// FetchURL downloads the HTML content of a page and returns it as a string
func (c *Client) FetchURL(ctx context.Context, kind, pageURL string) (string, error) {
	const op = "scraper.FetchURL"

	if err := ctx.Err(); err != nil {
		return "", models.WrapError(op, models.ErrFetch, err, "%s", pageURL)
	}

	c.logger.Debug().Str("kind", kind).Str("url", pageURL).Msg("fetching page")

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(pageURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := c.doFollowingRedirects(req, resp, deadline)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(kind, metrics.StatusError, elapsed)
		return "", models.WrapError(op, models.ErrFetch, err, "%s", pageURL)
	}

	status := resp.StatusCode()
	c.logger.Debug().
		Str("url", pageURL).
		Int("status", status).
		Dur("elapsed", elapsed).
		Int("bytes", len(resp.Body())).
		Msg("page fetched")

	switch {
	case status == fasthttp.StatusNotFound:
		c.metrics.ObserveRequest(kind, metrics.StatusNotFound, elapsed)
		return "", models.NewError(op, models.ErrNotFound, "%s: status %d", pageURL, status)
	case status != fasthttp.StatusOK:
		c.metrics.ObserveRequest(kind, metrics.StatusError, elapsed)
		return "", models.NewError(op, models.ErrFetch, "%s: status %d", pageURL, status)
	}
	c.metrics.ObserveRequest(kind, metrics.StatusOK, elapsed)

	content := string(resp.Body())
	if c.snapshotDir != "" {
		path := filepath.Join(c.snapshotDir, SnapshotName(kind, pageURL))
		if err := SaveContentToFile(path, content); err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("failed to save page snapshot")
		}
	}

	return content, nil
}

// doFollowingRedirects sends req, following up to maxRedirects redirects,
// all within the same deadline
func (c *Client) doFollowingRedirects(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error {
	for redirects := 0; ; redirects++ {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return err
		}
		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			return nil
		}
		if redirects == maxRedirects {
			return fasthttp.ErrTooManyRedirects
		}
		location := resp.Header.Peek(fasthttp.HeaderLocation)
		if len(location) == 0 {
			return fasthttp.ErrMissingLocation
		}
		c.logger.Debug().
			Str("from", req.URI().String()).
			Bytes("location", location).
			Msg("following redirect")
		req.URI().UpdateBytes(location)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SnapshotName derives a file name for a fetched page from its kind and query
func SnapshotName(kind, pageURL string) string {
	query := pageURL
	if i := strings.Index(pageURL, "?"); i >= 0 {
		query = pageURL[i+1:]
	}
	query = strings.Trim(unsafeFileChars.ReplaceAllString(query, "_"), "_")
	if query == "" {
		return kind + ".html"
	}
	return fmt.Sprintf("%s_%s.html", kind, query)
}

// SaveContentToFile saves content to a file, creating its directory
func SaveContentToFile(filename string, content string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

// ResolveRelativeURL resolves a relative URL against the site base URL
func ResolveRelativeURL(baseURL, relativeURL string) string {
	// Check if the relative URL is already an absolute URL
	if strings.HasPrefix(relativeURL, "http://") || strings.HasPrefix(relativeURL, "https://") {
		return relativeURL
	}

	// Fix protocol in base URL if needed
	if !strings.HasPrefix(baseURL, "https://") && !strings.HasPrefix(baseURL, "http://") {
		baseURL = "https://" + baseURL
	}

	// Get base directory by removing the filename component
	baseDir := baseURL
	lastSlashIndex := strings.LastIndex(baseURL, "/")
	if lastSlashIndex > len("https://") && lastSlashIndex < len(baseURL)-1 {
		baseDir = baseURL[:lastSlashIndex+1]
	} else if !strings.HasSuffix(baseDir, "/") {
		baseDir += "/"
	}

	// Site links are written as "./?page=..." or "/?page=..."
	return baseDir + strings.TrimLeft(relativeURL, "./")
}
