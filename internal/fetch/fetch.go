package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pip3-kill-me/ebay-scraper/internal/ratelimit"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:91.0) Gecko/20100101 Firefox/91.0"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage   = "en-US,en;q=0.5"
)

// Client fetches marketplace pages over HTTP. A randomized courtesy delay is
// enforced before every request, and repeated failures stretch the delay.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.AdaptiveRateLimiter
	userAgent  string
	logger     *slog.Logger
}

type Options struct {
	Timeout   time.Duration
	DelayMin  time.Duration
	DelayMax  time.Duration
	UserAgent string
	Logger    *slog.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    ratelimit.NewAdaptiveRateLimiter(opts.DelayMin, opts.DelayMax),
		userAgent:  opts.UserAgent,
		logger:     opts.Logger.With("component", "fetcher"),
	}
}

// Fetch retrieves the page at url. It blocks for the courtesy delay first, so
// callers must treat every fetch as potentially slow.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	c.logger.Debug("fetching page", "url", truncateURL(url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.limiter.RecordError()
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.limiter.RecordError()
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.limiter.RecordError()
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	c.limiter.RecordSuccess()
	return string(body), nil
}

func truncateURL(url string) string {
	if len(url) > 75 {
		return url[:75] + "..."
	}
	return url
}
