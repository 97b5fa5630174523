// Package ogimet retrieves SYNOP bulletin exports from the ogimet.com text interface.
package ogimet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/synop-etl/internal/config"
	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/observability"
)

// The export page rejects requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	defaultRetryDelay = 2 * time.Second
	maxBodyBytes      = 32 << 20
)

// ErrNoPreBlock is returned when a response carries no <pre> section.
var ErrNoPreBlock = errors.New("no <pre> block in response")

var (
	preOpenRe  = regexp.MustCompile(`(?i)<pre>`)
	preCloseRe = regexp.MustCompile(`(?i)</pre>`)
)

// Client fetches bulletins for a country and time window.
type Client struct {
	baseURL    string
	country    string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an ogimet client from service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.OgimetBaseURL,
		country:    cfg.OgimetCountry,
		maxRetries: cfg.OgimetMaxRetries,
		retryDelay: defaultRetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.OgimetTimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// URL builds the export address for a window. A single-hour window is
// widened by the server to ±30 minutes.
func (c *Client) URL(w domain.Window) string {
	start, end := w.Start.UTC(), w.End.UTC()
	params := url.Values{
		"lang":   {"en"},
		"estado": {c.country},
		"tipo":   {"ALL"},
		"ord":    {"REV"},
		"nil":    {"SI"},
		"fmt":    {"txt"},
		"ano":    {strconv.Itoa(start.Year())},
		"mes":    {strconv.Itoa(int(start.Month()))},
		"day":    {strconv.Itoa(start.Day())},
		"hora":   {strconv.Itoa(start.Hour())},
		"anof":   {strconv.Itoa(end.Year())},
		"mesf":   {strconv.Itoa(int(end.Month()))},
		"dayf":   {strconv.Itoa(end.Day())},
		"horaf":  {strconv.Itoa(end.Hour())},
		"send":   {"send"},
	}
	return c.baseURL + "?" + params.Encode()
}

// FetchBulletin downloads the bulletin for w, retrying transport and status
// failures with a linearly growing delay.
func (c *Client) FetchBulletin(ctx context.Context, w domain.Window) (domain.Bulletin, error) {
	u := c.URL(w)

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, err := c.doRequest(ctx, u)
		if err == nil {
			return c.parse(w, body)
		}
		lastErr = err
		if ctx.Err() != nil {
			return domain.Bulletin{}, ctx.Err()
		}

		c.logger.Warn("bulletin fetch failed",
			"attempt", attempt,
			"max_attempts", c.maxRetries,
			"window", w.String(),
			"error", err,
		)
		if attempt == c.maxRetries {
			break
		}
		if !retry.SleepWithContext(ctx, c.retryDelay*time.Duration(attempt)) {
			return domain.Bulletin{}, ctx.Err()
		}
	}
	return domain.Bulletin{}, fmt.Errorf("fetch bulletin %s after %d attempts: %w", w, c.maxRetries, lastErr)
}

func (c *Client) parse(w domain.Window, body string) (domain.Bulletin, error) {
	text, truncated, err := ExtractPre(body)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.Bulletin{}, fmt.Errorf("parse bulletin %s: %w", w, err)
	}
	if truncated {
		c.logger.Warn("closing </pre> not found, bulletin may be truncated", "window", w.String())
	}
	if text == "" {
		c.metrics.FetchRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.FetchRequests.WithLabelValues("success").Inc()
	}
	return domain.NewBulletin(w, text), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (string, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("bulletin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ogimet error: status %d: %s", resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.ToValidUTF8(string(body), "�"), nil
}

// ExtractPre returns the trimmed text inside the first <pre> element. A
// missing closing tag keeps everything after the opening tag and reports
// truncated.
func ExtractPre(html string) (text string, truncated bool, err error) {
	open := preOpenRe.FindStringIndex(html)
	if open == nil {
		return "", false, ErrNoPreBlock
	}
	rest := html[open[1]:]
	closing := preCloseRe.FindStringIndex(rest)
	if closing == nil {
		return strings.TrimSpace(rest), true, nil
	}
	return strings.TrimSpace(rest[:closing[0]]), false, nil
}
