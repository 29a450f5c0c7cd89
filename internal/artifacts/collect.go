package artifacts

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 2 * 1024 * 1024
	defaultUserAgent    = "pageaudit/1.0"
)

// Collector fetches a page over HTTP(S) and extracts the artifact
// bundle the audits consume.
type Collector struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Client       *http.Client // optional override, used by tests
}

// Collect fetches target, follows redirects, and returns the artifact
// bundle for the final page.
func (c *Collector) Collect(ctx context.Context, target string) (*Bundle, error) {
	fullURL := NormalizeTarget(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", target, err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %q: unexpected status %d", fullURL, resp.StatusCode)
	}

	maxBytes := c.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %q: %w", fullURL, err)
	}

	// The URL after redirects is the page the anchors belong to.
	finalURL := fullURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Bundle{
		RequestedURL: target,
		FinalURL:     finalURL,
		Headers:      resp.Header.Clone(),
		Anchors:      ExtractAnchors(finalURL, bytes.NewReader(body)),
		FetchedAt:    time.Now().UTC(),
	}, nil
}

func (c *Collector) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

func (c *Collector) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return defaultUserAgent
}

// NormalizeTarget turns bare hostnames like "example.com" into a full
// URL suitable for an HTTP request. Inputs that already carry a scheme
// pass through untouched.
func NormalizeTarget(target string) string {
	trimmed := strings.TrimSpace(target)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		return "http://" + trimmed
	}
	return trimmed
}
