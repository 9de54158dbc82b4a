package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/byteowlz/strle/internal/filetype"
)

const acceptHeader = "application/json, text/csv;q=0.9, text/plain;q=0.8, */*;q=0.5"

type FetchOptions struct {
	Timeout         time.Duration
	UserAgent       string
	BrowserAgent    string
	Cookies         []*http.Cookie
	FollowRedirects bool
}

// Response is an open remote source whose body the caller must close
type Response struct {
	Body        io.ReadCloser
	URL         string
	ContentType string
	Format      string
	// ContentLength is -1 when the server did not announce a length.
	ContentLength int64
}

// HTTPError reports a non-success status from a remote source
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error fetching %s: %s", e.URL, e.Status)
}

type RemoteFetcher struct {
	client          *http.Client
	userAgentSelect *UserAgentSelector
}

func NewRemoteFetcher() *RemoteFetcher {
	return &RemoteFetcher{
		client:          &http.Client{},
		userAgentSelect: NewUserAgentSelector(),
	}
}

// Open issues the request and hands back the unread body, so large CSV
// sources can be streamed. The timeout, when set, covers reading the body.
func (rf *RemoteFetcher) Open(ctx context.Context, rawURL string, opts FetchOptions) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Custom user agent takes precedence over the browser agent selector
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = rf.userAgentSelect.GetUserAgent(opts.BrowserAgent)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	for _, cookie := range opts.Cookies {
		req.AddCookie(cookie)
	}

	client := rf.client
	if !opts.FollowRedirects {
		noRedirect := *rf.client
		noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &noRedirect
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	contentType := resp.Header.Get("Content-Type")
	finalURL := resp.Request.URL
	return &Response{
		Body:          &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
		URL:           finalURL.String(),
		ContentType:   contentType,
		Format:        DetectFormat(contentType, finalURL.Path),
		ContentLength: resp.ContentLength,
	}, nil
}

// DetectFormat prefers the media type and falls back to the path extension
func DetectFormat(contentType, urlPath string) string {
	if format := filetype.FromContentType(contentType); format != "" {
		return format
	}
	return filetype.DetectURL(urlPath)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
