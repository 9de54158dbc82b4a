package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// readAll opens rawURL, drains the body and closes it
func readAll(t *testing.T, rf *RemoteFetcher, rawURL string, opts FetchOptions) (*Response, string, error) {
	t.Helper()
	resp, err := rf.Open(context.Background(), rawURL, opts)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body), nil
}

func TestRemoteFetcher_Open_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if !strings.Contains(r.Header.Get("Accept"), "application/json") {
			t.Errorf("unexpected Accept header %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("User-Agent") != "custom-agent" {
			t.Errorf("expected custom user agent, got %q", r.Header.Get("User-Agent"))
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "abc" {
			t.Errorf("expected session cookie, got %v (%v)", c, err)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"greeting":"hello"}`))
	}))
	defer server.Close()

	resp, body, err := readAll(t, NewRemoteFetcher(), server.URL+"/data", FetchOptions{
		UserAgent:       "custom-agent",
		Cookies:         []*http.Cookie{{Name: "session", Value: "abc"}},
		FollowRedirects: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `{"greeting":"hello"}` {
		t.Errorf("unexpected body %q", body)
	}
	if resp.Format != "json" {
		t.Errorf("expected format 'json', got %q", resp.Format)
	}
	if resp.ContentLength != int64(len(body)) {
		t.Errorf("expected content length %d, got %d", len(body), resp.ContentLength)
	}
}

func TestRemoteFetcher_Open_FormatFromPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("a,b\n"))
	}))
	defer server.Close()

	resp, _, err := readAll(t, NewRemoteFetcher(), server.URL+"/exports/list.CSV", FetchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Format != "csv" {
		t.Errorf("expected format 'csv', got %q", resp.Format)
	}
}

func TestRemoteFetcher_Open_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewRemoteFetcher().Open(context.Background(), server.URL, FetchOptions{})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.StatusCode)
	}
}

func TestRemoteFetcher_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.json", http.StatusFound)
	})
	mux.HandleFunc("/new.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["moved"]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rf := NewRemoteFetcher()

	resp, body, err := readAll(t, rf, server.URL+"/old", FetchOptions{FollowRedirects: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `["moved"]` {
		t.Errorf("unexpected body %q", body)
	}
	if !strings.HasSuffix(resp.URL, "/new.json") {
		t.Errorf("expected final URL, got %q", resp.URL)
	}
	if resp.Format != "json" {
		t.Errorf("expected format from final path, got %q", resp.Format)
	}

	_, err = rf.Open(context.Background(), server.URL+"/old", FetchOptions{FollowRedirects: false})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusFound {
		t.Errorf("expected 302 HTTPError without redirects, got %v", err)
	}
}

func TestRemoteFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, _, err := readAll(t, NewRemoteFetcher(), server.URL, FetchOptions{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestRemoteFetcher_UnsupportedScheme(t *testing.T) {
	_, err := NewRemoteFetcher().Open(context.Background(), "ftp://example.com/data.csv", FetchOptions{})
	if err == nil || !strings.Contains(err.Error(), "unsupported URL scheme") {
		t.Errorf("expected scheme error, got %v", err)
	}
}

func TestRemoteFetcher_Open_Streams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("a,b\nc,d\n"))
	}))
	defer server.Close()

	resp, err := NewRemoteFetcher().Open(context.Background(), server.URL, FetchOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if string(body) != "a,b\nc,d\n" {
		t.Errorf("unexpected body %q", body)
	}
	if resp.Format != "csv" {
		t.Errorf("expected format 'csv', got %q", resp.Format)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		contentType string
		path        string
		want        string
	}{
		{"application/json", "/x", "json"},
		{"application/vnd.api+json", "/x.csv", "json"},
		{"text/plain", "/x.csv", "csv"},
		{"", "/config/.env", "env"},
		{"", "/", ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.contentType, tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %q, want %q", tt.contentType, tt.path, got, tt.want)
		}
	}
}

func TestUserAgentSelector(t *testing.T) {
	uas := NewUserAgentSelector()

	if got := uas.GetUserAgent(""); got != defaultUserAgent {
		t.Errorf("expected default agent, got %q", got)
	}
	if got := uas.GetUserAgent("  my-bot/2.0 "); got != "my-bot/2.0" {
		t.Errorf("expected custom agent verbatim, got %q", got)
	}
	if got := uas.GetUserAgent("Firefox"); !strings.Contains(got, "Firefox/") {
		t.Errorf("expected a Firefox agent, got %q", got)
	}
	if got := uas.GetUserAgent("edge"); !strings.Contains(got, "Edg/") {
		t.Errorf("expected an Edge agent, got %q", got)
	}
	if got := uas.GetUserAgent("auto"); !strings.HasPrefix(got, "Mozilla/5.0") {
		t.Errorf("expected a browser agent, got %q", got)
	}
}
