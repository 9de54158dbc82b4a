package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // Import all browser support
)

type BrowserType string

const (
	BrowserNone    BrowserType = "none"
	BrowserAuto    BrowserType = "auto"
	BrowserChrome  BrowserType = "chrome"
	BrowserFirefox BrowserType = "firefox"
	BrowserSafari  BrowserType = "safari"
)

// ParseBrowserType normalizes a configured browser name. Empty and unknown
// names disable cookie lookup.
func ParseBrowserType(name string) (BrowserType, error) {
	switch bt := BrowserType(strings.ToLower(strings.TrimSpace(name))); bt {
	case "", BrowserNone:
		return BrowserNone, nil
	case BrowserAuto, BrowserChrome, BrowserFirefox, BrowserSafari:
		return bt, nil
	default:
		return BrowserNone, fmt.Errorf("unknown browser %q (want none, auto, chrome, firefox or safari)", name)
	}
}

// CookieExtractor reads cookies for remote sources from local browser
// profiles.
type CookieExtractor struct {
	browserType BrowserType
	customPaths map[string]string
}

func NewCookieExtractor(browserType BrowserType, customPaths map[string]string) *CookieExtractor {
	return &CookieExtractor{
		browserType: browserType,
		customPaths: customPaths,
	}
}

// Enabled reports whether any browser was selected
func (ce *CookieExtractor) Enabled() bool {
	return ce != nil && ce.browserType != BrowserNone && ce.browserType != ""
}

// ExtractCookies returns the still-valid cookies a browser would send to
// targetURL. In auto mode the first browser holding any cookie for the host
// wins.
func (ce *CookieExtractor) ExtractCookies(ctx context.Context, targetURL string) ([]*http.Cookie, error) {
	if !ce.Enabled() {
		return nil, nil
	}

	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	host := parsedURL.Hostname()

	if ce.browserType != BrowserAuto {
		return ce.extractFromBrowser(ctx, ce.browserType, host), nil
	}

	// Try all browsers in order of preference
	for _, browser := range []BrowserType{BrowserChrome, BrowserFirefox, BrowserSafari} {
		if cookies := ce.extractFromBrowser(ctx, browser, host); len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil
}

func (ce *CookieExtractor) extractFromBrowser(ctx context.Context, browserType BrowserType, host string) []*http.Cookie {
	var cookies []*http.Cookie

	for cookie, err := range kooky.TraverseCookies(ctx, kooky.Valid) {
		if err != nil || cookie == nil {
			continue
		}

		var browserName, filePath string
		if cookie.Browser != nil {
			browserName = cookie.Browser.Browser()
			filePath = cookie.Browser.FilePath()
		}
		if !matchesBrowserType(browserName, filePath, browserType) || !ce.matchesCustomPath(browserType, filePath) {
			continue
		}
		if !matchesDomain(cookie.Domain, host) {
			continue
		}

		cookies = append(cookies, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}

	return cookies
}

// matchesCustomPath restricts a browser to the profile directory configured
// under [browser.paths], when one is set.
func (ce *CookieExtractor) matchesCustomPath(browserType BrowserType, filePath string) bool {
	customPath := ce.customPaths[string(browserType)]
	if customPath == "" {
		return true
	}
	return strings.HasPrefix(filepath.Clean(filePath), filepath.Clean(expandPath(customPath)))
}

func matchesBrowserType(browserName, filePath string, browserType BrowserType) bool {
	browserName = strings.ToLower(browserName)
	switch browserType {
	case BrowserAuto:
		return true
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") || strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox") ||
			strings.Contains(strings.ToLower(filePath), "mozilla")
	case BrowserSafari:
		return strings.Contains(browserName, "safari") ||
			strings.HasSuffix(strings.ToLower(filePath), ".binarycookies")
	}
	return false
}

func matchesDomain(cookieDomain, targetDomain string) bool {
	if cookieDomain == "" || targetDomain == "" {
		return false
	}

	cookieDomain = strings.ToLower(strings.TrimPrefix(cookieDomain, "."))
	targetDomain = strings.ToLower(targetDomain)

	return cookieDomain == targetDomain || strings.HasSuffix(targetDomain, "."+cookieDomain)
}

func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, rest)
	}
	return os.ExpandEnv(path)
}
