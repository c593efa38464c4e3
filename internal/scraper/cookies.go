package scraper

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
)

// CookieManager reads and caches browser cookies per base domain.
type CookieManager struct {
	mu      sync.RWMutex
	browser string
	cookies map[string][]*http.Cookie
	stores  func() []kooky.CookieStore
}

// NewCookieManager returns a cookie manager reading from browser (all browsers if empty).
func NewCookieManager(browser string) *CookieManager {
	return &CookieManager{
		browser: strings.ToLower(strings.TrimSpace(browser)),
		cookies: make(map[string][]*http.Cookie),
		stores:  kooky.FindAllCookieStores,
	}
}

// GetCookies retrieves cookies for a given URL.
func (cm *CookieManager) GetCookies(u string) ([]*http.Cookie, error) {
	domain, err := baseDomain(u)
	if err != nil {
		return nil, fmt.Errorf("error extracting base domain in cookie grab: %w", err)
	}

	// Check if we already have cookies for this domain
	cm.mu.RLock()
	if cookies, ok := cm.cookies[domain]; ok {
		cm.mu.RUnlock()
		return cookies, nil
	}
	cm.mu.RUnlock()

	cookies := cm.loadCookiesForDomain(domain)

	cm.mu.Lock()
	cm.cookies[domain] = cookies
	cm.mu.Unlock()

	return cookies, nil
}

// loadCookiesForDomain reads the valid cookies of domain from every matching browser store.
func (cm *CookieManager) loadCookiesForDomain(domain string) []*http.Cookie {
	var out []*http.Cookie
	for _, store := range cm.stores() {
		name := store.Browser()
		if cm.browser != "" && !strings.EqualFold(name, cm.browser) {
			continue
		}

		cookies, err := store.ReadCookies(kooky.Valid, kooky.Domain(domain))
		if closeErr := store.Close(); closeErr != nil {
			logger.Pl.D(3, "Failed closing %s cookie store: %v", name, closeErr)
		}
		if err != nil {
			logger.Pl.D(2, "Failed reading cookies from %s: %v", name, err)
			continue
		}
		if len(cookies) > 0 {
			logger.Pl.D(1, "Read %d cookies from %s for %s", len(cookies), name, domain)
			out = append(out, convertToHTTPCookies(cookies)...)
		}
	}

	if len(out) == 0 {
		logger.Pl.I("No cookies found for %s", domain)
	}
	return out
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
	return httpCookies
}

// SaveCookiesToFile saves the cookies to a file in Netscape format for yt-dlp.
//
// Returns false without writing when there are no cookies.
func SaveCookiesToFile(cookies []*http.Cookie, fallbackDomain, cookieFilePath string) (bool, error) {
	if len(cookies) == 0 {
		logger.Pl.D(1, "No cookies to write to %q, won't use '--cookies' in commands", cookieFilePath)
		return false, nil
	}

	file, err := os.OpenFile(cookieFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.PermsCookieFile)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Pl.E("failed to close file %q due to error: %v", cookieFilePath, err)
		}
	}()

	// Write the header for the Netscape cookies file
	if _, err := file.WriteString("# Netscape HTTP Cookie File\n# https://curl.haxx.se/rfc/cookie_spec.html\n# This is a generated file! Do not edit.\n\n"); err != nil {
		return false, err
	}

	logger.Pl.D(1, "Saving %d cookies to file %s...", len(cookies), cookieFilePath)

	for _, cookie := range cookies {
		if _, err := file.WriteString(netscapeLine(cookie, fallbackDomain)); err != nil {
			return false, err
		}
	}
	return true, nil
}

// netscapeLine formats one cookie as a Netscape cookie file line.
func netscapeLine(cookie *http.Cookie, fallbackDomain string) string {
	domain := cookie.Domain
	if domain == "" {
		domain = fallbackDomain
	}

	includeSubdomains := "FALSE"
	if strings.HasPrefix(domain, ".") {
		includeSubdomains = "TRUE"
	}

	secure := "FALSE"
	if cookie.Secure {
		secure = "TRUE"
	}

	path := cookie.Path
	if path == "" {
		path = "/"
	}

	expires := int64(0)
	if !cookie.Expires.IsZero() {
		expires = cookie.Expires.Unix()
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
		domain, includeSubdomains, path, secure, expires, cookie.Name, cookie.Value)
}
