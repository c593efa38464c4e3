// Package scraper handles web scraping operations.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is the site channel pages are fetched from.
const DefaultBaseURL = "https://www.youtube.com"

// PageSnapshot is the raw HTML of a channel page.
type PageSnapshot struct {
	URL         string
	Title       string
	Description string
	HTML        string
}

// Scraper fetches channel pages.
type Scraper struct {
	BaseURL       string
	cookieManager *CookieManager
}

// New returns a new Scraper instance. cm may be nil to visit without cookies.
func New(cm *CookieManager) *Scraper {
	return &Scraper{
		BaseURL:       DefaultBaseURL,
		cookieManager: cm,
	}
}

// CookieManager returns the scraper's cookie manager, which may be nil.
func (s *Scraper) CookieManager() *CookieManager {
	return s.cookieManager
}

// AboutURL returns the about page URL of a channel ID or @handle.
func (s *Scraper) AboutURL(channelID string) string {
	base := strings.TrimSuffix(s.BaseURL, "/")
	if strings.HasPrefix(channelID, "@") {
		return base + "/" + url.PathEscape(channelID) + "/about"
	}
	return base + "/channel/" + url.PathEscape(channelID) + "/about"
}

// ChannelAbout snapshots a channel's about page.
func (s *Scraper) ChannelAbout(ctx context.Context, channelID string) (*PageSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pageURL := s.AboutURL(channelID)

	collector, err := s.initializeCollector(pageURL)
	if err != nil {
		return nil, err
	}

	snap := &PageSnapshot{URL: pageURL}
	var status int

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		snap.HTML = string(r.Body)
	})
	collector.OnHTML("head", func(e *colly.HTMLElement) {
		snap.Title = extractTitle(e.DOM)
		snap.Description = extractDescription(e.DOM)
	})

	logger.Pl.D(1, "Snapshotting %q...", pageURL)
	if err := collector.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %q: %w", pageURL, err)
	}
	collector.Wait()

	if status != http.StatusOK || snap.HTML == "" {
		return nil, fmt.Errorf("unexpected response from %q (status %d)", pageURL, status)
	}
	return snap, nil
}

// initializeCollector initializes Colly with any browser cookies for urlStr.
func (s *Scraper) initializeCollector(urlStr string) (*colly.Collector, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if s.cookieManager != nil {
		cookies, err := s.cookieManager.GetCookies(urlStr)
		if err != nil {
			logger.Pl.W("Could not load cookies for %q: %v", parsedURL.Host, err)
		} else if len(cookies) > 0 {
			jar.SetCookies(parsedURL, cookies)
		}
	}

	collector := colly.NewCollector(colly.AllowURLRevisit())
	collector.SetRequestTimeout(consts.ScraperTimeout)
	collector.SetCookieJar(jar)

	return collector, nil
}

// extractTitle grabs the page title, falling back to the Open Graph title.
func extractTitle(head *goquery.Selection) string {
	title := strings.TrimSpace(head.Find("title").First().Text())
	if title == "" {
		title = metaContent(head, `meta[property="og:title"]`)
	}
	if title == "" {
		logger.Pl.D(1, "Title not found")
	}
	return title
}

// extractDescription grabs the page description, falling back to the Open Graph description.
func extractDescription(head *goquery.Selection) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if d := metaContent(head, sel); d != "" {
			return d
		}
	}
	logger.Pl.D(1, "Description not found")
	return ""
}

func metaContent(head *goquery.Selection, sel string) string {
	v, _ := head.Find(sel).First().Attr("content")
	return strings.TrimSpace(v)
}
