package scraper

import (
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// baseDomain returns the base domain for an inputted URL.
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return publicsuffix.EffectiveTLDPlusOne(u.Hostname())
}
