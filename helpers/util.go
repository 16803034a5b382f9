package helpers

import (
	"errors"
	"net/url"
	"strings"
)

// GetSplitPart returns the index-th part of target split by separate
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// ResolveHref resolves a possibly relative href against a base URL and strips
// the query string, the canonical form used when adopting discovered links.
func ResolveHref(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if i := strings.Index(href, "?"); i >= 0 {
		href = href[:i]
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// ResolveHrefKeepQuery resolves a possibly relative href against a base URL
// without stripping the query string. Image CDN links often carry sizing
// parameters that must survive.
func ResolveHrefKeepQuery(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// HostOf returns the lowercased hostname of a URL, or "" when unparseable
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
