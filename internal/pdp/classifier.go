// Package pdp decides whether a URL is a product-detail page and converts
// search/listing/review pages into one when a domain supports it.
package pdp

import (
	"fmt"
	"net/url"
	"strings"

	"pricehound/internal/domains"
)

// nonPDPSegments are path segments that mark search/listing/category pages
var nonPDPSegments = map[string]bool{
	"search":          true,
	"s":               true,
	"catalog":         true,
	"browse":          true,
	"category":        true,
	"collections":     true,
	"results":         true,
	"product-reviews": true,
}

// searchQueryKeys are query-string parameters that mark a search page
var searchQueryKeys = []string{"q", "query", "search"}

// IsProductPage reports whether the URL points at a single product's detail
// page. Search/listing pages are rejected first, then the owning domain's
// registered path shapes decide; unknown domains fall back to the numeric
// product-id slug heuristic.
func IsProductPage(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	segments := splitPath(path)
	for _, seg := range segments {
		if nonPDPSegments[seg] {
			return false
		}
	}
	values := u.Query()
	for _, key := range searchQueryKeys {
		if values.Has(key) {
			return false
		}
	}

	if caps := domains.Lookup(host); caps != nil {
		for _, prefix := range caps.PDPPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		for _, pattern := range caps.PDPPatterns {
			if strings.Contains(path, pattern) {
				return true
			}
		}
		return false
	}

	// Unknown domain: a purely numeric segment is the typical product-id slug
	for _, seg := range segments {
		if isNumeric(seg) {
			return true
		}
	}
	return false
}

// NormalizeReviewOrSearchURL rewrites a review/search URL into its canonical
// PDP form when the domain has a known transform. It returns "" when no
// rewrite applies, deferring to the search-to-PDP resolver.
func NormalizeReviewOrSearchURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	// Flipkart review pages carry the product id as a pid query parameter
	if strings.Contains(host, "flipkart.") && strings.Contains(path, "/product-reviews/") {
		pid := u.Query().Get("pid")
		if pid == "" {
			return ""
		}
		slug := strings.ToLower(pid)
		if len(slug) > 6 {
			slug = slug[:6]
		}
		return fmt.Sprintf("https://www.flipkart.com/p/itm%s?pid=%s", slug, pid)
	}

	return ""
}

func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
