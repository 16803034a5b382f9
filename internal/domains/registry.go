// Package domains holds the static per-domain capability registry. Adding a
// domain is a configuration change here, never a code change in the pipeline.
package domains

import "strings"

// Capability describes what is known about one e-commerce domain
type Capability struct {
	// Suffix is the registered hostname suffix, e.g. "amazon.in"
	Suffix string

	// PDPPatterns are path substrings that identify a product-detail page
	PDPPatterns []string

	// PDPPrefixes are path prefixes that identify a product-detail page
	PDPPrefixes []string

	// SearchAnchorSelectors are ordered CSS selectors used to locate a PDP
	// anchor inside a search/listing page; first match wins
	SearchAnchorSelectors []string

	// ImageSelectors are CSS selectors known to hold the product image
	ImageSelectors []string

	// SupportsSearchFallback reports whether a non-PDP result can be
	// converted into a PDP by scanning the page's anchors
	SupportsSearchFallback bool
}

// registry is consulted by suffix match; order matters only in that the first
// matching suffix wins.
var registry = []Capability{
	{
		Suffix:                 "amazon.in",
		PDPPatterns:            []string{"/dp/", "/gp/product/"},
		SearchAnchorSelectors:  []string{`a[href*="/dp/"]`},
		ImageSelectors:         []string{"#landingImage", "img#imgBlkFront"},
		SupportsSearchFallback: true,
	},
	{
		Suffix:                 "flipkart.com",
		PDPPrefixes:            []string{"/p/itm"},
		PDPPatterns:            []string{"/p/"},
		SearchAnchorSelectors:  []string{`a[href^="/p/itm"]`, `a[href*="/p/"][href*="pid="]`},
		ImageSelectors:         []string{`img[loading="eager"]`, "img._396cs4"},
		SupportsSearchFallback: true,
	},
	{
		Suffix:                 "reliancedigital.in",
		PDPPrefixes:            []string{"/p/"},
		SearchAnchorSelectors:  []string{`a[href^="/p/"]`},
		SupportsSearchFallback: true,
	},
	{
		Suffix:                 "croma.com",
		PDPPrefixes:            []string{"/p/"},
		SearchAnchorSelectors:  []string{`a[href^="/p/"]`},
		SupportsSearchFallback: true,
	},
	{
		Suffix:                 "vijaysales.com",
		PDPPatterns:            []string{"/product/"},
		SearchAnchorSelectors:  []string{`a[href*="/product/"]`},
		SupportsSearchFallback: true,
	},
}

// Lookup returns the capability record for the first registered suffix the
// domain ends with, or nil when the domain is unknown.
func Lookup(domain string) *Capability {
	domain = strings.ToLower(domain)
	for i := range registry {
		if strings.HasSuffix(domain, registry[i].Suffix) {
			return &registry[i]
		}
	}
	return nil
}

// HasCapabilities reports whether the domain is registered
func HasCapabilities(domain string) bool {
	return Lookup(domain) != nil
}

// All returns the registered domain suffixes in registration order
func All() []string {
	suffixes := make([]string, 0, len(registry))
	for _, c := range registry {
		suffixes = append(suffixes, c.Suffix)
	}
	return suffixes
}
