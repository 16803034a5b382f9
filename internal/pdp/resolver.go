package pdp

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehound/helpers"
	"pricehound/internal/domains"
)

// genericPDPMarkers identify a product link on pages of any domain
var genericPDPMarkers = []string{"/p/", "/product/", "/dp/"}

// FindProductLink scans a non-PDP page's markup for an anchor that plausibly
// points at the real product page. Domain-specific selector rules from the
// registry are tried in order, then a generic marker scan. The first hit wins;
// the returned URL is absolute with the query string stripped. "" means no
// link was found.
func FindProductLink(domain string, html io.Reader, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return ""
	}

	if caps := domains.Lookup(domain); caps != nil {
		for _, selector := range caps.SearchAnchorSelectors {
			if href, ok := doc.Find(selector).First().Attr("href"); ok {
				if resolved := helpers.ResolveHref(baseURL, href); resolved != "" {
					return resolved
				}
			}
		}
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		for _, marker := range genericPDPMarkers {
			if strings.Contains(href, marker) {
				found = helpers.ResolveHref(baseURL, href)
				return false
			}
		}
		return true
	})
	return found
}
