package aggregator

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehound/helpers"
	"pricehound/internal/domains"
)

// scanPageForImage pulls a product image out of a fetched page. Storefronts
// with registered selectors are checked first, then og:image, then the first
// plausible img src on the page.
func scanPageForImage(pageURL, html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	host := helpers.HostOf(pageURL)
	if c := domains.Lookup(host); c != nil {
		for _, sel := range c.ImageSelectors {
			if src, exists := doc.Find(sel).First().Attr("src"); exists && src != "" {
				return absoluteImageURL(pageURL, src)
			}
		}
	}

	if content, exists := doc.Find(`meta[property="og:image"]`).First().Attr("content"); exists && content != "" {
		return absoluteImageURL(pageURL, content)
	}

	var found string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if looksLikeImageFile(src) {
			found = absoluteImageURL(pageURL, src)
			return false
		}
		return true
	})
	return found
}

func looksLikeImageFile(src string) bool {
	lower := strings.ToLower(src)
	for _, ext := range genericImageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func absoluteImageURL(baseURL, src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	if resolved := helpers.ResolveHrefKeepQuery(baseURL, src); resolved != "" {
		return resolved
	}
	return src
}
