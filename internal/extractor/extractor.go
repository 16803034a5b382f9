// Package extractor produces a best-effort structured record from product
// page markup. Extraction is a fixed chain of tiers, each filling only the
// fields earlier tiers left empty: embedded structured data, page metadata,
// visible-price selectors, document title. The extractor never fails; absent
// data is an empty field, not an error.
package extractor

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehound/internal/pricing"
)

// Record is the ephemeral output of one extraction. PriceValue holds the raw
// extracted value (string or number) for the strict parser to judge.
type Record struct {
	ProductName  string
	PriceValue   interface{}
	Category     string
	CanonicalURL string
	OGURL        string
	DeepLink     string
}

// DisplayLink returns the most stable link for the record: canonical, then
// og:url, then the fetched URL.
func (r Record) DisplayLink() string {
	if r.CanonicalURL != "" {
		return r.CanonicalURL
	}
	if r.OGURL != "" {
		return r.OGURL
	}
	return r.DeepLink
}

// structuredTypes are JSON-LD @type values treated as product nodes
var structuredTypes = []string{"product", "mobilephone", "thing"}

// visiblePriceSelectors are checked in order when no structured or metadata
// price was found; first non-empty text wins. The list covers the price
// containers of the target storefronts.
var visiblePriceSelectors = []string{
	`[id*="priceblock_dealprice"]`,
	`[id*="priceblock_ourprice"]`,
	`[id*="corePrice_feature_div"]`,
	`[class*="price"] [class*="final"]`,
	`[class*="our-price"]`,
	`[class*="offer-price"]`,
	`[data-testid*="price"]`,
	`[data-test*="price"]`,
}

// Extract parses the page and runs the tier chain. The deep link always
// defaults to pageURL.
func Extract(html io.Reader, pageURL string) Record {
	record := Record{DeepLink: pageURL}

	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return record
	}

	extractStructuredData(doc, &record)
	extractMetadata(doc, &record)

	if !hasPrice(record) {
		extractVisiblePrice(doc, &record)
	}
	if record.ProductName == "" {
		record.ProductName = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return record
}

func hasPrice(r Record) bool {
	switch v := r.PriceValue.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

// extractStructuredData scans application/ld+json blocks for product-type
// nodes carrying a name and an offer price.
func extractStructuredData(doc *goquery.Document, record *Record) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var data interface{}
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}

		nodes, ok := data.([]interface{})
		if !ok {
			nodes = []interface{}{data}
		}
		for _, n := range nodes {
			node, ok := n.(map[string]interface{})
			if !ok || !isProductNode(node) {
				continue
			}
			if record.ProductName == "" {
				if name, ok := node["name"].(string); ok {
					record.ProductName = name
				}
			}
			if !hasPrice(*record) {
				if price := offersPrice(node["offers"]); price != nil {
					record.PriceValue = price
				}
			}
		}
	})
}

func isProductNode(node map[string]interface{}) bool {
	var typeText string
	switch t := node["@type"].(type) {
	case string:
		typeText = t
	case []interface{}:
		var parts []string
		for _, v := range t {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		typeText = strings.Join(parts, " ")
	default:
		return false
	}

	typeText = strings.ToLower(typeText)
	for _, want := range structuredTypes {
		if strings.Contains(typeText, want) {
			return true
		}
	}
	return false
}

// offersPrice pulls a price from a JSON-LD offers value. When several offers
// are present, the minimum parseable price wins.
func offersPrice(offers interface{}) interface{} {
	switch o := offers.(type) {
	case map[string]interface{}:
		return singleOfferPrice(o)
	case []interface{}:
		var best interface{}
		var bestAmount float64
		for _, item := range o {
			offer, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			price := singleOfferPrice(offer)
			if price == nil {
				continue
			}
			amount, ok := pricing.ParseLoose(price)
			if !ok {
				continue
			}
			if best == nil || amount < bestAmount {
				best = price
				bestAmount = amount
			}
		}
		return best
	default:
		return nil
	}
}

func singleOfferPrice(offer map[string]interface{}) interface{} {
	if price, ok := offer["price"]; ok && price != nil && price != "" {
		return price
	}
	if spec, ok := offer["priceSpecification"].(map[string]interface{}); ok {
		if price, ok := spec["price"]; ok && price != nil && price != "" {
			return price
		}
	}
	return nil
}

// extractMetadata fills canonical/og links, the og:title name fallback and
// the breadcrumb category text.
func extractMetadata(doc *goquery.Document, record *Record) {
	if href, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href"); ok && href != "" {
		record.CanonicalURL = href
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		record.OGURL = content
	}
	if record.ProductName == "" {
		if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
			record.ProductName = strings.TrimSpace(content)
		}
	}

	if record.Category == "" {
		var crumbs []string
		doc.Find("nav.breadcrumb, ul.breadcrumb, .breadcrumb").Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if text != "" {
				crumbs = append(crumbs, text)
			}
		})
		record.Category = strings.Join(crumbs, " > ")
	}
}

// extractVisiblePrice is the last-resort price probe over known storefront
// price containers; the raw text is returned unparsed.
func extractVisiblePrice(doc *goquery.Document, record *Record) {
	for _, selector := range visiblePriceSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			record.PriceValue = text
			return
		}
	}
}
