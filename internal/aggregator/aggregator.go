// Package aggregator runs the multi-offer search flow: a broad search across
// the configured platforms bucketed by match confidence, deduplicated by
// link and returned price-sorted, with a tiered image-resolution fallback.
package aggregator

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"pricehound/helpers"
	"pricehound/internal/guards"
	"pricehound/internal/pricing"
	"pricehound/logger"
	"pricehound/services/search"
)

// OfferView is one ranked offer as exposed to callers. Price is the raw
// display string; "Not found" marks unpriced offers.
type OfferView struct {
	ProductName string `json:"productName"`
	Price       string `json:"price"`
	Platform    string `json:"platform"`
	DeepLink    string `json:"deepLink"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Result is the outcome of one offers search
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    []OfferView `json:"data"`
}

// Fetcher retrieves a page body for the last-resort image scan
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, body string)
}

// pricePatterns locate a displayable price token inside result text
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(₹\s?[0-9][0-9,]*)`),
	regexp.MustCompile(`(\$[0-9][0-9,]*)`),
	regexp.MustCompile(`([0-9][0-9,]*\s?INR)`),
}

var nonAlnumRx = regexp.MustCompile(`[^a-z0-9]`)

// recognizedPlatforms gate the strict bucket
var recognizedPlatforms = []string{"amazon", "flipkart", "croma", "reliance", "myntra", "ajio"}

// genericImageExtensions mark a plausible product image src
var genericImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// offer is the internal candidate carrying both raw and parsed price
type offer struct {
	view     OfferView
	priceNum float64
	priced   bool
}

// Aggregator assembles ranked offer lists from broad search results
type Aggregator struct {
	searcher search.Client
	fetcher  Fetcher
	domains  []string
	log      *logger.Logger
}

// NewAggregator creates an aggregator over the given domains
func NewAggregator(searcher search.Client, fetcher Fetcher, domains []string) *Aggregator {
	return &Aggregator{
		searcher: searcher,
		fetcher:  fetcher,
		domains:  domains,
		log:      logger.ForAggregator(),
	}
}

// SearchOffers returns up to limit offers for the query, priced items first
// in ascending order. The flow always tries to return some results: strict
// matches (query-phrase overlap on a recognized platform), then non-accessory
// fallbacks, then a generic rescue pass when both buckets are empty.
func (a *Aggregator) SearchOffers(ctx context.Context, query string, limit int) Result {
	if limit <= 0 {
		limit = 15
	}

	resp, err := a.searcher.Search(ctx, query, a.domains, 5)
	if err != nil {
		a.log.Warn().Err(err).Str("query", query).Msg("Offer search failed")
		return Result{
			Success: false,
			Message: fmt.Sprintf("Search error for '%s': %v", query, err),
			Data:    []OfferView{},
		}
	}
	if len(resp.Results) == 0 {
		return Result{
			Success: false,
			Message: fmt.Sprintf("No search results found for '%s'", query),
			Data:    []OfferView{},
		}
	}

	var strict, fallback []offer
	for _, r := range resp.Results {
		snippet := r.Content
		if snippet == "" {
			snippet = r.RawContent
		}

		switch {
		case looksLikeMainProduct(r.Title, snippet, query) && isRecognizedPlatform(r.URL):
			strict = append(strict, a.buildOffer(ctx, r, resp.Images, len(strict)+len(fallback), query))
		case !isAccessoryText(r.Title + " " + snippet):
			fallback = append(fallback, a.buildOffer(ctx, r, resp.Images, len(strict)+len(fallback), query))
		}
	}

	combined := append(strict, fallback...)
	if len(combined) == 0 {
		// Rescue pass: better to show loosely matching results than nothing
		for i, r := range resp.Results {
			if i >= limit {
				break
			}
			combined = append(combined, a.buildOffer(ctx, r, resp.Images, i, query))
		}
	}
	if len(combined) == 0 {
		return Result{
			Success: false,
			Message: fmt.Sprintf("No offers found for '%s'", query),
			Data:    []OfferView{},
		}
	}

	unique := dedupeByLink(combined)

	// Priced items ascending, unpriced after them in arrival order
	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].priced != unique[j].priced {
			return unique[i].priced
		}
		if !unique[i].priced {
			return false
		}
		return unique[i].priceNum < unique[j].priceNum
	})

	if len(unique) > limit {
		unique = unique[:limit]
	}

	data := make([]OfferView, 0, len(unique))
	for _, o := range unique {
		data = append(data, o.view)
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("Search results for '%s' (priced first, then others)", query),
		Data:    data,
	}
}

// buildOffer assembles one candidate from a search result
func (a *Aggregator) buildOffer(ctx context.Context, r search.Result, searchImages []string, index int, query string) offer {
	title := r.Title
	if title == "" {
		title = query
	}

	priceStr := extractPriceToken(r.Title + " " + r.Content + " " + r.RawContent)
	priceNum, priced := 0.0, false
	if priceStr != "" {
		priceNum, priced = pricing.ParseLoose(priceStr)
	}

	display := priceStr
	if display == "" {
		display = "Not found"
	}

	return offer{
		view: OfferView{
			ProductName: title,
			Price:       display,
			Platform:    PlatformFromURL(r.URL),
			DeepLink:    r.URL,
			ImageURL:    a.resolveImage(ctx, r, searchImages, index),
		},
		priceNum: priceNum,
		priced:   priced,
	}
}

// resolveImage tries per-result images, then the top-level search images
// round-robin, then a direct page scan as last resort.
func (a *Aggregator) resolveImage(ctx context.Context, r search.Result, searchImages []string, index int) string {
	if len(r.Images) > 0 && r.Images[0] != "" {
		return r.Images[0]
	}
	if len(searchImages) > 0 {
		if img := searchImages[index%len(searchImages)]; img != "" {
			return img
		}
	}
	if a.fetcher == nil || r.URL == "" {
		return ""
	}
	code, body := a.fetcher.Fetch(ctx, r.URL)
	if code != http.StatusOK || body == "" {
		return ""
	}
	return scanPageForImage(r.URL, body)
}

func dedupeByLink(offers []offer) []offer {
	seen := make(map[string]bool, len(offers))
	unique := make([]offer, 0, len(offers))
	for _, o := range offers {
		if o.view.DeepLink == "" || seen[o.view.DeepLink] {
			continue
		}
		seen[o.view.DeepLink] = true
		unique = append(unique, o)
	}
	return unique
}

// extractPriceToken returns the first displayable price found in text
func extractPriceToken(text string) string {
	for _, p := range pricePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// PlatformFromURL maps a result URL to its storefront display name
func PlatformFromURL(rawURL string) string {
	host := helpers.HostOf(rawURL)
	if host == "" {
		return "Unknown"
	}
	switch {
	case strings.Contains(host, "amazon"):
		return "Amazon"
	case strings.Contains(host, "flipkart"):
		return "Flipkart"
	case strings.Contains(host, "myntra"):
		return "Myntra"
	case strings.Contains(host, "ajio"):
		return "AJIO"
	case strings.Contains(host, "croma"):
		return "Croma"
	case strings.Contains(host, "reliancedigital"):
		return "Reliance Digital"
	case strings.Contains(host, "vijaysales"):
		return "Vijay Sales"
	default:
		return host
	}
}

func isRecognizedPlatform(rawURL string) bool {
	platform := strings.ToLower(PlatformFromURL(rawURL))
	for _, known := range recognizedPlatforms {
		if strings.Contains(platform, known) {
			return true
		}
	}
	return false
}

// mainPhrase extracts the core phrase of a query: its first two tokens
func mainPhrase(query string) string {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) >= 2 {
		return tokens[0] + " " + tokens[1]
	}
	return strings.Join(tokens, " ")
}

// normalizeForMatch strips everything but letters and digits so that
// "T-Shirt", "t shirt" and "tshirt" all compare equal
func normalizeForMatch(text string) string {
	return nonAlnumRx.ReplaceAllString(strings.ToLower(text), "")
}

func isAccessoryText(text string) bool {
	return guards.LooksLikeAccessory(text)
}

// looksLikeMainProduct is the strict classification: not accessory-shaped
// and the normalized main phrase appears in the title or snippet
func looksLikeMainProduct(title, snippet, query string) bool {
	if isAccessoryText(title + " " + snippet) {
		return false
	}
	phrase := normalizeForMatch(mainPhrase(query))
	if phrase == "" {
		return true
	}
	return strings.Contains(normalizeForMatch(title), phrase) ||
		strings.Contains(normalizeForMatch(snippet), phrase)
}
