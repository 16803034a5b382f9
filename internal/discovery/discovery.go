// Package discovery runs the offer discovery pipeline: per-domain URL
// resolution, PDP conversion, extraction and guard validation in parallel,
// then lowest-price selection with full per-domain diagnostics.
package discovery

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"pricehound/internal/extractor"
	"pricehound/internal/guards"
	"pricehound/internal/pdp"
	"pricehound/internal/pricing"
	"pricehound/logger"
)

// Pipeline orchestrates offer discovery over the configured domains
type Pipeline struct {
	resolver URLResolver
	fetcher  Fetcher
	domains  []string
	log      *logger.Logger
}

// NewPipeline creates a pipeline with the given collaborators and default
// domain set.
func NewPipeline(resolver URLResolver, fetcher Fetcher, domains []string) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		fetcher:  fetcher,
		domains:  domains,
		log:      logger.ForDiscovery(),
	}
}

// outcome is the domain-local result of one domain task; nothing in it is
// shared until the final join.
type outcome struct {
	diag      Diagnostic
	candidate *Candidate
	name      string
}

// DiscoverLowestPrice finds the lowest validated price for the query across
// the domains (nil means the pipeline's default set). Every domain yields
// exactly one diagnostic; no domain failure aborts the call.
func (p *Pipeline) DiscoverLowestPrice(ctx context.Context, query string, domainList []string) Result {
	if len(domainList) == 0 {
		domainList = p.domains
	}

	// Early gate: no network work for a query that can never win
	if ok, reason := guards.ValidateQuery(query); !ok {
		p.log.Debug().Str("query", query).Str("reason", reason).Msg("Query rejected before discovery")
		return Result{
			Query:   query,
			Status:  reason,
			Message: rejectionMessage(reason),
			Details: []Diagnostic{},
		}
	}

	floor := pricing.MinExpectedPrice(query)

	// One task per domain, joined before selection. Outcomes land in a slot
	// indexed by domain order so diagnostics stay deterministic regardless of
	// completion order.
	outcomes := make([]outcome, len(domainList))
	var wg sync.WaitGroup
	for i, domain := range domainList {
		wg.Add(1)
		go func(i int, domain string) {
			defer wg.Done()
			outcomes[i] = p.processDomain(ctx, query, domain, floor)
		}(i, domain)
	}
	wg.Wait()

	details := make([]Diagnostic, 0, len(domainList))
	var sampleName string
	var best *Candidate
	for i := range outcomes {
		details = append(details, outcomes[i].diag)
		if sampleName == "" && outcomes[i].name != "" {
			sampleName = outcomes[i].name
		}
		// Strict less-than: the first domain holding the minimum wins ties
		if c := outcomes[i].candidate; c != nil {
			if best == nil || c.Price < best.Price {
				best = c
			}
		}
	}

	if best == nil {
		return Result{
			Query:       query,
			Status:      StatusNoDeal,
			Message:     "Can't find a better deal right now.",
			ProductName: sampleName,
			Details:     details,
		}
	}

	p.log.Info().
		Str("query", query).
		Str("domain", best.Domain).
		Float64("price", best.Price).
		Msg("Selected lowest offer")

	return Result{
		Query:          query,
		Status:         StatusOK,
		ProductName:    sampleName,
		SelectedDomain: best.Domain,
		Price:          best.Price,
		DeepLink:       best.DeepLink,
		Details:        details,
	}
}

// processDomain runs resolution, PDP conversion, extraction and guards for a
// single domain. It always produces a diagnostic and never an error.
func (p *Pipeline) processDomain(ctx context.Context, query, domain string, floor float64) outcome {
	url, err := p.resolver.Resolve(ctx, query, domain)
	if err != nil || url == "" {
		if err != nil {
			p.log.Debug().Str("domain", domain).Err(err).Msg("URL resolution failed")
		}
		return outcome{diag: Diagnostic{Domain: domain, Status: StatusNoURL}}
	}

	// Convert search/review pages into a PDP before the real fetch
	if !pdp.IsProductPage(url) {
		if rewritten := pdp.NormalizeReviewOrSearchURL(url); rewritten != "" && pdp.IsProductPage(rewritten) {
			url = rewritten
		} else {
			code, body := p.fetcher.Fetch(ctx, url)
			if code != http.StatusOK || body == "" {
				return outcome{diag: Diagnostic{Domain: domain, Status: StatusHTTP(code), URL: url}}
			}
			candidate := pdp.FindProductLink(domain, strings.NewReader(body), url)
			if candidate == "" || !pdp.IsProductPage(candidate) {
				return outcome{diag: Diagnostic{Domain: domain, Status: StatusNotPDPURL, URL: url}}
			}
			url = candidate
		}
	}

	code, body := p.fetcher.Fetch(ctx, url)
	if code != http.StatusOK || body == "" {
		return outcome{diag: Diagnostic{Domain: domain, Status: StatusHTTP(code), URL: url}}
	}

	record := extractor.Extract(strings.NewReader(body), url)
	link := record.DisplayLink()
	name := strings.TrimSpace(record.ProductName)
	category := strings.TrimSpace(record.Category)

	// Guards run in order; the first failure ends the domain's processing
	if guards.LooksLikeAccessory(name) {
		return outcome{
			diag: Diagnostic{Domain: domain, Status: StatusRejectedAccessory, URL: link, Name: name},
			name: name,
		}
	}
	if !guards.IsCorrectVariant(name, query) {
		return outcome{
			diag: Diagnostic{Domain: domain, Status: StatusVariantMismatch, URL: link, Name: name},
			name: name,
		}
	}
	if category != "" && !guards.IsPhoneCategory(category) {
		return outcome{
			diag: Diagnostic{Domain: domain, Status: StatusCategoryMismatch, URL: link, Name: name, Category: category},
			name: name,
		}
	}

	price, ok := pricing.ParseStrict(record.PriceValue, floor)
	if !ok {
		return outcome{
			diag: Diagnostic{Domain: domain, Status: StatusNoPrice, URL: link, Name: name},
			name: name,
		}
	}

	return outcome{
		diag:      Diagnostic{Domain: domain, Status: StatusOK, URL: link, Name: name, Price: price},
		candidate: &Candidate{Domain: domain, Price: price, DeepLink: link},
		name:      name,
	}
}

func rejectionMessage(reason string) string {
	if reason == guards.ReasonQueryIsAccessory {
		return "Your query looks like an accessory. Please search a phone model (e.g., 'iPhone 15 128GB')."
	}
	return "Please include the phone model name (e.g., 'iPhone 15')."
}
