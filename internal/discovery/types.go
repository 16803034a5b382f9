package discovery

import (
	"context"
	"fmt"
)

// Per-domain and overall status values
const (
	StatusOK                = "ok"
	StatusNoDeal            = "no_deal"
	StatusNoURL             = "no_url"
	StatusNotPDPURL         = "not_pdp_url"
	StatusRejectedAccessory = "rejected_accessory"
	StatusVariantMismatch   = "variant_mismatch"
	StatusCategoryMismatch  = "category_mismatch"
	StatusNoPrice           = "no_price"
)

// StatusHTTP formats a transport-failure status carrying the response code
func StatusHTTP(code int) string {
	return fmt.Sprintf("http_%d", code)
}

// Diagnostic is the per-domain audit record. Exactly one is produced per
// domain on every discovery call that reaches domain processing.
type Diagnostic struct {
	Domain   string  `json:"domain"`
	Status   string  `json:"status"`
	URL      string  `json:"url,omitempty"`
	Name     string  `json:"name,omitempty"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

// Candidate is a validated (domain, price, link) triple eligible for
// lowest-price selection.
type Candidate struct {
	Domain   string
	Price    float64
	DeepLink string
}

// Result is the outcome of one discovery call
type Result struct {
	Query          string       `json:"query"`
	Status         string       `json:"status"`
	Message        string       `json:"message,omitempty"`
	ProductName    string       `json:"product_name,omitempty"`
	SelectedDomain string       `json:"selected_domain,omitempty"`
	Price          float64      `json:"price,omitempty"`
	DeepLink       string       `json:"deepLink,omitempty"`
	Details        []Diagnostic `json:"details"`
}

// URLResolver resolves the single best candidate URL for a query on one
// domain. An empty URL means the domain had no result.
type URLResolver interface {
	Resolve(ctx context.Context, query, domain string) (string, error)
}

// Fetcher retrieves a page body. It never returns an error: transport
// failures surface as a non-200 code with an empty body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, body string)
}
