package discovery

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeResolver returns canned URLs per domain
type fakeResolver struct {
	urls  map[string]string
	fail  map[string]bool
	calls atomic.Int64
}

func (r *fakeResolver) Resolve(_ context.Context, _ string, domain string) (string, error) {
	r.calls.Add(1)
	if r.fail[domain] {
		return "", errors.New("search API unavailable")
	}
	return r.urls[domain], nil
}

// fakePage is one canned fetch response
type fakePage struct {
	code int
	body string
}

// fakeFetcher returns canned pages per URL; unknown URLs yield 404
type fakeFetcher struct {
	pages map[string]fakePage
	calls atomic.Int64
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (int, string) {
	f.calls.Add(1)
	if page, ok := f.pages[url]; ok {
		return page.code, page.body
	}
	return 404, ""
}

// pdpHTML builds a minimal product page with embedded structured data
func pdpHTML(name, price string) string {
	return `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "` + name + `", "offers": {"price": "` + price + `"}}
		</script>
	</head><body>
		<ul class="breadcrumb"><li>Home</li><li>Mobiles</li></ul>
	</body></html>`
}
