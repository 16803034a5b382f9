package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const pageURL = "https://www.amazon.in/Apple-iPhone-15/dp/B0CHX1W1XY"

func TestExtractStructuredData(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Apple iPhone 15 (128 GB) - Blue",
		 "offers": {"price": "79999", "priceCurrency": "INR"}}
		</script>
	</head><body></body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "Apple iPhone 15 (128 GB) - Blue", record.ProductName)
	assert.Equal(t, "79999", record.PriceValue)
	assert.Equal(t, pageURL, record.DeepLink)
}

func TestExtractStructuredDataMinimumOffer(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "iPhone 15",
		 "offers": [
			{"price": "82900"},
			{"price": "79999"},
			{"priceSpecification": {"price": 81000}}
		 ]}
		</script>
	</head><body></body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "79999", record.PriceValue)
}

func TestExtractStructuredDataTypeList(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		[{"@type": ["Product", "MobilePhone"], "name": "iPhone 15", "offers": {"price": 76999}}]
		</script>
	</head><body></body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "iPhone 15", record.ProductName)
	assert.Equal(t, 76999.0, record.PriceValue)
}

func TestExtractMetadataFillsMissingFields(t *testing.T) {
	html := `<html><head>
		<link rel="canonical" href="https://www.croma.com/p/301177"/>
		<meta property="og:url" content="https://www.croma.com/p/301177?src=og"/>
		<meta property="og:title" content="Apple iPhone 15 128GB"/>
	</head><body>
		<ul class="breadcrumb"><li>Home</li><li>Mobiles</li><li>Smartphones</li></ul>
	</body></html>`

	record := Extract(strings.NewReader(html), "https://www.croma.com/p/301177")
	assert.Equal(t, "Apple iPhone 15 128GB", record.ProductName)
	assert.Equal(t, "https://www.croma.com/p/301177", record.CanonicalURL)
	assert.Equal(t, "https://www.croma.com/p/301177?src=og", record.OGURL)
	assert.Contains(t, record.Category, "Mobiles")
}

func TestExtractStructuredNameBeatsOGTitle(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Structured Name", "offers": {"price": "79999"}}
		</script>
		<meta property="og:title" content="OG Title"/>
	</head><body></body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "Structured Name", record.ProductName)
}

func TestExtractVisiblePriceFallback(t *testing.T) {
	html := `<html><body>
		<div id="corePrice_feature_div"><span>₹76,999.00</span></div>
	</body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "₹76,999.00", record.PriceValue)
}

func TestExtractVisiblePriceNotUsedWhenStructuredPriceExists(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "offers": {"price": "79999"}}
		</script>
	</head><body>
		<div id="priceblock_dealprice">₹1 (accessory trap)</div>
	</body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "79999", record.PriceValue)
}

func TestExtractTitleFallback(t *testing.T) {
	html := `<html><head><title> Apple iPhone 15 - Vijay Sales </title></head><body></body></html>`

	record := Extract(strings.NewReader(html), pageURL)
	assert.Equal(t, "Apple iPhone 15 - Vijay Sales", record.ProductName)
}

func TestExtractNeverFails(t *testing.T) {
	record := Extract(strings.NewReader("not html at all %%%"), pageURL)
	assert.Equal(t, pageURL, record.DeepLink)
	assert.Equal(t, pageURL, record.DisplayLink())
	assert.Nil(t, record.PriceValue)
}

func TestDisplayLinkPriority(t *testing.T) {
	r := Record{DeepLink: "deep", OGURL: "og", CanonicalURL: "canonical"}
	assert.Equal(t, "canonical", r.DisplayLink())

	r.CanonicalURL = ""
	assert.Equal(t, "og", r.DisplayLink())

	r.OGURL = ""
	assert.Equal(t, "deep", r.DisplayLink())
}
