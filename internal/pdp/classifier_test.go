package pdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProductPageSearchRejections(t *testing.T) {
	nonPDP := []string{
		"https://www.amazon.in/s?k=iphone+15",
		"https://www.flipkart.com/search?q=iphone+15",
		"https://www.croma.com/searchB?query=iphone",
		"https://www.reliancedigital.in/category/mobiles",
		"https://www.flipkart.com/apple-iphone-15/product-reviews/itm6ac6485515ae4?pid=MOBGTAGPTB3VS24W",
		"https://example.com/results/12345",
		"",
	}
	for _, u := range nonPDP {
		assert.False(t, IsProductPage(u), u)
	}
}

func TestIsProductPageDomainRules(t *testing.T) {
	pdp := []string{
		"https://www.amazon.in/Apple-iPhone-15/dp/B0CHX1W1XY",
		"https://www.amazon.in/gp/product/B0CHX1W1XY",
		"https://www.flipkart.com/p/itm6ac6485515ae4",
		"https://www.flipkart.com/apple-iphone-15-blue-128-gb/p/itm6ac6485515ae4",
		"https://www.reliancedigital.in/p/apple-iphone-15-128-gb",
		"https://www.croma.com/p/301177",
		"https://www.vijaysales.com/product/apple-iphone-15",
	}
	for _, u := range pdp {
		assert.True(t, IsProductPage(u), u)
	}

	notPDP := []string{
		"https://www.amazon.in/deals",
		"https://www.croma.com/phones/apple",
		"https://www.vijaysales.com/apple/iphones",
	}
	for _, u := range notPDP {
		assert.False(t, IsProductPage(u), u)
	}
}

func TestIsProductPageGenericFallback(t *testing.T) {
	// Unknown domain with a numeric slug segment
	assert.True(t, IsProductPage("https://shop.example.com/items/8823311"))
	assert.False(t, IsProductPage("https://shop.example.com/about-us"))
}

func TestNormalizeReviewOrSearchURL(t *testing.T) {
	rewritten := NormalizeReviewOrSearchURL(
		"https://www.flipkart.com/apple-iphone-15/product-reviews/itm6ac64?pid=MOBGTAGPTB3VS24W")
	assert.Equal(t, "https://www.flipkart.com/p/itmmobgta?pid=MOBGTAGPTB3VS24W", rewritten)
	assert.True(t, IsProductPage(rewritten))

	// No pid means no rewrite
	assert.Empty(t, NormalizeReviewOrSearchURL(
		"https://www.flipkart.com/apple-iphone-15/product-reviews/itm6ac64"))

	// Other domains have no review transform
	assert.Empty(t, NormalizeReviewOrSearchURL(
		"https://www.amazon.in/product-reviews/B0CHX1W1XY"))
}
