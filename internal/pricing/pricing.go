// Package pricing turns free-form price text into validated amounts.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// currencyRx matches a currency-marked amount like "₹79,999" or "Rs. 1,299".
// The marker must precede the digits; trailing decimals are dropped.
var currencyRx = regexp.MustCompile(`(?i)(?:₹|INR|Rs\.?)\s*([0-9][0-9,]*)(?:\.\d{1,2})?`)

// nonNumericRx strips everything but digits and dots
var nonNumericRx = regexp.MustCompile(`[^\d.]`)

// expectedFloors maps high-confidence query patterns to a conservative
// minimum market price. A floor exists only where a stray accessory price
// must never win; everything else gets no floor.
var expectedFloors = []struct {
	pattern *regexp.Regexp
	floor   float64
}{
	{regexp.MustCompile(`(?i)\biphone\s*15\b`), 30000},
}

// ParseLoose parses a price from a number or free-form string. The bool is
// false when no amount could be recovered; malformed input is a normal
// outcome, never an error.
func ParseLoose(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return sanitize(v)
	case float32:
		return sanitize(float64(v))
	case int:
		return sanitize(float64(v))
	case int64:
		return sanitize(float64(v))
	case string:
		return parseString(v)
	default:
		return 0, false
	}
}

func parseString(s string) (float64, bool) {
	if m := currencyRx.FindStringSubmatch(s); m != nil {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return sanitize(amount)
	}

	digits := nonNumericRx.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return sanitize(amount)
}

func sanitize(amount float64) (float64, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	return amount, true
}

// MinExpectedPrice returns a confidence-gated floor for the query, or 0 when
// there is no prior knowledge of the product's minimum market price.
func MinExpectedPrice(query string) float64 {
	for _, f := range expectedFloors {
		if f.pattern.MatchString(query) {
			return f.floor
		}
	}
	return 0
}

// ParseStrict parses a price and rejects amounts strictly below the floor.
// A floor of 0 means no rejection.
func ParseStrict(value interface{}, floor float64) (float64, bool) {
	amount, ok := ParseLoose(value)
	if !ok {
		return 0, false
	}
	if floor > 0 && amount < floor {
		return 0, false
	}
	return amount, true
}
