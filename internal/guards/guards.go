// Package guards classifies candidate products as false matches before they
// can win a price comparison. The rules are deliberately conservative: a
// wrongly rejected listing costs one domain's offer, a wrongly accepted
// accessory costs the system its credibility.
package guards

import "regexp"

// Rejection reasons returned by ValidateQuery
const (
	ReasonQueryIsAccessory     = "query_is_accessory"
	ReasonQueryMissingModelKey = "query_missing_model_keyword"
)

// accessoryPatterns lists whole-word accessory markers. "case" must reject,
// "caseload" must not.
var accessoryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcase(s)?\b`),
	regexp.MustCompile(`(?i)\bcover(s)?\b`),
	regexp.MustCompile(`(?i)\bsilicone\b`),
	regexp.MustCompile(`(?i)\bbumper\b`),
	regexp.MustCompile(`(?i)\bback\s*cover\b`),
	regexp.MustCompile(`(?i)\btempered\b`),
	regexp.MustCompile(`(?i)\bscreen\s*protector\b`),
	regexp.MustCompile(`(?i)\bscreen\s*guard\b`),
	regexp.MustCompile(`(?i)\bglass\b`),
	regexp.MustCompile(`(?i)\bcharger(s)?\b`),
	regexp.MustCompile(`(?i)\bpower\s*bank(s)?\b`),
	regexp.MustCompile(`(?i)\bcable(s)?\b`),
	regexp.MustCompile(`(?i)\badapter(s)?\b`),
	regexp.MustCompile(`(?i)\bearbuds?\b`),
	regexp.MustCompile(`(?i)\bearphones?\b`),
	regexp.MustCompile(`(?i)\bheadphones?\b`),
	regexp.MustCompile(`(?i)\bneckband\b`),
	regexp.MustCompile(`(?i)\bstrap(s)?\b`),
	regexp.MustCompile(`(?i)\bstand(s)?\b`),
	regexp.MustCompile(`(?i)\bcar\s*mount\b`),
	regexp.MustCompile(`(?i)\bmagsafe\b`),
	regexp.MustCompile(`(?i)\bwallet\b`),
}

// premiumVariantPatterns are variant keywords that must not appear in a
// product name unless the query asked for them. Ordered so "pro max" is
// recognized as a unit before "pro".
var premiumVariantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpro\s*max\b`),
	regexp.MustCompile(`(?i)\bpro\b`),
	regexp.MustCompile(`(?i)\bplus\b`),
	regexp.MustCompile(`(?i)\bmax\b`),
}

// modelPatterns define the base model token the guard configuration targets
var modelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\biphone\s*15\b`),
}

var phoneCategoryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mobile`),
	regexp.MustCompile(`(?i)smartphone`),
	regexp.MustCompile(`(?i)cell\s*phone`),
}

var renewedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brenewed\b`),
	regexp.MustCompile(`(?i)\brefurb(ished)?\b`),
	regexp.MustCompile(`(?i)\bpre[-\s]*owned\b`),
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// LooksLikeAccessory reports whether text names an accessory rather than the
// product itself.
func LooksLikeAccessory(text string) bool {
	return matchesAny(accessoryPatterns, text)
}

// QueryTargetsModel reports whether the query names the configured base model
func QueryTargetsModel(query string) bool {
	return matchesAny(modelPatterns, query)
}

// IsCorrectVariant reports whether productName is the variant the query asked
// for. The name must contain the base model token, and when the query did not
// ask for a premium variant (pro/plus/max), a name carrying one is rejected —
// a base-model query must never silently match a pricier variant.
func IsCorrectVariant(productName, query string) bool {
	if !matchesAny(modelPatterns, productName) {
		return false
	}
	if !matchesAny(premiumVariantPatterns, query) {
		if matchesAny(premiumVariantPatterns, productName) {
			return false
		}
	}
	return true
}

// IsPhoneCategory reports whether category/breadcrumb text places the product
// in a phone category.
func IsPhoneCategory(categoryText string) bool {
	return matchesAny(phoneCategoryPatterns, categoryText)
}

// ValidateQuery is the early gate run before any network work. It rejects a
// query that is itself accessory-shaped or lacks the required model keyword,
// returning ok plus a machine-readable reason.
func ValidateQuery(query string) (bool, string) {
	if LooksLikeAccessory(query) {
		return false, ReasonQueryIsAccessory
	}
	if !QueryTargetsModel(query) {
		return false, ReasonQueryMissingModelKey
	}
	return true, ""
}

// IsRenewed reports whether text marks renewed/refurbished stock
func IsRenewed(text string) bool {
	return matchesAny(renewedPatterns, text)
}

// QueryAllowsRenewed reports whether the query explicitly asked for renewed
// stock. Whether to exclude renewed listings is the caller's policy.
func QueryAllowsRenewed(query string) bool {
	return IsRenewed(query)
}
