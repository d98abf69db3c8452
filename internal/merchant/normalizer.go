// Package merchant extracts canonical merchant names from raw transaction
// descriptions and groups near-duplicates using fuzzy matching.
package merchant

import (
	"regexp"
	"strings"

	"github.com/Veraticus/coinsort/internal/similarity"
)

// DefaultGroupThreshold is the similarity score two normalized merchant
// names need to land in the same group.
const DefaultGroupThreshold = 0.8

// prefixPatterns strip leading transaction-type noise. Each pattern is
// applied in turn, so a description can shed more than one prefix.
var prefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(purchase|payment|debit card|credit card|withdrawal|transfer|atm|pos|direct debit)\s+(at|to|from|for)?\s*`),
	regexp.MustCompile(`(?i)^(card payment|online payment|mobile payment)\s+(to|at)?\s*`),
	regexp.MustCompile(`(?i)^(dd|so|bp|tfr|trf|tfp|bgc)\s*`), // bank transaction codes
}

var (
	referenceNumbers = regexp.MustCompile(`\s+#?\d{3,}`)
	slashDates       = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}/\d{2,4}`)
	dashDates        = regexp.MustCompile(`\s+\d{1,2}-\d{1,2}-\d{2,4}`)
	storeNumbers     = regexp.MustCompile(`(?i)\s+(store|location|branch)\s+#?\d+`)
	trailingStateZip = regexp.MustCompile(`(?i)\s+[A-Z]{2}\s+\d{5}(-\d{4})?$`)
	legalSuffixes    = regexp.MustCompile(`(?i)\s+(inc|llc|ltd|corp|corporation)\.?$`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	nonAlphanumeric  = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Clean removes common noise from a merchant name: trailing reference
// numbers, embedded dates, store/branch numbers, state+zip tails, and
// legal-entity suffixes.
func Clean(name string) string {
	cleaned := strings.TrimSpace(name)

	cleaned = referenceNumbers.ReplaceAllString(cleaned, "")
	cleaned = slashDates.ReplaceAllString(cleaned, "")
	cleaned = dashDates.ReplaceAllString(cleaned, "")
	cleaned = storeNumbers.ReplaceAllString(cleaned, "")
	cleaned = trailingStateZip.ReplaceAllString(cleaned, "")
	cleaned = legalSuffixes.ReplaceAllString(cleaned, "")

	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(cleaned, " "))
}

// Extract pulls the merchant name out of a transaction description,
// stripping transaction-type prefixes like "PURCHASE AT" or bank codes,
// then cleaning residual noise.
func Extract(description string) string {
	name := strings.TrimSpace(description)

	for _, prefix := range prefixPatterns {
		name = prefix.ReplaceAllString(name, "")
	}

	return Clean(name)
}

// Normalize produces the lowercase alphanumeric form of a merchant name
// used for matching and grouping.
func Normalize(description string) string {
	normalized := strings.ToLower(Extract(description))
	normalized = nonAlphanumeric.ReplaceAllString(normalized, "")
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(normalized, " "))
}

// GroupSimilar clusters merchant names whose normalized forms fuzzy-match,
// keyed by the normalized form of each group's seed. The pass is greedy and
// order-dependent: each merchant is claimed by the first group whose seed it
// matches, and grouping is not transitively closed.
func GroupSimilar(merchants []string, threshold float64) map[string][]string {
	groups := make(map[string][]string)
	processed := make(map[string]bool)

	for _, m := range merchants {
		if processed[m] {
			continue
		}

		normalized := Normalize(m)
		group := []string{m}
		processed[m] = true

		for _, other := range merchants {
			if processed[other] || m == other {
				continue
			}

			if similarity.IsMatch(normalized, Normalize(other), threshold) {
				group = append(group, other)
				processed[other] = true
			}
		}

		groups[normalized] = group
	}

	return groups
}
