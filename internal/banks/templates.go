// Package banks provides statement-template lookup for display formatting.
// Detection never influences classification decisions.
package banks

import "strings"

// Template describes a bank's statement conventions.
type Template struct {
	ID             string
	Name           string
	Country        string
	CurrencySymbol string
	DateFormats    []string
	indicators     []string
}

// Templates returns the known bank templates.
func Templates() []Template {
	return []Template{
		{ID: "chase", Name: "Chase Bank", Country: "USA", DateFormats: []string{"MM/DD/YYYY"}, CurrencySymbol: "$", indicators: []string{"chase", "jpmorgan chase"}},
		{ID: "bank_of_america", Name: "Bank of America", Country: "USA", DateFormats: []string{"MM/DD/YYYY"}, CurrencySymbol: "$", indicators: []string{"bank of america", "boa"}},
		{ID: "wells_fargo", Name: "Wells Fargo", Country: "USA", DateFormats: []string{"MM/DD/YYYY"}, CurrencySymbol: "$", indicators: []string{"wells fargo"}},
		{ID: "citi", Name: "Citibank", Country: "USA", DateFormats: []string{"MM/DD/YYYY"}, CurrencySymbol: "$", indicators: []string{"citibank", "citi"}},
		{ID: "capital_one", Name: "Capital One", Country: "USA", DateFormats: []string{"MM/DD/YYYY"}, CurrencySymbol: "$", indicators: []string{"capital one"}},
		{ID: "hsbc_uk", Name: "HSBC UK", Country: "UK", DateFormats: []string{"DD/MM/YYYY"}, CurrencySymbol: "£", indicators: []string{"hsbc"}},
		{ID: "barclays", Name: "Barclays", Country: "UK", DateFormats: []string{"DD/MM/YYYY"}, CurrencySymbol: "£", indicators: []string{"barclays"}},
		{ID: "lloyds", Name: "Lloyds Bank", Country: "UK", DateFormats: []string{"DD/MM/YYYY"}, CurrencySymbol: "£", indicators: []string{"lloyds"}},
		{ID: "natwest", Name: "NatWest", Country: "UK", DateFormats: []string{"DD/MM/YYYY"}, CurrencySymbol: "£", indicators: []string{"natwest", "national westminster"}},
		{ID: "deutsche_bank", Name: "Deutsche Bank", Country: "Germany", DateFormats: []string{"DD.MM.YYYY"}, CurrencySymbol: "€", indicators: []string{"deutsche bank"}},
		{ID: "bnp_paribas", Name: "BNP Paribas", Country: "France", DateFormats: []string{"DD/MM/YYYY"}, CurrencySymbol: "€", indicators: []string{"bnp paribas"}},
	}
}

// Detect scans raw statement text for a known bank's indicators and returns
// its template. Earlier templates win when several match. The second return
// value is false when no template matches.
func Detect(rawText string) (Template, bool) {
	lower := strings.ToLower(rawText)

	for _, tmpl := range Templates() {
		for _, indicator := range tmpl.indicators {
			if strings.Contains(lower, indicator) {
				return tmpl, true
			}
		}
	}
	return Template{}, false
}
