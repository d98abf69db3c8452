package model

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts covers the locale formats statements commonly use. Order
// matters: US slash dates are tried before the day-first dash form.
var dateLayouts = []string{
	"01/02/2006", // MM/DD/YYYY
	"1/2/2006",
	"02-01-2006", // DD-MM-YYYY
	"2-1-2006",
	"2006-01-02", // ISO
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// ParseDate parses a statement date in any of the supported locale formats.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
