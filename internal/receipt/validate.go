package receipt

import (
	"strings"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/constants"
)

// Validator warning messages. These reach the end user verbatim.
const (
	WarnMalformedRecord = "Invalid receipt data structure"
	WarnNoItems         = "No items detected"
	WarnTotalMissing    = "Total amount is missing or invalid"
	WarnTotalInvalid    = "Total amount is invalid"
)

// Validate is the last-chance soft check run after either extractor.
// It auto-fills safe defaults in place, never removes data, and downgrades
// every numeric problem into a repair plus a warning. The returned warnings
// accompany the record; callers must not discard them when total stays <= 0.
func Validate(r *Record) []string {
	if r == nil {
		return []string{WarnMalformedRecord}
	}

	var warnings []string

	if strings.TrimSpace(r.Store) == "" {
		r.Store = constants.UnknownStore
	}

	if len(r.Items) == 0 {
		warnings = append(warnings, WarnNoItems)
	}

	// Recovery ladder for a missing total: prefer the stated subtotal, then
	// the item sum, and only then admit defeat.
	if r.Total <= 0 {
		switch {
		case r.Subtotal > 0:
			r.Total = Round2(r.Subtotal + r.Tax)
		case len(r.Items) > 0:
			r.Subtotal = SumItems(r.Items)
			r.Total = Round2(r.Subtotal + r.Tax)
		default:
			warnings = append(warnings, WarnTotalMissing)
		}
	}

	if r.Total <= 0 {
		warnings = append(warnings, WarnTotalInvalid)
	}

	r.Subtotal = Round2(r.Subtotal)
	r.Tax = Round2(r.Tax)
	r.Total = Round2(r.Total)
	return warnings
}
