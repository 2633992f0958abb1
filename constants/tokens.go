package constants

import "strings"

// NotAvailable is the sentinel stored for fields the extractors could not read.
const NotAvailable = "N/A"

// UnknownStore is the default merchant name when no store line is found.
const UnknownStore = "Unknown"

// reservedTokens mark lines/names that describe amounts, not purchased items.
var reservedTokens = []string{"tax", "total", "subtotal", "service", "tip", "change"}

// IsReservedName reports whether a candidate item name is really an
// amount line (tax, total, ...) that must never appear in the item list.
func IsReservedName(name string) bool {
	low := strings.ToLower(name)
	for _, tok := range reservedTokens {
		if strings.Contains(low, tok) {
			return true
		}
	}
	return false
}
