package receipt

import (
	"math"
	"strconv"
	"strings"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/constants"
)

// LineItem is one purchased item with its price rounded to two decimals.
type LineItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Record is the canonical structured output of both extractors.
// Monetary fields are rounded to two decimals; items keep first-seen order.
type Record struct {
	Store    string     `json:"store"`
	Date     string     `json:"date"`
	Time     string     `json:"time"`
	Payment  string     `json:"payment"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Total    float64    `json:"total"`
	Items    []LineItem `json:"items"`
}

// NewRecord returns a record with the sentinel defaults both extractors start from.
func NewRecord() Record {
	return Record{
		Store:   constants.UnknownStore,
		Date:    constants.NotAvailable,
		Time:    constants.NotAvailable,
		Payment: constants.NotAvailable,
		Items:   []LineItem{},
	}
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ItemKey is the dedup identity of a line item: lowercase name plus the exact
// price. No tolerance matching; 3.5 and 3.50 parse to the same float and share
// a key, 3.50 and 3.51 never do.
func ItemKey(name string, price float64) string {
	return strings.ToLower(name) + "-" + strconv.FormatFloat(price, 'f', -1, 64)
}

// SumItems returns the rounded sum of item prices.
func SumItems(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price
	}
	return Round2(sum)
}
