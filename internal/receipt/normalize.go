package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/constants"
)

// RawItem is an item candidate before normalization. Price is loosely typed
// because OCR and LLM output disagree on whether amounts are numbers or text.
type RawItem struct {
	Name  string
	Price any
}

var reQuantityPrefix = regexp.MustCompile(`^\d+\s*`)

// NormalizeItems cleans and dedupes raw item candidates. Malformed entries are
// dropped, never raised: an unparseable price is OCR noise, not an error.
// Output preserves first-seen order and never contains two entries sharing
// a (lowercase name, price) key.
func NormalizeItems(raw []RawItem) []LineItem {
	cleaned := make([]LineItem, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, it := range raw {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}

		price, ok := coercePrice(it.Price)
		if !ok {
			continue
		}

		if constants.IsReservedName(name) {
			continue
		}

		// "2 Coffee" -> "Coffee"
		name = reQuantityPrefix.ReplaceAllString(name, "")
		if name == "" {
			continue
		}

		price = Round2(price)
		key := ItemKey(name, price)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, LineItem{Name: name, Price: price})
	}
	return cleaned
}

// coercePrice accepts the numeric and stringy shapes a price arrives in.
func coercePrice(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(t, "$"))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case nil:
		return 0, false
	default:
		return 0, false
	}
}
