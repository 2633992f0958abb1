package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
)

var (
	reDigit    = regexp.MustCompile(`\d`)
	reAmount   = regexp.MustCompile(`\d+\.\d{2}`)
	reTotal    = regexp.MustCompile(`\b(total|grand total)\b`)
	reItemLine = regexp.MustCompile(`^(.+?)\s+(\d+\.\d{2})$`)
)

// RuleExtractor is the line-oriented regex parser. It is deterministic, makes
// no external calls and always returns a best-effort record: it is the
// fallback of last resort and must degrade gracefully on arbitrary noise
// rather than fail closed.
type RuleExtractor struct {
	logger *slog.Logger
}

func NewRuleExtractor(logger *slog.Logger) *RuleExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleExtractor{logger: logger}
}

// Extract implements Extractor. The error is always nil.
func (e *RuleExtractor) Extract(_ context.Context, ocrText string) (receipt.Record, error) {
	rec := ParseReceipt(ocrText)
	e.logger.Info("rule.extract.ok",
		"store", rec.Store,
		"items", len(rec.Items),
		"subtotal", rec.Subtotal,
		"tax", rec.Tax,
		"total", rec.Total,
	)
	return rec, nil
}

// ParseReceipt parses OCR text into a record using regex line classification.
//
// Amount lines are classified in priority order: a "subtotal" line overwrites
// the running subtotal ("subtotal" is checked before "total" so the substring
// never misroutes), a "tax" line accumulates into tax (receipts may carry
// several tax lines), and a token-boundary "total"/"grand total" line
// overwrites the total. A classified line is consumed; no item match is
// attempted on it. Date, time and payment are not extracted by this path.
func ParseReceipt(ocrText string) receipt.Record {
	rec := receipt.NewRecord()

	lines := make([]string, 0, 32)
	for _, l := range strings.Split(ocrText, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}

	// Store name: first of the leading lines with no digit and some length.
	head := lines
	if len(head) > 5 {
		head = head[:5]
	}
	for _, l := range head {
		if !reDigit.MatchString(l) && len(l) > 3 {
			rec.Store = l
			break
		}
	}

	var candidates []receipt.RawItem
	for _, l := range lines {
		low := strings.ToLower(l)

		if strings.Contains(low, "subtotal") {
			rec.Subtotal = firstAmount(l)
			continue
		}
		if strings.Contains(low, "tax") {
			rec.Tax += firstAmount(l)
			continue
		}
		if reTotal.MatchString(low) {
			rec.Total = firstAmount(l)
			continue
		}

		if m := reItemLine.FindStringSubmatch(l); m != nil {
			candidates = append(candidates, receipt.RawItem{Name: m[1], Price: m[2]})
		}
	}

	rec.Items = receipt.NormalizeItems(candidates)
	receipt.Reconcile(&rec)
	return rec
}

// firstAmount returns the first \d+.\d{2} token on the line, or 0.
func firstAmount(line string) float64 {
	m := reAmount.FindString(line)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
