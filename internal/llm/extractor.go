package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/extract"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
)

// MinOCRLength is the guardrail below which the model is never invoked:
// OCR output this short is assumed too unreliable to justify a call.
const MinOCRLength = 120

// AIExtractor implements extract.Extractor using a text-generation service.
// On any failure between the service call and JSON decoding it raises rather
// than returning a partial record; the caller falls back to the rule-based
// extractor. The post-processing steps (normalize, reconcile) never raise.
type AIExtractor struct {
	gen    Generator
	logger *slog.Logger
}

func NewAIExtractor(gen Generator, logger *slog.Logger) *AIExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIExtractor{gen: gen, logger: logger}
}

// rawReceipt is the loosely typed shape decoded from model output. Amount
// fields stay `any` because models emit numbers, strings and nulls
// interchangeably.
type rawReceipt struct {
	Store    string `json:"store"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Payment  string `json:"payment"`
	Subtotal any    `json:"subtotal"`
	Tax      any    `json:"tax"`
	Total    any    `json:"total"`
	Items    []struct {
		Name  string `json:"name"`
		Price any    `json:"price"`
	} `json:"items"`
}

// Extract maps OCR text to a structured record via the model.
func (e *AIExtractor) Extract(ctx context.Context, ocrText string) (receipt.Record, error) {
	start := time.Now()

	if len(strings.TrimSpace(ocrText)) < MinOCRLength {
		return receipt.Record{}, fmt.Errorf("%w: %d chars", extract.ErrInputTooShort, len(strings.TrimSpace(ocrText)))
	}

	e.logger.Info("llm.extract.start", "text_len", len(ocrText))

	raw, err := e.gen.Generate(ctx, BuildPrompt(ocrText))
	if err != nil {
		e.logger.Error("llm.extract.service_error",
			"error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return receipt.Record{}, fmt.Errorf("%w: %v", extract.ErrServiceUnavailable, err)
	}

	obj, ok := ExtractJSONObject(raw)
	if !ok {
		e.logger.Error("llm.extract.no_json", "raw_len", len(raw))
		return receipt.Record{}, extract.ErrNoJSONFound
	}
	obj = RepairJSON(obj)

	// Advisory only: a mismatch is logged but the decode still gets its
	// chance, since partial objects are recoverable downstream.
	if err := ValidateJSONAgainstSchema(BuildReceiptJSONSchema(), []byte(obj)); err != nil {
		e.logger.Warn("llm.extract.schema_mismatch", "error", err)
	}

	var data rawReceipt
	if err := json.Unmarshal([]byte(obj), &data); err != nil {
		e.logger.Error("llm.extract.parse_error", "error", err)
		return receipt.Record{}, fmt.Errorf("%w: %v", extract.ErrJSONParse, err)
	}

	rec := e.mapRecord(data)

	e.logger.Info("llm.extract.ok",
		"store", rec.Store,
		"items", len(rec.Items),
		"total", rec.Total,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// mapRecord applies normalization, defaults and reconciliation. No-throw.
func (e *AIExtractor) mapRecord(data rawReceipt) receipt.Record {
	rec := receipt.NewRecord()

	candidates := make([]receipt.RawItem, 0, len(data.Items))
	for _, it := range data.Items {
		candidates = append(candidates, receipt.RawItem{Name: it.Name, Price: it.Price})
	}
	rec.Items = receipt.NormalizeItems(candidates)

	rec.Subtotal = coerceAmount(data.Subtotal)
	rec.Tax = coerceAmount(data.Tax)
	rec.Total = coerceAmount(data.Total)
	receipt.Reconcile(&rec)

	if s := strings.TrimSpace(data.Store); s != "" {
		rec.Store = s
	}
	if s := strings.TrimSpace(data.Date); s != "" {
		rec.Date = s
	}
	if s := strings.TrimSpace(data.Time); s != "" {
		rec.Time = s
	}
	if s := strings.TrimSpace(data.Payment); s != "" {
		rec.Payment = s
	}
	return rec
}

// coerceAmount converts a loosely typed amount; missing/null/junk becomes 0.
func coerceAmount(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(t, "$"))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
