package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/extract"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
)

// Extractor names reported in Result.Extractor.
const (
	ExtractorAI   = "ai"
	ExtractorRule = "rule"
)

// Result is what a pipeline run hands to the caller: the validated record,
// which extractor produced it, and the validator's warnings. Warnings must
// travel with the record; when total stays <= 0 they are the only signal.
type Result struct {
	Record    receipt.Record `json:"record"`
	Extractor string         `json:"extractor"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Processor coordinates the two extraction strategies: try the AI-assisted
// extractor first, fall back unconditionally to the rule-based one on any
// failure, then run the validator pass over whichever record came out.
type Processor struct {
	logger *slog.Logger
	ai     extract.Extractor
	rule   extract.Extractor
}

func NewProcessor(logger *slog.Logger, ai, rule extract.Extractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, ai: ai, rule: rule}
}

// Process runs the extraction pipeline over one OCR text.
// It never fails: the rule-based path is the floor under every AI failure.
func (p *Processor) Process(ctx context.Context, ocrText string) Result {
	start := time.Now()

	res := Result{Extractor: ExtractorAI}
	rec, err := p.ai.Extract(ctx, ocrText)
	if err != nil {
		p.logger.Warn("processor.ai.fallback", "reason", err)
		rec, _ = p.rule.Extract(ctx, ocrText)
		res.Extractor = ExtractorRule
	}

	res.Warnings = receipt.Validate(&rec)
	res.Record = rec

	p.logger.Info("processor.ok",
		"extractor", res.Extractor,
		"store", rec.Store,
		"items", len(rec.Items),
		"total", rec.Total,
		"warnings", len(res.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}
