package extract

import (
	"context"
	"errors"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
)

// Extractor turns raw OCR text into a structured receipt record.
// The AI-assisted implementation may fail; the rule-based one never does.
type Extractor interface {
	Extract(ctx context.Context, ocrText string) (receipt.Record, error)
}

// Failure kinds for the AI-assisted path. Every one of them is recoverable:
// the caller catches it and falls back to the rule-based extractor.
var (
	// ErrInputTooShort guards the model call: OCR output under the minimum
	// length is assumed too unreliable to justify invoking the service.
	ErrInputTooShort = errors.New("ocr text too short for ai extraction")

	// ErrServiceUnavailable wraps transport failures, timeouts and non-2xx
	// responses from the text-generation service.
	ErrServiceUnavailable = errors.New("text-generation service unavailable")

	// ErrNoJSONFound means the service responded but no JSON object could be
	// located in its output.
	ErrNoJSONFound = errors.New("no json found in ai output")

	// ErrJSONParse means the located JSON object still failed to decode after
	// repair.
	ErrJSONParse = errors.New("ai output json failed to parse")
)
