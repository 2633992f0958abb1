package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/common"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/extract"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/llm"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/ocr"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/pipeline"
)

// extract runs the OCR and extraction pipeline over a single file and
// prints the result as JSON. Useful for smoke-testing receipts without
// the HTTP server or the database.
func main() {
	ruleOnly := flag.Bool("rule-only", false, "skip the model and use only the rule-based extractor")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "extract [-rule-only] <receipt file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ocrx := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		CharWhitelist: cfg.OCR.CharWhitelist,
	}, logger)

	ocrRes, err := ocrx.Extract(ctx, path)
	if err != nil {
		logger.Error("ocr failed", "path", path, "error", err)
		os.Exit(1)
	}

	rule := extract.NewRuleExtractor(logger)
	var processor *pipeline.Processor
	if *ruleOnly {
		processor = pipeline.NewProcessor(logger, rule, rule)
	} else {
		generator := llm.NewOllamaClient(llm.Config{
			URL:         cfg.LLM.URL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		processor = pipeline.NewProcessor(logger, llm.NewAIExtractor(generator, logger), rule)
	}

	res := processor.Process(ctx, ocrRes.Text)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
