package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/common"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/export"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/extract"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/llm"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/ocr"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/pipeline"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/repository"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Path:        cfg.DB.Path,
		BusyTimeout: 5 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.HealthCheck(ctx, db, 3*time.Second, logger); err != nil {
		logger.Error("db health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("db health ok", "path", cfg.DB.Path)

	repo := repository.NewReceiptRepository(db, logger)

	generator := llm.NewOllamaClient(llm.Config{
		URL:         cfg.LLM.URL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	processor := pipeline.NewProcessor(logger,
		llm.NewAIExtractor(generator, logger),
		extract.NewRuleExtractor(logger),
	)

	ocrx := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		CharWhitelist: cfg.OCR.CharWhitelist,
	}, logger)

	handler := server.NewReceiptHandler(ocrx, processor, repo, export.NewService(repo, logger), logger)
	router := server.NewRouter(handler, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
