package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Config for the Ollama client.
type Config struct {
	URL         string        // full generate endpoint; default http://localhost:11434/api/generate
	Model       string        // e.g. "llama3", "mistral", "phi3"
	Temperature float32       // near-deterministic by default
	Timeout     time.Duration // bound on the synchronous call
}

// OllamaClient implements Generator against Ollama's non-streaming
// /api/generate endpoint. At most one attempt per invocation: the rule-based
// fallback exists precisely so no retry policy is needed here.
type OllamaClient struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewOllamaClient(cfg Config, logger *slog.Logger) *OllamaClient {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:11434/api/generate"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt and returns the raw model output.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(generateRequest{
		Model:       c.cfg.Model,
		Prompt:      prompt,
		Temperature: c.cfg.Temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("llm.http.request",
		"req_id", reqID,
		"url", c.cfg.URL,
		"model", c.cfg.Model,
		"content_length", len(bs),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("llm.http.send_error",
			"req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}
