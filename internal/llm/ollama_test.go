package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClientGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"store":"Cafe"}`})
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{URL: srv.URL, Model: "llama3"}, nil)

	out, err := c.Generate(context.Background(), "read this receipt")

	require.NoError(t, err)
	assert.Equal(t, `{"store":"Cafe"}`, out)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "read this receipt", got.Prompt)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.1, got.Temperature, 1e-6)
}

func TestOllamaClientNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{URL: srv.URL}, nil)

	_, err := c.Generate(context.Background(), "prompt")

	assert.Error(t, err)
}

func TestOllamaClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewOllamaClient(Config{URL: srv.URL}, nil)

	_, err := c.Generate(context.Background(), "prompt")

	assert.Error(t, err)
}

func TestOllamaClientDefaults(t *testing.T) {
	c := NewOllamaClient(Config{}, nil)

	assert.Equal(t, "http://localhost:11434/api/generate", c.cfg.URL)
	assert.Equal(t, "llama3", c.cfg.Model)
	assert.InDelta(t, 0.1, c.cfg.Temperature, 1e-6)
	assert.NotZero(t, c.cfg.Timeout)
}
