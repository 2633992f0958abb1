package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout []byte
	err    error
	name   string
	args   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name = name
	f.args = args
	return f.stdout, nil, f.err
}

func TestExtractImageRunsTesseract(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("Corner Cafe\nCoffee   3.50\nTOTAL 3.50\n")}
	e := NewExtractor(Config{PSM: 4, CharWhitelist: "abc"}, nil)
	e.runner = runner

	res, err := e.Extract(context.Background(), "/tmp/receipt.jpg")

	require.NoError(t, err)
	assert.Equal(t, "tesseract", runner.name)
	assert.Contains(t, runner.args, "--psm")
	assert.Contains(t, runner.args, "tessedit_char_whitelist=abc")
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, "Corner Cafe\nCoffee 3.50\nTOTAL 3.50", res.Text)
	assert.Greater(t, res.Confidence, float32(0.2))
}

func TestExtractImageFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	_, err := e.Extract(context.Background(), "/tmp/receipt.png")

	assert.Error(t, err)
}

func TestExtractPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Corner Cafe\r\nCoffee 3.50\r\n"), 0o600))
	e := NewExtractor(Config{}, nil)

	res, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "plain-text", res.Method)
	assert.Equal(t, "Corner Cafe\nCoffee 3.50", res.Text)
}

func TestNormalize(t *testing.T) {
	in := "Corner  Cafe\r\n\r\n\r\n\r\nCoffee\t3.50   \n------\nTOTAL 3.50"

	out := Normalize(in)

	assert.Equal(t, "Corner Cafe\n\nCoffee 3.50\n------\nTOTAL 3.50", out)
}

func TestHeuristicConfidence(t *testing.T) {
	assert.InDelta(t, 0.2, heuristicConfidence("short garbage"), 1e-6)

	rich := "Corner Cafe\n12/05/2024\nCoffee $3.50\nTOTAL $3.78\n"
	long := rich + strings.Repeat("filler ", 14)
	assert.Greater(t, heuristicConfidence(long), float32(0.6))
}
