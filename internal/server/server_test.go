package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/export"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/ocr"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/pipeline"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/repository"
)

type stubOCR struct{}

func (stubOCR) Extract(_ context.Context, path string) (ocr.ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ocr.ExtractionResult{}, err
	}
	return ocr.ExtractionResult{Text: string(b), Method: "plain-text", Confidence: 0.9}, nil
}

type stubPipeline struct {
	res pipeline.Result
}

func (s stubPipeline) Process(context.Context, string) pipeline.Result {
	return s.res
}

func fixedResult() pipeline.Result {
	return pipeline.Result{
		Record: receipt.Record{
			Store:    "Corner Cafe",
			Date:     "12/05/2024",
			Time:     "09:14",
			Payment:  "CASH",
			Subtotal: 3.50,
			Tax:      0.28,
			Total:    3.78,
			Items:    []receipt.LineItem{{Name: "Coffee", Price: 3.50}},
		},
		Extractor: pipeline.ExtractorAI,
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(context.Background(), repository.Config{
		Path:        filepath.Join(t.TempDir(), "receipts.db"),
		BusyTimeout: time.Second,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, logger) })

	repo := repository.NewReceiptRepository(db, logger)
	h := NewReceiptHandler(stubOCR{}, stubPipeline{res: fixedResult()}, repo, export.NewService(repo, logger), logger)
	return NewRouter(h, logger)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(testRouter(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractText(t *testing.T) {
	router := testRouter(t)

	body := `{"text": "Corner Cafe\nCoffee 3.50\nTOTAL 3.78"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := do(router, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, pipeline.ExtractorAI, res.Extractor)
	assert.Equal(t, "Corner Cafe", res.Record.Store)
}

func TestExtractTextMissingBody(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(router, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadStoresReceipt(t *testing.T) {
	router := testRouter(t)

	w := do(router, uploadRequest(t, "receipt1.txt", "Corner Cafe\nCoffee 3.50\nTOTAL 3.78"))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Receipt repository.StoredReceipt `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "receipt1.txt", resp.Receipt.Filename)
	assert.Equal(t, "Corner Cafe", resp.Receipt.Record.Store)

	// same filename again is rejected
	w = do(router, uploadRequest(t, "receipt1.txt", "Corner Cafe\nCoffee 3.50\nTOTAL 3.78"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	router := testRouter(t)

	w := do(router, uploadRequest(t, "receipt.pdf", "%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadMissingFile(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", nil)
	w := do(router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListGetDelete(t *testing.T) {
	router := testRouter(t)

	w := do(router, uploadRequest(t, "receipt1.txt", "Corner Cafe\nCoffee 3.50"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/receipts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/receipts/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, httptest.NewRequest(http.MethodDelete, "/api/v1/receipts/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/receipts/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetInvalidID(t *testing.T) {
	router := testRouter(t)

	w := do(router, httptest.NewRequest(http.MethodGet, "/api/v1/receipts/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	router := testRouter(t)

	w := do(router, uploadRequest(t, "receipt1.txt", "Corner Cafe\nCoffee 3.50"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/receipts/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestStats(t *testing.T) {
	router := testRouter(t)

	w := do(router, uploadRequest(t, "receipt1.txt", "Corner Cafe\nCoffee 3.50"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var sum repository.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.Count)
	assert.InDelta(t, 3.78, sum.TotalSpend, 1e-9)
}

func TestRequestIDHeader(t *testing.T) {
	router := testRouter(t)

	w := do(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = do(router, req)
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
