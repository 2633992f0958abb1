package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/constants"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/common"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/ocr"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/pipeline"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/repository"
)

// TextExtractor reads receipt text out of an uploaded file (OCR for images).
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// Pipeline runs the extraction pipeline over one OCR text.
type Pipeline interface {
	Process(ctx context.Context, ocrText string) pipeline.Result
}

// Exporter renders the stored receipts as an XLSX workbook.
type Exporter interface {
	ExportReceiptsXLSX(ctx context.Context) ([]byte, error)
}

type ReceiptHandler struct {
	ocr      TextExtractor
	pipeline Pipeline
	repo     repository.ReceiptRepository
	exporter Exporter
	logger   *slog.Logger
}

func NewReceiptHandler(ocrx TextExtractor, pipe Pipeline, repo repository.ReceiptRepository, exporter Exporter, logger *slog.Logger) *ReceiptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptHandler{ocr: ocrx, pipeline: pipe, repo: repo, exporter: exporter, logger: logger}
}

type extractRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractText runs the pipeline over raw OCR text without persisting anything.
func (h *ReceiptHandler) ExtractText(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	res := h.pipeline.Process(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, res)
}

// UploadReceipt accepts a receipt file, OCRs it, extracts fields and stores the result.
func (h *ReceiptHandler) UploadReceipt(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}

	filename := filepath.Base(file.Filename)
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type: " + ext})
		return
	}

	exists, err := h.repo.ExistsByFilename(c.Request.Context(), filename)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "receipt already uploaded: " + filename})
		return
	}

	dir, err := os.MkdirTemp("", "receipt-upload-*")
	if err != nil {
		h.serverError(c, err)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.serverError(c, err)
		return
	}

	ocrRes, err := h.ocr.Extract(c.Request.Context(), path)
	if err != nil {
		h.logger.Error("upload.ocr_failed", "filename", filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read text from file"})
		return
	}

	res := h.pipeline.Process(c.Request.Context(), ocrRes.Text)
	stored, err := h.repo.Insert(c.Request.Context(), filename, res.Extractor, res.Record)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "receipt already uploaded: " + filename})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"receipt":        stored,
		"warnings":       res.Warnings,
		"ocr_confidence": ocrRes.Confidence,
	})
}

func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	recs, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if recs == nil {
		recs = []*repository.StoredReceipt{}
	}
	c.JSON(http.StatusOK, gin.H{"receipts": recs, "count": len(recs)})
}

func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	rec, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ReceiptHandler) DeleteReceipt(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReceiptHandler) ExportReceipts(c *gin.Context) {
	b, err := h.exporter.ExportReceiptsXLSX(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	name := "receipts-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func (h *ReceiptHandler) Stats(c *gin.Context) {
	sum, err := h.repo.Summarize(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *ReceiptHandler) pathID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt id"})
		return 0, false
	}
	return id, true
}

func (h *ReceiptHandler) serverError(c *gin.Context, err error) {
	h.logger.Error("http.internal_error",
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
