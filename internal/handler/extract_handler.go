package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldlens/internal/domain"
	"fieldlens/internal/engine"
)

// Processor runs a document through the extraction pipeline.
type Processor interface {
	Process(ctx context.Context, input engine.ProcessInput) (*engine.ProcessResult, error)
}

// ExtractHandler handles document extraction endpoints.
type ExtractHandler struct {
	processor Processor
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(processor Processor) *ExtractHandler {
	return &ExtractHandler{processor: processor}
}

// extractJSONRequest is the body of POST /api/v1/extract when the document
// is referenced by storage key. Text is supplemental OCR text; the structured
// layer always needs the document bytes, so a storage_key is required.
type extractJSONRequest struct {
	DocumentID string `json:"document_id"`
	StorageKey string `json:"storage_key"`
	Text       string `json:"text"`
}

// Extract handles POST /api/v1/extract. The document arrives either as a
// multipart upload (field "file", optional field "text" with OCR text) or as
// a JSON body naming a storage key.
func (h *ExtractHandler) Extract(c *gin.Context) {
	input, ok := h.parseRequest(c)
	if !ok {
		return
	}

	result, err := h.processor.Process(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ExtractHandler) parseRequest(c *gin.Context) (engine.ProcessInput, bool) {
	var input engine.ProcessInput

	contentType := c.ContentType()
	if contentType == "multipart/form-data" {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
			return input, false
		}
		defer func() { _ = file.Close() }()

		fileType := header.Header.Get("Content-Type")
		if _, allowed := domain.AllowedContentTypes[fileType]; !allowed {
			HandleError(c, domain.ErrUnsupportedFileType)
			return input, false
		}

		data, err := io.ReadAll(file)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
			return input, false
		}

		input.Bytes = data
		input.ContentType = fileType
		input.Text = c.PostForm("text")
		if idStr := c.PostForm("document_id"); idStr != "" {
			id, parseErr := uuid.Parse(idStr)
			if parseErr != nil {
				RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_ID", "document_id must be a UUID")
				return input, false
			}
			input.DocumentID = id
		}
		return input, true
	}

	var req extractJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return input, false
	}
	if req.StorageKey == "" {
		if req.Text == "" {
			HandleError(c, domain.ErrEmptyDocument)
			return input, false
		}
		RespondError(c, http.StatusBadRequest, "MISSING_STORAGE_KEY",
			"storage_key is required; extraction needs the document bytes, text alone is not enough")
		return input, false
	}
	if req.DocumentID != "" {
		id, err := uuid.Parse(req.DocumentID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_ID", "document_id must be a UUID")
			return input, false
		}
		input.DocumentID = id
	}
	input.StorageKey = req.StorageKey
	input.Text = req.Text
	return input, true
}
