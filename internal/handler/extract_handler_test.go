package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldlens/internal/domain"
	"fieldlens/internal/engine"
	"fieldlens/internal/handler"
	"fieldlens/internal/router"
	"fieldlens/internal/typeconfig"
)

type stubProcessor struct {
	result *engine.ProcessResult
	err    error
	input  engine.ProcessInput
}

func (s *stubProcessor) Process(_ context.Context, input engine.ProcessInput) (*engine.ProcessResult, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestRouter(t *testing.T, p handler.Processor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := typeconfig.LoadStore("")
	require.NoError(t, err)

	return router.Setup(
		handler.NewExtractHandler(p),
		handler.NewTypesHandler(store),
		handler.NewHealthHandler(),
		nil,
	)
}

func okResult() *engine.ProcessResult {
	return &engine.ProcessResult{
		Type: domain.TypeReceipt,
		Record: &domain.MergedRecord{
			Fields:  map[string]domain.FieldValue{},
			Sources: map[string]domain.LayerID{},
		},
		Validation: &domain.ValidationOutcome{Errors: []string{}, Warnings: []string{}},
	}
}

func TestExtract_JSONBodyWithStorageKeyAndText(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	body := `{"storage_key":"uploads/doc.pdf","text":"RECEIPT Corner Cafe Total: 12.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uploads/doc.pdf", p.input.StorageKey)
	assert.Contains(t, p.input.Text, "Corner Cafe")

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestExtract_TextOnlyJSONBodyRejected(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	body := `{"text":"RECEIPT Corner Cafe Total: 12.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_STORAGE_KEY", resp.Error.Code)
	assert.Empty(t, p.input.Text, "processor must not be invoked")
}

func TestExtract_JSONBodyWithStorageKey(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	body := `{"storage_key":"uploads/doc.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uploads/doc.pdf", p.input.StorageKey)
}

func TestExtract_EmptyJSONBodyRejected(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_DOCUMENT", resp.Error.Code)
}

func TestExtract_InvalidDocumentIDRejected(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	body := `{"storage_key":"uploads/doc.pdf","document_id":"not-a-uuid"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtract_ProcessorErrorMapped(t *testing.T) {
	p := &stubProcessor{err: domain.ErrPrimaryLayerFailed}
	r := newTestRouter(t, p)

	body := `{"storage_key":"uploads/doc.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EXTRACTION_FAILED", resp.Error.Code)
}

func TestExtract_MultipartUploadRejectsUnknownContentType(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "file", "doc.txt", "text/plain", []byte("hello"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestExtract_MultipartUploadAccepted(t *testing.T) {
	p := &stubProcessor{result: okResult()}
	r := newTestRouter(t, p)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.7"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", p.input.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), p.input.Bytes)
}

func TestTypes_ListsConfiguredTypes(t *testing.T) {
	r := newTestRouter(t, &stubProcessor{result: okResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/types", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wage_statement")
	assert.Contains(t, w.Body.String(), "bank_statement")
}

// newMultipart writes a single-file multipart body with an explicit part
// content type and returns the request Content-Type header value.
func newMultipart(t *testing.T, buf *bytes.Buffer, field, filename, contentType string, data []byte) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, &stubProcessor{result: okResult()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
