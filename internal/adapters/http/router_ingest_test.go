package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/rag-processor/internal/config"
	"github.com/kirillkom/rag-processor/internal/core/domain"
)

type ingestSuccessFake struct{}

func (f ingestSuccessFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_file.txt",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func multipartBody(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func newRouterForIngestTests() http.Handler {
	return NewRouter(
		config.Config{},
		ingestSuccessFake{},
		previewErrFake{},
		docsErrFake{},
	).Handler()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newRouterForIngestTests()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestUploadDocumentSuccess(t *testing.T) {
	handler := newRouterForIngestTests()

	body, contentType := multipartBody(t, "file.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}

	var docResp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&docResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if docResp["id"] != "doc-1" {
		t.Fatalf("unexpected response: %+v", docResp)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := newRouterForIngestTests()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestPreviewEndpointReturnsPipelineResult(t *testing.T) {
	handler := newRouterForIngestTests()

	payload, _ := json.Marshal(map[string]any{"content": "Q: a?\nA: b.\n\nQ: c?\nA: d."})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/preview", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var preview map[string]any
	if err := json.NewDecoder(res.Body).Decode(&preview); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if preview["strategy"] != "structured-blocks/empty-line-separated" {
		t.Fatalf("unexpected preview: %+v", preview)
	}
}
