package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/rag-processor/internal/config"
	"github.com/kirillkom/rag-processor/internal/core/domain"
)

type ingestErrFake struct {
	err error
}

func (f ingestErrFake) Upload(context.Context, string, string, io.Reader) (*domain.Document, error) {
	return nil, f.err
}

type previewErrFake struct {
	err error
}

func (f previewErrFake) Preview(context.Context, string) (*domain.PreviewResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PreviewResult{Strategy: "structured-blocks/empty-line-separated"}, nil
}

type docsErrFake struct {
	err error
}

func (f docsErrFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: "doc-1", Filename: "a", MimeType: "text/plain", StoragePath: "a", Status: domain.StatusReady}, nil
}

func TestUploadMapsDomainInvalidInputTo400(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestErrFake{err: domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty file"))},
		previewErrFake{},
		docsErrFake{},
	).Handler()

	body, contentType := multipartBody(t, "file.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestPreviewMapsUnknownStrategyTo422(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestErrFake{},
		previewErrFake{err: domain.WrapError(domain.ErrUnknownStrategy, "preview", errors.New("id=no/such"))},
		docsErrFake{},
	).Handler()

	payload, _ := json.Marshal(map[string]any{"content": "#!strategy: no/such\n\ntext"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/preview", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
}

func TestPreviewRejectsEmptyContent(t *testing.T) {
	handler := NewRouter(config.Config{}, ingestErrFake{}, previewErrFake{}, docsErrFake{}).Handler()

	payload, _ := json.Marshal(map[string]any{"content": "   "})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/preview", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestErrFake{},
		previewErrFake{},
		docsErrFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))},
	).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
