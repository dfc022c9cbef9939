package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{Index: 0, Text: "first block", StartOffset: 0, EndOffset: 11, Metadata: domain.Metadata{"business": "acme"}},
		{Index: 1, Text: "second block", StartOffset: 11, EndOffset: 23},
	}
}

func TestDeliverEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := client.Deliver(context.Background(), doc, testChunks(), vectors); err != nil {
		t.Fatalf("first Deliver() error = %v", err)
	}
	if err := client.Deliver(context.Background(), doc, testChunks(), vectors); err != nil {
		t.Fatalf("second Deliver() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}
}

func TestDeliverPayloadCarriesOffsetProvenance(t *testing.T) {
	var captured struct {
		Points []struct {
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode upsert body: %v", err)
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt", DocumentType: "product_catalog", StrategyUsed: "products/semantic-boundary"}
	vectors := [][]float32{{0.1}, {0.2}}

	if err := client.Deliver(context.Background(), doc, testChunks(), vectors); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(captured.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(captured.Points))
	}
	payload := captured.Points[1].Payload
	if payload["start_offset"] != float64(11) || payload["end_offset"] != float64(23) {
		t.Fatalf("unexpected offsets in payload: %v", payload)
	}
	if payload["strategy"] != "products/semantic-boundary" {
		t.Fatalf("unexpected strategy in payload: %v", payload)
	}
	if captured.Points[0].Payload["business"] != "acme" {
		t.Fatalf("expected chunk metadata in payload: %v", captured.Points[0].Payload)
	}
}

func TestEnsureCollectionIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/docs" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	err := client.Deliver(context.Background(), doc, testChunks()[:1], [][]float32{{0.1, 0.2}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got == "" || !strings.Contains(got, "boom") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}
