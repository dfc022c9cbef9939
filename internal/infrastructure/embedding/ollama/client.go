// Package ollama embeds chunk texts through a local Ollama instance.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/rag-processor/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Embed returns one vector per input text, in order. Batches are sent in
// a single request; Ollama preserves input ordering.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": c.embedModel,
		"input": texts,
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/embed", request, &response, "embed")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.embed", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed chunks", err)
	}

	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: %d vectors for %d inputs", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}
