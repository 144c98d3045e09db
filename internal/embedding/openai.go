package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/medioracle/medirag/internal/models"
)

// Response bodies are bounded; a full batch of 1536-dim vectors stays well
// under this.
const maxResponseBytes = 16 << 20

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. Failed calls
// are retried with a short backoff up to maxRetries before surfacing an
// ExternalServiceError.
type OpenAIEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	maxRetries int
	client     *http.Client
	cache      *Cache
}

// NewOpenAIEmbedder creates an embedder against baseURL (e.g.
// "https://api.openai.com/v1"). cacheSize bounds the text-to-vector LRU; zero
// disables caching.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimensions int, timeout time.Duration, maxRetries, cacheSize int) (*OpenAIEmbedder, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("embedding base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if dimensions <= 0 {
		dimensions = 1536
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	e := &OpenAIEmbedder{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
	}
	if cacheSize > 0 {
		e.cache = NewCache(cacheSize)
	}
	return e, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds texts in one API call, serving cached entries locally.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if e.cache != nil {
			if vec, ok := e.cache.Get(text); ok {
				out[i] = vec
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := e.requestEmbeddings(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range vectors {
		if len(vec) != e.dimensions {
			return nil, &models.DimensionMismatchError{Want: e.dimensions, Got: len(vec)}
		}
		out[missingIdx[j]] = vec
		if e.cache != nil {
			e.cache.Set(missing[j], vec)
		}
	}
	return out, nil
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// requestEmbeddings posts the batch, retrying transient failures with backoff.
func (e *OpenAIEmbedder) requestEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(embeddingRequest{
		Model:      e.model,
		Input:      texts,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, time.Duration(attempt)*300*time.Millisecond); err != nil {
				return nil, &models.ExternalServiceError{Service: "embedding", Err: err}
			}
		}
		vectors, err := e.post(ctx, payload, len(texts))
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &models.ExternalServiceError{Service: "embedding", Err: lastErr}
}

func (e *OpenAIEmbedder) post(ctx context.Context, payload []byte, want int) ([][]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings endpoint returned %d: %s", resp.StatusCode, truncateBody(body))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Data) != want {
		return nil, fmt.Errorf("embeddings endpoint returned %d vectors, want %d", len(parsed.Data), want)
	}
	// Data may arrive out of order; place by index.
	vectors := make([][]float32, want)
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= want {
			return nil, fmt.Errorf("embeddings endpoint returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embeddings endpoint missing vector for index %d", i)
		}
	}
	return vectors, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncateBody(b []byte) string {
	const limit = 512
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
