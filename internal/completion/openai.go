package completion

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

const maxResponseBytes = 4 << 20

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
// Completion calls are not retried; callers fall back to extractive synthesis
// when a call fails.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewOpenAIClient creates a chat client against baseURL (e.g.
// "https://api.openai.com/v1").
func NewOpenAIClient(baseURL, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("completion base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends one chat turn and returns the model's reply. The response
// format is pinned to a JSON object so callers can parse the reply strictly.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.ExternalServiceError{Service: "completion", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &models.ExternalServiceError{Service: "completion", Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &models.ExternalServiceError{
			Service: "completion",
			Err:     fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, truncateBody(body)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &models.ExternalServiceError{Service: "completion", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &models.ExternalServiceError{Service: "completion", Err: fmt.Errorf("chat endpoint returned no choices")}
	}
	return &Result{
		Content:    parsed.Choices[0].Message.Content,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (c *OpenAIClient) Close() error {
	return nil
}

func truncateBody(b []byte) string {
	const limit = 512
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
