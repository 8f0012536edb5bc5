package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatible talks to any /embeddings endpoint that speaks the
// OpenAI wire format (OpenAI, DashScope, local inference servers).
type OpenAICompatible struct {
	BaseURL string
	APIKey  string
	Model   string

	httpClient *http.Client
}

func NewOpenAICompatible(baseURL, apiKey, model string) *OpenAICompatible {
	return &OpenAICompatible{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OpenAICompatible) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := c.request(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return out[0], nil
}

func (c *OpenAICompatible) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	trimmed := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := strings.TrimSpace(t); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no non-empty texts for embedding")
	}

	// Batch to stay under provider input limits.
	const batchSize = 10
	var result [][]float32
	for i := 0; i < len(trimmed); i += batchSize {
		end := i + batchSize
		if end > len(trimmed) {
			end = len(trimmed)
		}
		batch, err := c.request(ctx, trimmed[i:end])
		if err != nil {
			return nil, err
		}
		result = append(result, batch...)
	}
	if len(result) != len(trimmed) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(result), len(trimmed))
	}
	return result, nil
}

func (c *OpenAICompatible) request(ctx context.Context, input any) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model": c.Model,
		"input": input,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request failed: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build embedding request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	out := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		out[i] = parsed.Data[i].Embedding
	}
	return out, nil
}
