package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const searchEndpoint = "https://google.serper.dev/search"

// SerperClient queries the Serper Google-search API.
type SerperClient struct {
	httpClient *resty.Client
	apiKey     string
	endpoint   string
	numResults int
}

func NewSerperClient(apiKey string) *SerperClient {
	client := resty.New().
		SetHeader("User-Agent", "MediQuery-Assist/1.0").
		SetTimeout(15 * time.Second)

	return &SerperClient{
		httpClient: client,
		apiKey:     apiKey,
		endpoint:   searchEndpoint,
		numResults: 10,
	}
}

type serperResponse struct {
	AnswerBox map[string]any `json:"answerBox,omitempty"`
	Organic   []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (c *SerperClient) Search(ctx context.Context, query string) (string, error) {
	var result serperResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"q": query, "num": c.numResults}).
		SetResult(&result).
		Post(c.endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to query Serper search API: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("Serper search API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var b strings.Builder
	if ab := result.AnswerBox; ab != nil {
		if answer, ok := ab["answer"].(string); ok && answer != "" {
			b.WriteString(answer)
			b.WriteString("\n\n")
		} else if snippet, ok := ab["snippet"].(string); ok && snippet != "" {
			b.WriteString(snippet)
			b.WriteString("\n\n")
		}
	}
	for _, r := range result.Organic {
		fmt.Fprintf(&b, "%s\n%s\n%s\n\n", r.Title, r.Snippet, r.Link)
	}
	if b.Len() == 0 {
		return "No results found.", nil
	}
	return strings.TrimSpace(b.String()), nil
}
