package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SerperClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewSerperClient("test-key")
	c.endpoint = srv.URL
	return c
}

func TestSearchRendersAnswerBoxAndOrganic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "flu symptoms", body["q"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"answerBox": {"answer": "Fever, cough, sore throat."},
			"organic": [
				{"title": "Flu - CDC", "snippet": "Influenza symptoms overview.", "link": "https://cdc.example/flu"}
			]
		}`))
	})

	out, err := c.Search(context.Background(), "flu symptoms")
	require.NoError(t, err)

	assert.Contains(t, out, "Fever, cough, sore throat.")
	assert.Contains(t, out, "Flu - CDC")
	assert.Contains(t, out, "https://cdc.example/flu")
}

func TestSearchFallsBackToAnswerBoxSnippet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answerBox": {"snippet": "snippet only"}}`))
	})

	out, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "snippet only", out)
}

func TestSearchEmptyResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	out, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "No results found.", out)
}

func TestSearchAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
