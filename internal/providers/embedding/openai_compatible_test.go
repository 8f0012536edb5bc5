package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model string `json:"model"`
			Input any    `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		n := 1
		if arr, ok := body.Input.([]any); ok {
			n = len(arr)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[`)
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"embedding":[0.1,%d]}`, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbed(t *testing.T) {
	srv := embeddingServer(t)
	c := NewOpenAICompatible(srv.URL, "test-key", "test-model")

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0}, vec)
}

func TestEmbedBatchSplitsLargeInput(t *testing.T) {
	srv := embeddingServer(t)
	c := NewOpenAICompatible(srv.URL, "test-key", "test-model")

	texts := make([]string, 23)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	out, err := c.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, out, 23)
}

func TestEmbedBatchRejectsAllEmptyInput(t *testing.T) {
	c := NewOpenAICompatible("http://unused", "k", "m")

	_, err := c.EmbedBatch(context.Background(), []string{"", "   "})
	require.Error(t, err)
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewOpenAICompatible(srv.URL, "k", "m")
	_, err := c.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
