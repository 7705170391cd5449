package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestCompleteReturnsContentUnmodified(t *testing.T) {
	content := `{"splits":[{"cardId":"c1","amount":100,"reason":"x"}],"explanation":"ok"}`
	resp := map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	}
	body, _ := json.Marshal(resp)

	srv := completionServer(t, http.StatusOK, string(body))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	got, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCompleteEmptyContent(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":""}}]}`)
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"choices":[]}`)
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteAPIError(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`)
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.NotErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := NewClient("", "http://localhost:0", "gpt-4o")
	_, err := client.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestCompleteHonorsContext(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	_, err := client.Complete(ctx, "s", "u")
	assert.Error(t, err)
}
