package polish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "gsk_test_secret_key"

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completion(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"llama3-8b-8192",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` +
		mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		APIKey:     testKey,
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg)
}

func TestPolishSuccess(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("  Collected 12 samples; next: run PCR.  ")))
	}, nil)

	out, err := client.Polish(context.Background(), Request{Text: "got 12 samples, pcr next", Intent: IntentActivity})
	require.NoError(t, err)
	assert.Equal(t, "Collected 12 samples; next: run PCR.", out)

	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "got 12 samples, pcr next", got.Messages[1].Content)
}

func TestPolishModelOverride(t *testing.T) {
	var model string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		model = req.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("ok")))
	}, nil)

	_, err := client.Polish(context.Background(), Request{Text: "draft", Model: "mixtral-8x7b-32768", Intent: IntentGoal})
	require.NoError(t, err)
	assert.Equal(t, "mixtral-8x7b-32768", model)
}

func TestPolishRetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.Header().Set("Retry-After-Ms", "1")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(completion("fixed")))
	}, nil)

	out, err := client.Polish(context.Background(), Request{Text: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPolishGivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After-Ms", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"unavailable","type":"server_error"}}`))
	}, nil)

	_, err := client.Polish(context.Background(), Request{Text: "draft"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPolishDoesNotRetryUnauthorizedAndRedactsKey(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key ` + testKey + `","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}, nil)

	_, err := client.Polish(context.Background(), Request{Text: "draft"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotContains(t, err.Error(), testKey)
	assert.Contains(t, err.Error(), redacted)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
}

func TestPolishTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, func(c *Config) {
		c.Timeout = 50 * time.Millisecond
		c.MaxRetries = 0
	})

	start := time.Now()
	_, err := client.Polish(context.Background(), Request{Text: "draft"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotContains(t, err.Error(), testKey)
}

func TestPolishEmptyChoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("   ")))
	}, nil)

	_, err := client.Polish(context.Background(), Request{Text: "draft"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestPolishNotConfigured(t *testing.T) {
	client := New(Config{})
	assert.False(t, client.Enabled())

	_, err := client.Polish(context.Background(), Request{Text: "draft"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestParseIntent(t *testing.T) {
	in, err := ParseIntent("")
	require.NoError(t, err)
	assert.Equal(t, IntentActivity, in)

	in, err = ParseIntent("Goal")
	require.NoError(t, err)
	assert.Equal(t, IntentGoal, in)

	_, err = ParseIntent("poem")
	assert.Error(t, err)
}
