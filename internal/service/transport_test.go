package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/config"
)

func transportFor(t *testing.T, handler http.HandlerFunc) *geminiTransport {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Gemini.APIKey = "test-key"
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Gemini.BaseURL = srv.URL
	return newGeminiTransport(cfg)
}

func TestGeminiTransport(t *testing.T) {
	ctx := context.Background()

	t.Run("joins the text parts of the first candidate", func(t *testing.T) {
		transport := transportFor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "Hello "}, {"text": "world"}]}}]}`))
		})

		text, err := transport.GenerateText(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "Hello world", text)
	})

	t.Run("429 maps to TransientAPIError", func(t *testing.T) {
		transport := transportFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
		})

		_, err := transport.GenerateText(ctx, "prompt")
		require.Error(t, err)

		var transient *TransientAPIError
		require.True(t, errors.As(err, &transient))
		assert.Equal(t, http.StatusTooManyRequests, transient.StatusCode)
		assert.Equal(t, "Quota exceeded", transient.Message)
		assert.True(t, IsRetryable(err))
	})

	t.Run("400 maps to NonRetryableAPIError", func(t *testing.T) {
		transport := transportFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
		})

		_, err := transport.GenerateText(ctx, "prompt")
		require.Error(t, err)

		var nonRetryable *NonRetryableAPIError
		require.True(t, errors.As(err, &nonRetryable))
		assert.False(t, IsRetryable(err))
	})

	t.Run("200 with no candidates is an EmptyResponseError", func(t *testing.T) {
		transport := transportFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates": []}`))
		})

		_, err := transport.GenerateText(ctx, "prompt")
		require.Error(t, err)

		var empty *EmptyResponseError
		assert.True(t, errors.As(err, &empty))
		assert.True(t, IsRetryable(err))
	})
}
