package sic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sells-group/leads-cli/internal/resilience"
)

func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	}
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestGeminiClassifier_Classify(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gen, _ := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", gen["responseMimeType"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResponse(`{"results":[{"sic":"62012","description":"Software"},{"sic":"62020"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewGeminiClassifier(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
		Retry:   fastRetry(),
		Logger:  zap.NewNop(),
	}, testCatalog(t))
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "software consultancy")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "62012", got[0].Code)
	assert.Equal(t, "Information technology consultancy activities", got[1].Description)
}

func TestGeminiClassifier_RetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResponse(`{"results":[{"sic":"69201","description":"Accounting"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewGeminiClassifier(context.Background(), GeminiConfig{
		APIKey: "k", BaseURL: srv.URL, Retry: fastRetry(), Logger: zap.NewNop(),
	}, testCatalog(t))
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "accountants")

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiClassifier_EmptyQuery(t *testing.T) {
	c, err := NewGeminiClassifier(context.Background(), GeminiConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, testCatalog(t))
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), " ")
	assert.ErrorIs(t, err, ErrQueryRequired)
}

func TestNewGeminiClassifier_RequiresKey(t *testing.T) {
	_, err := NewGeminiClassifier(context.Background(), GeminiConfig{}, testCatalog(t))
	assert.Error(t, err)
}

func TestClassifyGeminiErr(t *testing.T) {
	tests := []struct {
		name          string
		in            error
		wantTransient bool
	}{
		{name: "api_429", in: genai.APIError{Code: 429}, wantTransient: true},
		{name: "api_503", in: genai.APIError{Code: 503}, wantTransient: true},
		{name: "api_400", in: genai.APIError{Code: 400}, wantTransient: false},
		{name: "plain", in: errors.New("boom"), wantTransient: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var te *resilience.TransientError
			assert.Equal(t, tt.wantTransient, errors.As(classifyGeminiErr(tt.in), &te))
		})
	}
}
