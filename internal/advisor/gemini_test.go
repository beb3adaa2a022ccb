package advisor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/atacadao/internal/advisor"
	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

func TestGeminiClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg, _ := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", cfg["responseMimeType"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"tips\":"},{"text":"[]}"}]},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	c := advisor.NewGeminiClient(server.URL+"/", "gemini-test", "key-123", 5*time.Second)

	got, err := c.Generate(context.Background(), "hello", map[string]any{"type": "object"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tips":[]}`, string(got))
}

func TestGeminiClient_Errors(t *testing.T) {
	type testCase struct {
		name      string
		status    int
		body      string
		malformed bool
	}

	tests := []testCase{
		{name: "ServerError", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "Quota", status: http.StatusTooManyRequests, body: `{}`},
		{name: "NoCandidates", status: http.StatusOK, body: `{"candidates":[]}`, malformed: true},
		{name: "NotJSON", status: http.StatusOK, body: `<html>`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			c := advisor.NewGeminiClient(server.URL, "m", "k", time.Second)

			_, err := c.Generate(context.Background(), "x", nil)
			require.Error(t, err)
			assert.Equal(t, tt.malformed, errors.Is(err, apperr.ErrMalformedDocument))
		})
	}
}
