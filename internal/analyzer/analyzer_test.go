package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/koe/internal/config"
)

func TestExtractFullContext(t *testing.T) {
	var gotText, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotText = body.Text
		_ = json.NewEncoder(w).Encode(map[string][]string{"labels": {"a", "b"}})
	}))
	defer srv.Close()

	r := New(config.AnalyzerConfig{Endpoint: srv.URL, Token: "t0k"})
	labels, err := r.ExtractFullContext(context.Background(), "こんにちは")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, labels)
	assert.Equal(t, "こんにちは", gotText)
	assert.Equal(t, "Bearer t0k", gotAuth)
}

func TestExtractFullContext_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "dictionary not loaded", http.StatusInternalServerError)
			},
			want: "status 500",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
			want: "decoding analyzer response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := New(config.AnalyzerConfig{Endpoint: srv.URL}).ExtractFullContext(context.Background(), "a")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractFullContext_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	// Runs before srv.Close, which waits for the handler to return.
	defer close(release)

	r := New(config.AnalyzerConfig{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := r.ExtractFullContext(context.Background(), "a")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"labels":[]}`))
	}))
	defer srv.Close()
	assert.NoError(t, New(config.AnalyzerConfig{Endpoint: srv.URL}).Ping(context.Background()))

	srv.Close()
	assert.Error(t, New(config.AnalyzerConfig{Endpoint: srv.URL}).Ping(context.Background()))
}
