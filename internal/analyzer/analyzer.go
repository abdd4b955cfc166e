// Package analyzer talks to the label service that runs the phonetic
// analyzer. The service turns Japanese text into full-context labels:
//
//	POST <endpoint>  {"text": "..."}  ->  {"labels": ["xx^xx-sil+k=o/A:...", ...]}
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/koe/internal/config"
)

// Remote is an HTTP client for the label service. It implements
// engine.Analyzer.
type Remote struct {
	endpoint string
	token    string
	client   *http.Client
}

// New creates a client from config.
func New(cfg config.AnalyzerConfig) *Remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
	}
}

// ExtractFullContext returns the full-context labels of text in order.
func (r *Remote) ExtractFullContext(ctx context.Context, text string) ([]string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshalling analyzer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("analyzer failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Labels []string `json:"labels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding analyzer response: %w", err)
	}

	slog.Debug("analyzer complete", "text_length", len(text), "labels", len(result.Labels))
	return result.Labels, nil
}

// Ping checks that the label service answers. Used as a readiness check.
func (r *Remote) Ping(ctx context.Context) error {
	_, err := r.ExtractFullContext(ctx, "")
	return err
}
