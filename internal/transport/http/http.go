// Package http implements the VOICEVOX-compatible HTTP transport for koe.
//
// Clients first POST text to /audio_query, optionally edit the returned
// query, then POST it to /synthesis for a WAV file. /tts does both in one
// call with the configured defaults.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/koe/internal/message"
	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/transport"
)

// maxBody bounds request bodies. Queries for long texts stay well below it.
const maxBody = 8 << 20

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port    int
	version string
	server  *http.Server
}

// New creates a new HTTP transport on the given port. version is reported
// by GET /version.
func New(port int, version string) *Transport {
	return &Transport{port: port, version: version}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// TTSRequest is the body of POST /tts.
type TTSRequest struct {
	Text                       string `json:"text"`
	Speaker                    *int64 `json:"speaker,omitempty"`
	EnableInterrogativeUpspeak *bool  `json:"enable_interrogative_upspeak,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Detail string       `json:"detail"`
	Code   message.Code `json:"code,omitempty"`
}

// Handler returns the mux routing every endpoint to handler.
func (t *Transport) Handler(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /audio_query", func(w http.ResponseWriter, r *http.Request) {
		t.handleAudioQuery(w, r, handler)
	})
	mux.HandleFunc("POST /synthesis", func(w http.ResponseWriter, r *http.Request) {
		t.handleSynthesis(w, r, handler)
	})
	mux.HandleFunc("POST /tts", func(w http.ResponseWriter, r *http.Request) {
		t.handleTTS(w, r, handler)
	})
	mux.HandleFunc("GET /version", t.handleVersion)

	// Swagger UI, serving the docs registered by package docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return mux
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleAudioQuery processes POST /audio_query.
//
// @Summary     Create an audio query
// @Description Analyzes the text and returns its accent phrases with predicted durations and pitch,
// @Description together with the default synthesis controls.
// @Tags        query
// @Produce     json
// @Param       text     query     string  true   "Japanese text"
// @Param       speaker  query     int     false  "Speaker id (defaults to the configured speaker)"
// @Success     200  {object}  query.AudioQuery
// @Failure     422  {object}  ErrorResponse  "Invalid parameters or unparseable text"
// @Failure     500  {object}  ErrorResponse  "Analyzer or model failure"
// @Router      /audio_query [post]
func (t *Transport) handleAudioQuery(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	req := newRequest(r, message.ModeAudioQuery)
	req.Text = r.URL.Query().Get("text")
	if err := parseParams(r, req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), message.CodeInvalid)
		return
	}

	result, ok := dispatch(w, r, handler, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result.Query)
}

// handleSynthesis processes POST /synthesis.
//
// @Summary     Synthesize an audio query
// @Description Renders a (possibly edited) audio query to a WAV file.
// @Tags        synthesis
// @Accept      json
// @Produce     audio/wav
// @Param       query    body      query.AudioQuery  true   "Audio query"
// @Param       speaker  query     int               false  "Speaker id (defaults to the configured speaker)"
// @Param       enable_interrogative_upspeak  query  bool  false  "Add a rising mora to questions"
// @Success     200  {file}    binary
// @Failure     422  {object}  ErrorResponse  "Invalid query"
// @Failure     500  {object}  ErrorResponse  "Model failure"
// @Router      /synthesis [post]
func (t *Transport) handleSynthesis(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	req := newRequest(r, message.ModeSynthesis)
	if err := parseParams(r, req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), message.CodeInvalid)
		return
	}
	var q query.AudioQuery
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&q); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid json: "+err.Error(), message.CodeInvalid)
		return
	}
	req.Query = &q

	result, ok := dispatch(w, r, handler, req)
	if !ok {
		return
	}
	writeAudio(w, result)
}

// handleTTS processes POST /tts.
//
// @Summary     Text to speech
// @Description Analyzes the text and renders it to a WAV file with the default controls.
// @Tags        synthesis
// @Accept      json
// @Produce     audio/wav
// @Param       request  body      TTSRequest  true  "Text and optional speaker"
// @Success     200  {file}    binary
// @Failure     422  {object}  ErrorResponse  "Invalid request or unparseable text"
// @Failure     500  {object}  ErrorResponse  "Analyzer or model failure"
// @Router      /tts [post]
func (t *Transport) handleTTS(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var body TTSRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid json: "+err.Error(), message.CodeInvalid)
		return
	}
	req := newRequest(r, message.ModeTTS)
	req.Text = body.Text
	req.Speaker = body.Speaker
	req.EnableInterrogativeUpspeak = body.EnableInterrogativeUpspeak

	result, ok := dispatch(w, r, handler, req)
	if !ok {
		return
	}
	writeAudio(w, result)
}

// handleVersion processes GET /version.
//
// @Summary     Daemon version
// @Tags        meta
// @Produce     json
// @Success     200  {string}  string
// @Router      /version [get]
func (t *Transport) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, t.version)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func newRequest(r *http.Request, mode message.Mode) *message.Request {
	return &message.Request{
		ID:        uuid.NewString(),
		Source:    "http:" + r.RemoteAddr,
		Mode:      mode,
		Timestamp: time.Now(),
	}
}

// parseParams reads the optional speaker and enable_interrogative_upspeak
// query parameters.
func parseParams(r *http.Request, req *message.Request) error {
	params := r.URL.Query()
	if s := params.Get("speaker"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid speaker %q", s)
		}
		req.Speaker = &id
	}
	if s := params.Get("enable_interrogative_upspeak"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid enable_interrogative_upspeak %q", s)
		}
		req.EnableInterrogativeUpspeak = &b
	}
	return nil
}

// dispatch runs req and writes the error response on failure.
func dispatch(w http.ResponseWriter, r *http.Request, handler transport.Handler, req *message.Request) (*message.Result, bool) {
	result, err := handler(r.Context(), req)
	if err != nil {
		slog.Error("dispatch failed", "request_id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "dispatch error: "+err.Error(), message.CodeInternal)
		return nil, false
	}
	if result.Failed() {
		status := http.StatusInternalServerError
		if result.Code == message.CodeInvalid {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, result.Error, result.Code)
		return nil, false
	}
	return result, true
}

func writeAudio(w http.ResponseWriter, result *message.Result) {
	contentType := result.ContentType
	if contentType == "" {
		contentType = "audio/wav"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Audio)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string, code message.Code) {
	writeJSON(w, status, ErrorResponse{Detail: detail, Code: code})
}
