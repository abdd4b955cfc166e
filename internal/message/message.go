// Package message defines the request and result types flowing between the
// transports and the dispatcher.
package message

import (
	"time"

	"github.com/nadzzz/koe/internal/query"
)

// Mode selects what the dispatcher does with a request.
type Mode string

const (
	// ModeAudioQuery analyzes Text and returns an AudioQuery with predicted
	// durations and pitch.
	ModeAudioQuery Mode = "audio_query"

	// ModeSynthesis renders a caller-supplied Query to WAV.
	ModeSynthesis Mode = "synthesis"

	// ModeTTS renders Text to WAV with the default controls.
	ModeTTS Mode = "tts"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeAudioQuery, ModeSynthesis, ModeTTS:
		return true
	}
	return false
}

// Request is an incoming synthesis request from any transport.
type Request struct {
	// ID is a unique identifier for this request (UUID).
	ID string `json:"id"`

	// Source identifies the caller (transport name or client address).
	Source string `json:"source"`

	Mode Mode `json:"mode"`

	// Text is the input for ModeAudioQuery and ModeTTS.
	Text string `json:"text,omitempty"`

	// Speaker selects the voice. Nil uses the configured default.
	Speaker *int64 `json:"speaker,omitempty"`

	// Query is the input for ModeSynthesis.
	Query *query.AudioQuery `json:"query,omitempty"`

	// EnableInterrogativeUpspeak overrides the configured upspeak default.
	EnableInterrogativeUpspeak *bool `json:"enable_interrogative_upspeak,omitempty"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`
}

// Code classifies a failed request so transports can pick a status.
type Code string

const (
	CodeOK       Code = ""
	CodeInvalid  Code = "invalid_argument" // the caller sent something unusable
	CodeInternal Code = "internal"         // analyzer, model or encoder failure
)

// Result is the outcome of processing a request.
type Result struct {
	// RequestID is the original request ID.
	RequestID string `json:"request_id"`

	// Query is set for ModeAudioQuery.
	Query *query.AudioQuery `json:"query,omitempty"`

	// Audio is a complete WAV file for ModeSynthesis and ModeTTS.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of Audio.
	ContentType string `json:"content_type,omitempty"`

	// Error is set if processing failed; Code says whose fault it was.
	Error string `json:"error,omitempty"`
	Code  Code   `json:"code,omitempty"`
}

// HasAudio returns true if the result carries audio.
func (r *Result) HasAudio() bool {
	return len(r.Audio) > 0
}

// Failed returns true if the request did not succeed.
func (r *Result) Failed() bool {
	return r.Error != ""
}
