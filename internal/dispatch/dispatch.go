// Package dispatch implements the request routing engine.
//
// The dispatcher receives requests from transports, fills in the configured
// defaults and runs them through the engine: text to AudioQuery, AudioQuery
// to WAV, or text straight to WAV. The sender always receives a Result, and
// failures are reported in it rather than as a transport error.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nadzzz/koe/internal/config"
	"github.com/nadzzz/koe/internal/fullcontext"
	"github.com/nadzzz/koe/internal/message"
	"github.com/nadzzz/koe/internal/metrics"
	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/tts"
)

// Engine is the query half of engine.Engine.
type Engine interface {
	AudioQuery(ctx context.Context, text string, speaker int64) (*query.AudioQuery, error)
	SynthesisWave(q *query.AudioQuery, speaker int64, upspeak bool) ([]byte, error)
}

// requestError is a caller mistake detected before the engine runs.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

// Dispatcher is the central routing engine.
type Dispatcher struct {
	engine      Engine
	synthesizer tts.Synthesizer
	defaults    config.EngineConfig
	metrics     *metrics.Collector // nil disables metrics
}

// New creates a Dispatcher. collector may be nil.
func New(engine Engine, synthesizer tts.Synthesizer, defaults config.EngineConfig, collector *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		engine:      engine,
		synthesizer: synthesizer,
		defaults:    defaults,
		metrics:     collector,
	}
}

func (d *Dispatcher) speaker(req *message.Request) int64 {
	if req.Speaker != nil {
		return *req.Speaker
	}
	return d.defaults.DefaultSpeaker
}

func (d *Dispatcher) upspeak(req *message.Request) bool {
	if req.EnableInterrogativeUpspeak != nil {
		return *req.EnableInterrogativeUpspeak
	}
	return d.defaults.InterrogativeUpspeak
}

// Handle processes a single request. It is passed as the transport.Handler
// to each transport.
func (d *Dispatcher) Handle(ctx context.Context, req *message.Request) (*message.Result, error) {
	start := time.Now()
	logger := slog.With("request_id", req.ID, "source", req.Source, "mode", req.Mode)
	speaker := d.speaker(req)
	logger.Info("dispatch started", "speaker", speaker)

	result := &message.Result{RequestID: req.ID}
	err := d.run(ctx, req, speaker, result)
	if err != nil {
		result.Error = err.Error()
		result.Code = Classify(err)
		if result.Code == message.CodeInvalid {
			logger.Warn("request rejected", "error", err)
		} else {
			logger.Error("dispatch failed", "error", err)
		}
	}

	if d.metrics != nil {
		status := "ok"
		if result.Failed() {
			status = string(result.Code)
		}
		d.metrics.RecordRequest(string(req.Mode), status, time.Since(start), len(result.Audio))
	}

	logger.Info("dispatch complete", "duration", time.Since(start), "audio_bytes", len(result.Audio), "failed", result.Failed())
	return result, nil
}

func (d *Dispatcher) run(ctx context.Context, req *message.Request, speaker int64, result *message.Result) error {
	switch req.Mode {
	case message.ModeAudioQuery:
		q, err := d.engine.AudioQuery(ctx, req.Text, speaker)
		if err != nil {
			return fmt.Errorf("audio query: %w", err)
		}
		result.Query = q

	case message.ModeSynthesis:
		if req.Query == nil {
			return &requestError{msg: "query is required"}
		}
		audio, err := d.engine.SynthesisWave(req.Query, speaker, d.upspeak(req))
		if err != nil {
			return fmt.Errorf("synthesis: %w", err)
		}
		result.Audio = audio
		result.ContentType = "audio/wav"

	case message.ModeTTS:
		if d.synthesizer == nil {
			return errors.New("tts is not available")
		}
		res, err := d.synthesizer.Synthesize(ctx, req.Text, tts.SynthesizeOpts{
			Speaker:                    speaker,
			EnableInterrogativeUpspeak: d.upspeak(req),
		})
		if err != nil {
			return fmt.Errorf("tts: %w", err)
		}
		result.Audio = res.Audio
		result.ContentType = res.ContentType

	default:
		return &requestError{msg: fmt.Sprintf("unknown mode %q", req.Mode)}
	}
	return nil
}

// Classify maps an error to the Code reported to callers. Malformed input,
// bad labels and invalid queries are the caller's fault; everything else is
// internal.
func Classify(err error) message.Code {
	var (
		reqErr   *requestError
		queryErr *query.InvalidQueryError
		labelErr *fullcontext.LabelParseError
		treeErr  *fullcontext.StructuralError
	)
	switch {
	case err == nil:
		return message.CodeOK
	case errors.As(err, &reqErr), errors.As(err, &queryErr), errors.As(err, &labelErr), errors.As(err, &treeErr):
		return message.CodeInvalid
	default:
		return message.CodeInternal
	}
}
