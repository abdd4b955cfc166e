// Package voicevox implements tts.Synthesizer on top of the local synthesis
// engine, following the VOICEVOX audio_query then synthesis flow.
package voicevox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/tts"
)

// Engine is the part of engine.Engine the synthesizer needs.
type Engine interface {
	AudioQuery(ctx context.Context, text string, speaker int64) (*query.AudioQuery, error)
	SynthesisWave(q *query.AudioQuery, speaker int64, upspeak bool) ([]byte, error)
}

// Synthesizer renders text through an Engine.
type Synthesizer struct {
	engine Engine
	close  func() error
}

// New creates a synthesizer. closeFn, if non-nil, is called by Close to
// release the model backend.
func New(engine Engine, closeFn func() error) *Synthesizer {
	return &Synthesizer{engine: engine, close: closeFn}
}

// Synthesize builds a query for text, applies the overrides in opts and
// renders it to WAV.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	q, err := s.engine.AudioQuery(ctx, text, opts.Speaker)
	if err != nil {
		return nil, fmt.Errorf("voicevox: audio query: %w", err)
	}
	if opts.SpeedScale != 0 {
		q.SpeedScale = opts.SpeedScale
	}
	if opts.VolumeScale != 0 {
		q.VolumeScale = opts.VolumeScale
	}

	audio, err := s.engine.SynthesisWave(q, opts.Speaker, opts.EnableInterrogativeUpspeak)
	if err != nil {
		return nil, fmt.Errorf("voicevox: synthesis: %w", err)
	}

	slog.Debug("voicevox synthesis complete",
		"speaker", opts.Speaker,
		"accent_phrases", len(q.AccentPhrases),
		"bytes", len(audio),
	)

	return &tts.SynthesizeResult{
		Audio:       audio,
		ContentType: "audio/wav",
		SampleRate:  q.OutputSamplingRate,
		Channels:    q.Channels(),
	}, nil
}

// Close releases the model backend.
func (s *Synthesizer) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
