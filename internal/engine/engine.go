// Package engine turns text into audio. It drives the external analyzer and
// acoustic models and owns every numeric transformation in between: phoneme
// arrays, accent boundary vectors, duration and pitch write-back, frame
// expansion and the final WAV encoding.
//
// Each stage works on copies. A query handed to the engine is never mutated.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/koe/internal/fullcontext"
	"github.com/nadzzz/koe/internal/query"
)

// Analyzer converts text into full-context labels.
type Analyzer interface {
	ExtractFullContext(ctx context.Context, text string) ([]string, error)
}

// IntonationInput is the per-vowel input of the pitch model. Every slice has
// one entry per vowel position, the framing pauses included.
type IntonationInput struct {
	Vowels            []int64
	Consonants        []int64
	StartAccent       []int64
	EndAccent         []int64
	StartAccentPhrase []int64
	EndAccentPhrase   []int64
}

// Core is the acoustic model backend. Calls block until the model finishes
// and cannot be cancelled.
type Core interface {
	// PredictDuration returns one duration in seconds per phoneme id.
	PredictDuration(phonemeIDs []int64, speaker int64) ([]float32, error)

	// PredictIntonation returns one pitch value per vowel position.
	PredictIntonation(in IntonationInput, speaker int64) ([]float32, error)

	// Decode renders frames of one-hot phonemes and F0 into
	// frames*SamplesPerFrame waveform samples.
	Decode(frames, phonemeSize int, f0, phonemes []float32, speaker int64) ([]float32, error)
}

// Engine is safe for concurrent use if its Core is.
type Engine struct {
	analyzer Analyzer
	core     Core
	base     query.AudioQuery
	log      *slog.Logger

	// maxDuration is the longest audio Synthesis renders, in seconds.
	maxDuration float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for stage summaries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithQueryDefaults sets the scalar controls of queries built by AudioQuery.
// The accent phrases of base are ignored.
func WithQueryDefaults(base query.AudioQuery) Option {
	return func(e *Engine) {
		base.AccentPhrases = nil
		e.base = base
	}
}

// WithMaxDuration limits the length of rendered audio. Longer queries are
// rejected with query.InvalidQueryError. Non-positive values keep the default.
func WithMaxDuration(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.maxDuration = seconds
		}
	}
}

// New creates an engine.
func New(analyzer Analyzer, core Core, opts ...Option) *Engine {
	e := &Engine{
		analyzer: analyzer,
		core:     core,
		base:     *query.DefaultAudioQuery(nil),
		log:      slog.Default(),

		maxDuration: query.DefaultMaxDuration,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateAccentPhrases analyzes text and returns its accent phrases with
// predicted durations and pitch. Empty text yields no phrases and no error.
func (e *Engine) CreateAccentPhrases(ctx context.Context, text string, speaker int64) ([]query.AccentPhrase, error) {
	if text == "" {
		return []query.AccentPhrase{}, nil
	}

	labels, err := e.analyzer.ExtractFullContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extracting full context: %w", err)
	}
	phonemes, err := fullcontext.ParseLabels(labels)
	if err != nil {
		return nil, err
	}
	utterance, err := fullcontext.UtteranceFromPhonemes(phonemes)
	if err != nil {
		return nil, err
	}

	phrases := query.FromUtterance(utterance)
	e.log.Debug("accent phrases built",
		"labels", len(labels),
		"breath_groups", len(utterance.BreathGroups),
		"accent_phrases", len(phrases),
	)
	if len(phrases) == 0 {
		return phrases, nil
	}
	return e.ReplaceMoraData(phrases, speaker)
}

// AudioQuery builds a query for text with the engine's default controls.
func (e *Engine) AudioQuery(ctx context.Context, text string, speaker int64) (*query.AudioQuery, error) {
	phrases, err := e.CreateAccentPhrases(ctx, text, speaker)
	if err != nil {
		return nil, err
	}
	q := e.base
	q.AccentPhrases = phrases
	return &q, nil
}

// TTS renders text straight to a WAV file using the default controls.
func (e *Engine) TTS(ctx context.Context, text string, speaker int64, upspeak bool) ([]byte, error) {
	q, err := e.AudioQuery(ctx, text, speaker)
	if err != nil {
		return nil, err
	}
	return e.SynthesisWave(q, speaker, upspeak)
}
