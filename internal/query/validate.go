package query

import (
	"fmt"
	"math"

	"github.com/nadzzz/koe/internal/phoneme"
)

// InvalidQueryError reports a query that cannot be synthesized.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid audio query: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &InvalidQueryError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DefaultMaxDuration is the longest rendering Validate accepts, in seconds.
const DefaultMaxDuration = 600.0

// Validate checks q against DefaultMaxDuration.
func (q *AudioQuery) Validate() error {
	return q.ValidateWithin(DefaultMaxDuration)
}

// ValidateWithin checks the scalar controls and the phoneme inventory of q,
// and that rendering it takes at most maxSeconds of audio.
func (q *AudioQuery) ValidateWithin(maxSeconds float64) error {
	switch {
	case !finite(q.SpeedScale) || q.SpeedScale <= 0:
		return invalid("speedScale", "must be positive, got %v", q.SpeedScale)
	case !finite(q.PitchScale):
		return invalid("pitchScale", "must be finite")
	case !finite(q.IntonationScale):
		return invalid("intonationScale", "must be finite")
	case !finite(q.VolumeScale) || q.VolumeScale < 0:
		return invalid("volumeScale", "must not be negative, got %v", q.VolumeScale)
	case !finite(q.PrePhonemeLength) || q.PrePhonemeLength < 0:
		return invalid("prePhonemeLength", "must not be negative, got %v", q.PrePhonemeLength)
	case !finite(q.PostPhonemeLength) || q.PostPhonemeLength < 0:
		return invalid("postPhonemeLength", "must not be negative, got %v", q.PostPhonemeLength)
	case q.OutputSamplingRate <= 0 || q.OutputSamplingRate%DefaultSamplingRate != 0:
		return invalid("outputSamplingRate", "must be a positive multiple of %d, got %d",
			DefaultSamplingRate, q.OutputSamplingRate)
	}

	for i, a := range q.AccentPhrases {
		if err := a.validate(fmt.Sprintf("accent_phrases[%d]", i)); err != nil {
			return err
		}
	}
	if d := q.Duration(); d > maxSeconds {
		return invalid("accent_phrases", "renders %.1fs of audio, limit is %.1fs", d, maxSeconds)
	}
	return nil
}

// Duration returns an upper bound of the rendered length in seconds,
// counting the rising mora added to every interrogative phrase.
func (q *AudioQuery) Duration() float64 {
	total := q.PrePhonemeLength + q.PostPhonemeLength
	add := func(m Mora) {
		if m.ConsonantLength != nil {
			total += *m.ConsonantLength
		}
		total += m.VowelLength
	}
	for _, a := range q.AccentPhrases {
		for _, m := range a.Moras {
			add(m)
		}
		if a.PauseMora != nil {
			add(*a.PauseMora)
		}
		if a.IsInterrogative {
			total += UpspeakVowelLength
		}
	}
	return total / q.SpeedScale
}

func (a AccentPhrase) validate(field string) error {
	if len(a.Moras) == 0 {
		return invalid(field+".moras", "must not be empty")
	}
	if a.Accent < 1 || a.Accent > len(a.Moras) {
		return invalid(field+".accent", "must be in [1, %d], got %d", len(a.Moras), a.Accent)
	}
	for i, m := range a.Moras {
		if err := m.validate(fmt.Sprintf("%s.moras[%d]", field, i)); err != nil {
			return err
		}
	}
	if a.PauseMora != nil {
		return a.PauseMora.validate(field + ".pause_mora")
	}
	return nil
}

func (m Mora) validate(field string) error {
	if !phoneme.IsMoraPhoneme(m.Vowel) {
		return invalid(field+".vowel", "%q is not a mora phoneme", m.Vowel)
	}
	if !finite(m.VowelLength) || m.VowelLength < 0 {
		return invalid(field+".vowel_length", "must not be negative, got %v", m.VowelLength)
	}
	if !finite(m.Pitch) {
		return invalid(field+".pitch", "must be finite")
	}
	if m.ConsonantLength != nil && (!finite(*m.ConsonantLength) || *m.ConsonantLength < 0) {
		return invalid(field+".consonant_length", "must not be negative, got %v", *m.ConsonantLength)
	}
	if m.Consonant != nil {
		if _, ok := phoneme.Lookup(*m.Consonant); !ok || *m.Consonant == phoneme.Empty || phoneme.IsMoraPhoneme(*m.Consonant) {
			return invalid(field+".consonant", "%q is not a consonant", *m.Consonant)
		}
		if m.ConsonantLength == nil {
			return invalid(field+".consonant_length", "required with a consonant")
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
