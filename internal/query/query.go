// Package query defines the synthesis query: the per-mora projection of the
// prosody tree that the engine fills with durations and pitch, plus the
// scalar controls applied when rendering audio.
//
// JSON field names follow the VOICEVOX engine's AudioQuery so existing
// clients can post their queries unchanged.
package query

// DefaultSamplingRate is the vocoder's native output rate in Hz.
const DefaultSamplingRate = 24000

// Mora is one mora of a query.
type Mora struct {
	// Text is the lowercased phoneme spelling of the mora (e.g. "ka", "N").
	Text string `json:"text"`

	// Consonant is the consonant phoneme, nil for vowel-only moras.
	Consonant *string `json:"consonant,omitempty"`

	// ConsonantLength is the consonant duration in seconds. Set whenever
	// Consonant is set.
	ConsonantLength *float64 `json:"consonant_length,omitempty"`

	// Vowel is the mora-bearing phoneme (vowel, "N", "cl" or "pau").
	Vowel string `json:"vowel"`

	// VowelLength is the vowel duration in seconds.
	VowelLength float64 `json:"vowel_length"`

	// Pitch is the log-F0 of the vowel. Zero means unvoiced.
	Pitch float64 `json:"pitch"`
}

// HasConsonant reports whether the mora starts with a consonant.
func (m Mora) HasConsonant() bool { return m.Consonant != nil }

// clone returns a copy of m that shares no pointers with it.
func (m Mora) clone() Mora {
	out := m
	if m.Consonant != nil {
		c := *m.Consonant
		out.Consonant = &c
	}
	if m.ConsonantLength != nil {
		l := *m.ConsonantLength
		out.ConsonantLength = &l
	}
	return out
}

// AccentPhrase is one accent phrase of a query.
type AccentPhrase struct {
	Moras []Mora `json:"moras"`

	// Accent is the 1-based position of the accented mora.
	Accent int `json:"accent"`

	// PauseMora is the silence that follows the phrase, present only on the
	// last phrase of every breath group but the final one.
	PauseMora *Mora `json:"pause_mora,omitempty"`

	IsInterrogative bool `json:"is_interrogative"`
}

// Clone returns a deep copy of a.
func (a AccentPhrase) Clone() AccentPhrase {
	out := AccentPhrase{
		Accent:          a.Accent,
		IsInterrogative: a.IsInterrogative,
	}
	if a.Moras != nil {
		out.Moras = make([]Mora, len(a.Moras))
		for i, m := range a.Moras {
			out.Moras[i] = m.clone()
		}
	}
	if a.PauseMora != nil {
		p := a.PauseMora.clone()
		out.PauseMora = &p
	}
	return out
}

// ClonePhrases deep-copies every phrase.
func ClonePhrases(phrases []AccentPhrase) []AccentPhrase {
	if phrases == nil {
		return nil
	}
	out := make([]AccentPhrase, len(phrases))
	for i, a := range phrases {
		out[i] = a.Clone()
	}
	return out
}

// AudioQuery is a complete synthesis request.
type AudioQuery struct {
	AccentPhrases []AccentPhrase `json:"accent_phrases"`

	// SpeedScale divides every phoneme duration. Must be positive.
	SpeedScale float64 `json:"speedScale"`

	// PitchScale shifts pitch by octaves: pitch * 2^PitchScale.
	PitchScale float64 `json:"pitchScale"`

	// IntonationScale stretches voiced pitch around its mean.
	IntonationScale float64 `json:"intonationScale"`

	// VolumeScale multiplies every output sample before clipping.
	VolumeScale float64 `json:"volumeScale"`

	// PrePhonemeLength and PostPhonemeLength are the leading and trailing
	// silences in seconds.
	PrePhonemeLength  float64 `json:"prePhonemeLength"`
	PostPhonemeLength float64 `json:"postPhonemeLength"`

	// OutputSamplingRate must be a multiple of DefaultSamplingRate.
	OutputSamplingRate int  `json:"outputSamplingRate"`
	OutputStereo       bool `json:"outputStereo"`

	// Kana is the AquesTalk-style reading. The engine leaves it empty and
	// ignores it on synthesis; it is kept so client queries round-trip.
	Kana string `json:"kana"`
}

// DefaultAudioQuery wraps phrases with the default scalar controls.
func DefaultAudioQuery(phrases []AccentPhrase) *AudioQuery {
	if phrases == nil {
		phrases = []AccentPhrase{}
	}
	return &AudioQuery{
		AccentPhrases:      phrases,
		SpeedScale:         1,
		PitchScale:         0,
		IntonationScale:    1,
		VolumeScale:        1,
		PrePhonemeLength:   0.1,
		PostPhonemeLength:  0.1,
		OutputSamplingRate: DefaultSamplingRate,
		OutputStereo:       false,
	}
}

// Channels returns 2 for stereo output and 1 otherwise.
func (q *AudioQuery) Channels() int {
	if q.OutputStereo {
		return 2
	}
	return 1
}
