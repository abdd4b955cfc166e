// Package tts defines the interface for text-to-speech synthesis.
//
// Transports that only deal in text and audio (the Wyoming server, the tts
// request mode) go through a Synthesizer instead of the engine's query API.
package tts

import "context"

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Speaker selects the voice.
	Speaker int64

	// EnableInterrogativeUpspeak adds a rising mora to questions.
	EnableInterrogativeUpspeak bool

	// SpeedScale and VolumeScale override the query defaults when non-zero.
	SpeedScale  float64
	VolumeScale float64
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates a WAV file from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 24000).
	SampleRate int

	// Channels is the number of audio channels (1 or 2).
	Channels int
}
