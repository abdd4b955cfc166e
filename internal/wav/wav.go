// Package wav renders model output as 16-bit PCM WAV files.
package wav

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// HeaderSize is the size of the RIFF, fmt and data chunk headers written
// before the samples.
const HeaderSize = 44

// DefaultNativeRate is the rate of the samples handed to Encode when
// Options.NativeRate is zero.
const DefaultNativeRate = 24000

const bitDepth = 16

// ErrUnsupportedRate is returned for output rates that are not a positive
// multiple of the native rate. Samples are repeated, never interpolated.
var ErrUnsupportedRate = errors.New("wav: output rate is not a multiple of the native rate")

// Options controls Encode.
type Options struct {
	// Volume multiplies every sample before clipping.
	Volume float64

	// SampleRate is the output rate in Hz.
	SampleRate int

	// NativeRate is the rate of the input samples in Hz.
	NativeRate int

	// Channels is 1 for mono or 2 for stereo. Zero means mono.
	Channels int
}

// Encode scales, clips and quantizes samples and wraps them in a WAV
// container. Each input sample is repeated (SampleRate/NativeRate)*Channels
// times, which upsamples and duplicates channels in one pass.
func Encode(samples []float32, opts Options) ([]byte, error) {
	native := opts.NativeRate
	if native == 0 {
		native = DefaultNativeRate
	}
	channels := opts.Channels
	if channels == 0 {
		channels = 1
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("wav: unsupported channel count %d", channels)
	}
	if opts.SampleRate <= 0 || opts.SampleRate%native != 0 {
		return nil, fmt.Errorf("%w: %d Hz over %d Hz", ErrUnsupportedRate, opts.SampleRate, native)
	}

	repeat := opts.SampleRate / native * channels
	data := make([]int, 0, len(samples)*repeat)
	for _, s := range samples {
		v := int(Quantize(float64(s) * opts.Volume))
		for range repeat {
			data = append(data, v)
		}
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, opts.SampleRate, bitDepth, channels, 1)
	err := enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: opts.SampleRate},
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("wav: writing samples: %w", err)
	}
	// Close seeks back to patch the RIFF and data chunk sizes.
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav: finalizing header: %w", err)
	}
	return out.Bytes(), nil
}

// Quantize clips v to [-1, 1] and scales it to a signed 16-bit sample.
func Quantize(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	v = max(-1, min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}

// PCM returns the sample bytes of a file produced by Encode.
func PCM(b []byte) ([]byte, error) {
	if len(b) < HeaderSize || !bytes.Equal(b[0:4], []byte("RIFF")) || !bytes.Equal(b[36:40], []byte("data")) {
		return nil, errors.New("wav: not a canonical PCM WAV file")
	}
	return b[HeaderSize:], nil
}

// Format is the sample layout of a WAV file.
type Format struct {
	SampleRate int
	Channels   int
	Width      int // bytes per sample
}

// ReadFormat decodes the fmt chunk of b.
func ReadFormat(b []byte) (Format, error) {
	d := wav.NewDecoder(bytes.NewReader(b))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Format{}, fmt.Errorf("wav: reading format: %w", err)
	}
	if d.NumChans < 1 || d.BitDepth < 8 {
		return Format{}, errors.New("wav: missing fmt chunk")
	}
	return Format{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		Width:      int(d.BitDepth) / 8,
	}, nil
}
