package engine

import (
	"math"

	"github.com/nadzzz/koe/internal/phoneme"
	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/wav"
)

// SamplesPerFrame is the vocoder's upsampling factor.
const SamplesPerFrame = 256

// FrameRate is the number of acoustic frames per second.
const FrameRate = float64(query.DefaultSamplingRate) / SamplesPerFrame

// MaxFrameCount bounds FrameCount.
const MaxFrameCount = math.MaxInt32

// FrameCount converts a duration in seconds to whole frames, rounding once
// at the acoustic frame rate and again after applying speed. The result is
// clamped to [0, MaxFrameCount].
func FrameCount(seconds, speed float64) int {
	n := math.Round(math.Round(seconds*FrameRate) / speed)
	switch {
	case math.IsNaN(n) || n < 0:
		return 0
	case n > MaxFrameCount:
		return MaxFrameCount
	}
	return int(n)
}

// Frames is the frame-level vocoder input.
type Frames struct {
	Count int

	// Phonemes is the Count x phoneme.Count() one-hot matrix, row-major.
	Phonemes []float32

	// F0 holds one pitch value per frame.
	F0 []float32
}

// ExpandFrames repeats each phoneme's one-hot row for its frame count. Frame
// counts are accumulated up to each mora-bearing phoneme, which then emits
// its pitch once per accumulated frame. lengths and phonemes are parallel;
// f0 has one entry per mora-bearing phoneme.
func ExpandFrames(phonemes []string, lengths, f0 []float64, speed float64) Frames {
	_, _, vowelIndexes := SplitMora(phonemes)
	width := phoneme.Count()

	var (
		out    Frames
		span   int
		vowel  int
		counts = make([]int, len(lengths))
	)
	for i, l := range lengths {
		counts[i] = FrameCount(l, speed)
		out.Count += counts[i]
	}
	out.Phonemes = make([]float32, 0, out.Count*width)
	out.F0 = make([]float32, 0, out.Count)

	for i, n := range counts {
		id := phoneme.ID(phonemes[i])
		for range n {
			row := make([]float32, width)
			if id >= 0 {
				row[id] = 1
			}
			out.Phonemes = append(out.Phonemes, row...)
		}
		span += n
		if vowel < len(vowelIndexes) && i == vowelIndexes[vowel] {
			for range span {
				out.F0 = append(out.F0, float32(f0[vowel]))
			}
			vowel++
			span = 0
		}
	}
	return out
}

// Synthesis renders q into waveform samples at the native rate. With upspeak
// set, interrogative phrases get a rising final mora first.
func (e *Engine) Synthesis(q *query.AudioQuery, speaker int64, upspeak bool) ([]float32, error) {
	if err := q.ValidateWithin(e.maxDuration); err != nil {
		return nil, err
	}

	phrases := q.AccentPhrases
	if upspeak {
		phrases = query.AdjustInterrogative(phrases)
	}
	moras, phonemes := InitialProcess(phrases)

	lengths := make([]float64, 0, len(phonemes))
	f0 := make([]float64, 0, len(moras)+2)
	voiced := make([]bool, 0, len(moras)+2)

	lengths = append(lengths, q.PrePhonemeLength)
	f0 = append(f0, 0)
	voiced = append(voiced, false)

	var sum float64
	var count int
	for _, m := range moras {
		if m.Consonant != nil {
			lengths = append(lengths, *m.ConsonantLength)
		}
		lengths = append(lengths, m.VowelLength)

		p := m.Pitch * math.Pow(2, q.PitchScale)
		f0 = append(f0, p)
		voiced = append(voiced, p > 0)
		if p > 0 {
			sum += p
			count++
		}
	}
	lengths = append(lengths, q.PostPhonemeLength)
	f0 = append(f0, 0)
	voiced = append(voiced, false)

	if count > 0 {
		mean := sum / float64(count)
		for i, v := range voiced {
			if v {
				f0[i] = (f0[i]-mean)*q.IntonationScale + mean
			}
		}
	}

	frames := ExpandFrames(phonemes, lengths, f0, q.SpeedScale)
	e.log.Debug("frames expanded", "moras", len(moras), "phonemes", len(phonemes), "frames", frames.Count)
	if frames.Count == 0 {
		return []float32{}, nil
	}

	wave, err := e.core.Decode(frames.Count, phoneme.Count(), frames.F0, frames.Phonemes, speaker)
	if err != nil {
		return nil, modelError("decode", err)
	}
	if want := frames.Count * SamplesPerFrame; len(wave) != want {
		return nil, lengthError("decode", len(wave), want)
	}
	return wave, nil
}

// SynthesisWave renders q as a WAV file at the query's output rate, volume
// and channel count.
func (e *Engine) SynthesisWave(q *query.AudioQuery, speaker int64, upspeak bool) ([]byte, error) {
	wave, err := e.Synthesis(q, speaker, upspeak)
	if err != nil {
		return nil, err
	}
	return wav.Encode(wave, wav.Options{
		Volume:     q.VolumeScale,
		SampleRate: q.OutputSamplingRate,
		NativeRate: query.DefaultSamplingRate,
		Channels:   q.Channels(),
	})
}
