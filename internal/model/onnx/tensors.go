package onnx

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nadzzz/koe/internal/engine"
)

// tensorSpec describes one model input before it is handed to the runtime.
// Exactly one of ints and floats is set.
type tensorSpec struct {
	name   string
	shape  []int64
	ints   []int64
	floats []float32
}

func (s tensorSpec) tensor() (ort.Value, error) {
	shape := ort.NewShape(s.shape...)
	if s.floats != nil {
		return ort.NewTensor(shape, s.floats)
	}
	return ort.NewTensor(shape, s.ints)
}

func ints(name string, data []int64) tensorSpec {
	return tensorSpec{name: name, shape: []int64{int64(len(data))}, ints: data}
}

func speakerTensor(speaker int64) tensorSpec {
	return tensorSpec{name: "speaker_id", shape: []int64{1}, ints: []int64{speaker}}
}

func durationTensors(ids []int64, speaker int64) []tensorSpec {
	return []tensorSpec{
		ints("phoneme_list", ids),
		speakerTensor(speaker),
	}
}

func intonationTensors(in engine.IntonationInput, speaker int64) []tensorSpec {
	return []tensorSpec{
		{name: "length", shape: []int64{1}, ints: []int64{int64(len(in.Vowels))}},
		ints("vowel_phoneme_list", in.Vowels),
		ints("consonant_phoneme_list", in.Consonants),
		ints("start_accent_list", in.StartAccent),
		ints("end_accent_list", in.EndAccent),
		ints("start_accent_phrase_list", in.StartAccentPhrase),
		ints("end_accent_phrase_list", in.EndAccentPhrase),
		speakerTensor(speaker),
	}
}

func decodeTensors(frames, phonemeSize int, f0, phonemes []float32, speaker int64) []tensorSpec {
	return []tensorSpec{
		{name: "f0", shape: []int64{int64(frames), 1}, floats: f0},
		{name: "phoneme", shape: []int64{int64(frames), int64(phonemeSize)}, floats: phonemes},
		speakerTensor(speaker),
	}
}
