package engine

import (
	"fmt"

	"github.com/nadzzz/koe/internal/phoneme"
	"github.com/nadzzz/koe/internal/query"
)

// InitialProcess flattens phrases into moras and lists their phonemes framed
// by a pause on both sides.
func InitialProcess(phrases []query.AccentPhrase) ([]query.Mora, []string) {
	moras := query.Flatten(phrases)
	phonemes := make([]string, 0, 2*len(moras)+2)
	phonemes = append(phonemes, phoneme.Pause)
	for _, m := range moras {
		if m.Consonant != nil {
			phonemes = append(phonemes, *m.Consonant)
		}
		phonemes = append(phonemes, m.Vowel)
	}
	phonemes = append(phonemes, phoneme.Pause)
	return moras, phonemes
}

// SplitMora finds the mora-bearing positions of phonemes and pairs each with
// the consonant right before it. A vowel that directly follows another vowel,
// and the first vowel, get phoneme.Empty as consonant.
func SplitMora(phonemes []string) (consonants, vowels []string, vowelIndexes []int) {
	for i, p := range phonemes {
		if phoneme.IsMoraPhoneme(p) {
			vowelIndexes = append(vowelIndexes, i)
			vowels = append(vowels, p)
		}
	}
	if len(vowelIndexes) == 0 {
		return nil, nil, nil
	}
	consonants = make([]string, len(vowelIndexes))
	consonants[0] = phoneme.Empty
	for i := 1; i < len(vowelIndexes); i++ {
		prev, next := vowelIndexes[i-1], vowelIndexes[i]
		if next-prev == 1 {
			consonants[i] = phoneme.Empty
		} else {
			consonants[i] = phonemes[next-1]
		}
	}
	return consonants, vowels, vowelIndexes
}

// AccentVectors are the four 0/1 boundary markers given to the pitch model,
// sampled at vowel positions.
type AccentVectors struct {
	StartAccent       []int64
	EndAccent         []int64
	StartAccentPhrase []int64
	EndAccentPhrase   []int64
}

// AccentLists builds the boundary markers of phrases. The per-phoneme lists
// are framed with a 0 for each outer pause, then sampled at vowelIndexes.
func AccentLists(phrases []query.AccentPhrase, vowelIndexes []int) AccentVectors {
	base := [4][]int64{{0}, {0}, {0}, {0}}
	for _, a := range phrases {
		startAccent := 1
		if a.Accent == 1 {
			startAccent = 0
		}
		base[0] = appendAccentList(base[0], a, startAccent)
		base[1] = appendAccentList(base[1], a, a.Accent-1)
		base[2] = appendAccentList(base[2], a, 0)
		base[3] = appendAccentList(base[3], a, -1)
	}

	var sampled [4][]int64
	for k := range base {
		base[k] = append(base[k], 0)
		sampled[k] = make([]int64, len(vowelIndexes))
		for i, vi := range vowelIndexes {
			sampled[k][i] = base[k][vi]
		}
	}
	return AccentVectors{
		StartAccent:       sampled[0],
		EndAccent:         sampled[1],
		StartAccentPhrase: sampled[2],
		EndAccentPhrase:   sampled[3],
	}
}

// appendAccentList marks mora point of a with 1 on each of its phonemes.
// A negative point counts from the end. The pause mora is always 0.
func appendAccentList(dst []int64, a query.AccentPhrase, point int) []int64 {
	if point < 0 {
		point += len(a.Moras)
	}
	for i, m := range a.Moras {
		var v int64
		if i == point {
			v = 1
		}
		dst = append(dst, v)
		if m.Consonant != nil {
			dst = append(dst, v)
		}
	}
	if a.PauseMora != nil {
		dst = append(dst, 0)
	}
	return dst
}

// ReplacePhonemeLength returns a copy of phrases with consonant and vowel
// lengths predicted by the duration model.
func (e *Engine) ReplacePhonemeLength(phrases []query.AccentPhrase, speaker int64) ([]query.AccentPhrase, error) {
	out := query.ClonePhrases(phrases)
	moras, phonemes := InitialProcess(out)
	if len(moras) == 0 {
		return out, nil
	}
	_, _, vowelIndexes := SplitMora(phonemes)
	if err := checkLayout(moras, vowelIndexes); err != nil {
		return nil, err
	}

	lengths, err := e.core.PredictDuration(phoneme.IDs(phonemes), speaker)
	if err != nil {
		return nil, modelError("duration", err)
	}
	if len(lengths) != len(phonemes) {
		return nil, lengthError("duration", len(lengths), len(phonemes))
	}

	index := 0
	set := func(m *query.Mora) {
		vi := vowelIndexes[index+1]
		if m.Consonant != nil {
			l := float64(lengths[vi-1])
			m.ConsonantLength = &l
		}
		m.VowelLength = float64(lengths[vi])
		index++
	}
	forEachMora(out, set)
	return out, nil
}

// ReplaceMoraPitch returns a copy of phrases with pitch predicted by the
// intonation model.
func (e *Engine) ReplaceMoraPitch(phrases []query.AccentPhrase, speaker int64) ([]query.AccentPhrase, error) {
	out := query.ClonePhrases(phrases)
	moras, phonemes := InitialProcess(out)
	if len(moras) == 0 {
		return out, nil
	}
	consonants, vowels, vowelIndexes := SplitMora(phonemes)
	if err := checkLayout(moras, vowelIndexes); err != nil {
		return nil, err
	}
	accents := AccentLists(out, vowelIndexes)

	f0, err := e.core.PredictIntonation(IntonationInput{
		Vowels:            phoneme.IDs(vowels),
		Consonants:        phoneme.IDs(consonants),
		StartAccent:       accents.StartAccent,
		EndAccent:         accents.EndAccent,
		StartAccentPhrase: accents.StartAccentPhrase,
		EndAccentPhrase:   accents.EndAccentPhrase,
	}, speaker)
	if err != nil {
		return nil, modelError("intonation", err)
	}
	if len(f0) != len(vowels) {
		return nil, lengthError("intonation", len(f0), len(vowels))
	}

	index := 0
	forEachMora(out, func(m *query.Mora) {
		m.Pitch = float64(f0[index+1])
		index++
	})
	return out, nil
}

// ReplaceMoraData predicts durations, then pitch.
func (e *Engine) ReplaceMoraData(phrases []query.AccentPhrase, speaker int64) ([]query.AccentPhrase, error) {
	withLength, err := e.ReplacePhonemeLength(phrases, speaker)
	if err != nil {
		return nil, err
	}
	return e.ReplaceMoraPitch(withLength, speaker)
}

// checkLayout makes sure every mora contributed exactly one vowel position
// besides the two framing pauses.
func checkLayout(moras []query.Mora, vowelIndexes []int) error {
	if len(vowelIndexes) != len(moras)+2 {
		return &query.InvalidQueryError{
			Field:  "accent_phrases",
			Reason: fmt.Sprintf("%d moras produced %d vowel positions", len(moras), len(vowelIndexes)-2),
		}
	}
	return nil
}

// forEachMora visits moras in flattened order, pause moras included.
func forEachMora(phrases []query.AccentPhrase, fn func(*query.Mora)) {
	for i := range phrases {
		a := &phrases[i]
		for j := range a.Moras {
			fn(&a.Moras[j])
		}
		if a.PauseMora != nil {
			fn(a.PauseMora)
		}
	}
}
