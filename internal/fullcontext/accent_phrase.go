package fullcontext

import "strconv"

// noMoreMoras is the a2 value the analyzer emits once it has nothing useful
// left for the accent phrase. Collection stops silently when it is seen.
const noMoreMoras = "49"

// AccentPhrase is a run of moras sharing one pitch accent.
type AccentPhrase struct {
	Moras           []Mora
	Accent          int // 1-based accented mora, in [1, len(Moras)]
	IsInterrogative bool
}

// AccentPhraseFromPhonemes groups phonemes into moras and resolves the
// phrase's accent position and question flag.
func AccentPhraseFromPhonemes(ps []Phoneme) (AccentPhrase, error) {
	var (
		moras   []Mora
		pending []Phoneme
	)
	for i, p := range ps {
		if p.Context(KeyMoraPosition) == noMoreMoras {
			break
		}
		pending = append(pending, p)

		if i+1 == len(ps) || p.Context(KeyMoraPosition) != ps[i+1].Context(KeyMoraPosition) {
			mora, err := MoraFromPhonemes(pending)
			if err != nil {
				return AccentPhrase{}, err
			}
			moras = append(moras, mora)
			pending = nil
		}
	}
	if len(moras) == 0 {
		return AccentPhrase{}, structuralf("accent phrase has no moras")
	}

	raw := moras[0].Vowel.Context(KeyAccent)
	accent, err := strconv.Atoi(raw)
	if err != nil {
		return AccentPhrase{}, structuralf("accent position %q is not a number", raw)
	}
	// the analyzer occasionally reports an accent past the end of the phrase
	accent = min(accent, len(moras))
	if accent < 1 {
		return AccentPhrase{}, structuralf("accent position %d out of range", accent)
	}

	return AccentPhrase{
		Moras:           moras,
		Accent:          accent,
		IsInterrogative: moras[len(moras)-1].Vowel.Context(KeyInterrogative) == "1",
	}, nil
}

// WithContext returns a copy of a with key set on every phoneme.
func (a AccentPhrase) WithContext(key, value string) AccentPhrase {
	moras := make([]Mora, len(a.Moras))
	for i, m := range a.Moras {
		moras[i] = m.WithContext(key, value)
	}
	return AccentPhrase{Moras: moras, Accent: a.Accent, IsInterrogative: a.IsInterrogative}
}

// Phonemes returns every phoneme of the phrase in order.
func (a AccentPhrase) Phonemes() []Phoneme {
	return a.appendPhonemes(nil)
}

func (a AccentPhrase) appendPhonemes(dst []Phoneme) []Phoneme {
	for _, m := range a.Moras {
		dst = m.appendPhonemes(dst)
	}
	return dst
}

// Labels returns the raw labels of the phrase.
func (a AccentPhrase) Labels() []string { return labelsOf(a.Phonemes()) }

// Merge appends other's moras to a, keeping a's accent and question flag.
func (a AccentPhrase) Merge(other AccentPhrase) AccentPhrase {
	moras := make([]Mora, 0, len(a.Moras)+len(other.Moras))
	moras = append(moras, a.Moras...)
	moras = append(moras, other.Moras...)
	return AccentPhrase{Moras: moras, Accent: a.Accent, IsInterrogative: a.IsInterrogative}
}
