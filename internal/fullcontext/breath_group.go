package fullcontext

// BreathGroup is a run of accent phrases spoken without a pause.
type BreathGroup struct {
	AccentPhrases []AccentPhrase
}

// BreathGroupFromPhonemes splits phonemes into accent phrases wherever the
// breath group position or the phrase position changes.
func BreathGroupFromPhonemes(ps []Phoneme) (BreathGroup, error) {
	var (
		phrases []AccentPhrase
		start   int
	)
	for i := range ps {
		if i+1 < len(ps) && sameContexts(ps[i], ps[i+1], KeyGroupPosition, KeyPhrasePosition) {
			continue
		}
		phrase, err := AccentPhraseFromPhonemes(ps[start : i+1])
		if err != nil {
			return BreathGroup{}, err
		}
		phrases = append(phrases, phrase)
		start = i + 1
	}
	return BreathGroup{AccentPhrases: phrases}, nil
}

func sameContexts(a, b Phoneme, keys ...string) bool {
	for _, k := range keys {
		if a.Context(k) != b.Context(k) {
			return false
		}
	}
	return true
}

// WithContext returns a copy of g with key set on every phoneme.
func (g BreathGroup) WithContext(key, value string) BreathGroup {
	phrases := make([]AccentPhrase, len(g.AccentPhrases))
	for i, a := range g.AccentPhrases {
		phrases[i] = a.WithContext(key, value)
	}
	return BreathGroup{AccentPhrases: phrases}
}

// Phonemes returns every phoneme of the breath group in order.
func (g BreathGroup) Phonemes() []Phoneme {
	return g.appendPhonemes(nil)
}

func (g BreathGroup) appendPhonemes(dst []Phoneme) []Phoneme {
	for _, a := range g.AccentPhrases {
		dst = a.appendPhonemes(dst)
	}
	return dst
}

// Labels returns the raw labels of the breath group.
func (g BreathGroup) Labels() []string { return labelsOf(g.Phonemes()) }
