package query

// Question intonation: the added mora glides up by UpspeakPitchStep and is
// held for UpspeakVowelLength seconds.
const (
	UpspeakVowelLength = 0.15
	UpspeakPitchStep   = 0.3
	UpspeakMaxPitch    = 6.5
)

// AdjustInterrogative returns a copy of phrases in which every interrogative
// phrase ending on a voiced mora gets one extra rising mora. Other phrases are
// copied unchanged.
func AdjustInterrogative(phrases []AccentPhrase) []AccentPhrase {
	out := ClonePhrases(phrases)
	for i := range out {
		a := &out[i]
		if !a.IsInterrogative || len(a.Moras) == 0 {
			continue
		}
		last := a.Moras[len(a.Moras)-1]
		if last.Pitch == 0 {
			continue
		}
		a.Moras = append(a.Moras, upspeakMora(last))
	}
	return out
}

func upspeakMora(last Mora) Mora {
	return Mora{
		Text:        MoraText(last.Vowel),
		Vowel:       last.Vowel,
		VowelLength: UpspeakVowelLength,
		Pitch:       min(last.Pitch+UpspeakPitchStep, UpspeakMaxPitch),
	}
}
