package query

import (
	"strings"

	"github.com/nadzzz/koe/internal/fullcontext"
	"github.com/nadzzz/koe/internal/phoneme"
)

// PauseText is the text of the pause mora inserted between breath groups.
const PauseText = "、"

// MoraText spells a mora from its phoneme symbols. The moraic nasal keeps its
// capital so it cannot be confused with the consonant "n".
func MoraText(symbols ...string) string {
	text := strings.ToLower(strings.Join(symbols, ""))
	if text == "n" {
		return "N"
	}
	return text
}

// NewPauseMora returns a fresh pause mora with zero duration and pitch.
func NewPauseMora() Mora {
	return Mora{Text: PauseText, Vowel: phoneme.Pause}
}

// FromUtterance projects every accent phrase of u into query form. Durations
// and pitch are left at zero. A pause mora is attached to the last phrase of
// each breath group except the utterance's last one.
func FromUtterance(u fullcontext.Utterance) []AccentPhrase {
	phrases := []AccentPhrase{}
	lastGroup := len(u.BreathGroups) - 1
	for gi, g := range u.BreathGroups {
		lastPhrase := len(g.AccentPhrases) - 1
		for pi, a := range g.AccentPhrases {
			ap := AccentPhrase{
				Moras:           make([]Mora, len(a.Moras)),
				Accent:          a.Accent,
				IsInterrogative: a.IsInterrogative,
			}
			for mi, m := range a.Moras {
				ap.Moras[mi] = fromMora(m)
			}
			if gi != lastGroup && pi == lastPhrase {
				p := NewPauseMora()
				ap.PauseMora = &p
			}
			phrases = append(phrases, ap)
		}
	}
	return phrases
}

func fromMora(m fullcontext.Mora) Mora {
	ps := m.Phonemes()
	symbols := make([]string, len(ps))
	for i, p := range ps {
		symbols[i] = p.Phoneme()
	}
	out := Mora{
		Text:  MoraText(symbols...),
		Vowel: m.Vowel.Phoneme(),
	}
	if m.Consonant != nil {
		c := m.Consonant.Phoneme()
		var l float64
		out.Consonant = &c
		out.ConsonantLength = &l
	}
	return out
}

// Flatten lists every mora of phrases in order, each phrase's pause mora
// following its moras.
func Flatten(phrases []AccentPhrase) []Mora {
	var n int
	for _, a := range phrases {
		n += len(a.Moras) + 1
	}
	out := make([]Mora, 0, n)
	for _, a := range phrases {
		out = append(out, a.Moras...)
		if a.PauseMora != nil {
			out = append(out, *a.PauseMora)
		}
	}
	return out
}
