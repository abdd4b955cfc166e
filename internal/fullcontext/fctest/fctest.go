// Package fctest builds synthetic full-context labels for tests.
package fctest

import (
	"fmt"
	"strconv"
)

// Fields are the label fields that the parser reads.
type Fields struct {
	Phoneme, A2, A3, F1, F2, F3, F5, H1, I3, J1 string
}

// Label renders f in the analyzer's label layout. Fields left empty become "xx".
func Label(f Fields) string {
	x := func(s string) string {
		if s == "" {
			return "xx"
		}
		return s
	}
	return fmt.Sprintf(
		"xx^xx-%s+xx=xx/A:xx+%s+%s/B:xx-xx_xx/C:xx_xx+xx/D:xx+xx_xx/E:xx_xx!xx_xx-xx"+
			"/F:%s_%s#%s_xx@%s_xx|xx_xx/G:xx_xx%%xx_xx_xx/H:%s_xx/I:xx-xx@%s+xx&xx-xx|xx+xx/J:%s_xx/K:xx+xx-xx",
		f.Phoneme, x(f.A2), x(f.A3), x(f.F1), x(f.F2), x(f.F3), x(f.F5), x(f.H1), x(f.I3), x(f.J1),
	)
}

// Pause renders a silence label.
func Pause(symbol string) string { return Label(Fields{Phoneme: symbol}) }

// Phrase describes one accent phrase. Each mora is one or two phoneme symbols.
type Phrase struct {
	Moras         [][]string
	Accent        int
	Interrogative bool
}

// Group is one breath group.
type Group []Phrase

// Utterance renders labels for groups, framed by "sil" and separated by "pau".
func Utterance(groups ...Group) []string {
	labels := []string{Pause("sil")}
	for gi := range groups {
		if gi > 0 {
			labels = append(labels, Pause("pau"))
		}
		labels = append(labels, GroupLabels(groups, gi)...)
	}
	return append(labels, Pause("sil"))
}

// GroupLabels renders only the phonemes of groups[gi].
func GroupLabels(groups []Group, gi int) []string {
	var labels []string
	prev, next := "", ""
	if gi > 0 {
		prev = strconv.Itoa(len(groups[gi-1]))
	}
	if gi+1 < len(groups) {
		next = strconv.Itoa(len(groups[gi+1]))
	}
	for pi, p := range groups[gi] {
		q := "0"
		if p.Interrogative {
			q = "1"
		}
		for mi, mora := range p.Moras {
			for _, sym := range mora {
				labels = append(labels, Label(Fields{
					Phoneme: sym,
					A2:      strconv.Itoa(mi + 1),
					A3:      strconv.Itoa(len(p.Moras) - mi),
					F1:      strconv.Itoa(len(p.Moras)),
					F2:      strconv.Itoa(p.Accent),
					F3:      q,
					F5:      strconv.Itoa(pi + 1),
					H1:      prev,
					I3:      strconv.Itoa(gi + 1),
					J1:      next,
				}))
			}
		}
	}
	return labels
}

// M is shorthand for a mora.
func M(symbols ...string) []string { return symbols }
