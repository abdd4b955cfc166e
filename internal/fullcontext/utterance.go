package fullcontext

type segment uint8

const (
	segmentPause segment = iota
	segmentGroup
)

// Utterance holds the breath groups and the pauses around them. The two
// slices are parallel sequences; the utterance remembers how they
// interleave so the original phoneme order can be rebuilt.
type Utterance struct {
	BreathGroups []BreathGroup
	Pauses       []Phoneme

	layout []segment
}

// NewUtterance assembles an utterance whose pauses and breath groups strictly
// alternate, starting with a pause.
func NewUtterance(groups []BreathGroup, pauses []Phoneme) Utterance {
	return Utterance{BreathGroups: groups, Pauses: pauses}
}

// UtteranceFromPhonemes separates pauses from breath groups. A run of
// non-pause phonemes is cut into several breath groups when the breath group
// position or the following group's phrase count changes inside it. A run
// still open at the end of input becomes the last breath group.
func UtteranceFromPhonemes(ps []Phoneme) (Utterance, error) {
	var (
		u   Utterance
		run []Phoneme
	)
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		start := 0
		for i := range run {
			if i+1 < len(run) && sameContexts(run[i], run[i+1], KeyGroupPosition, KeyNextPhraseCount) {
				continue
			}
			g, err := BreathGroupFromPhonemes(run[start : i+1])
			if err != nil {
				return err
			}
			u.BreathGroups = append(u.BreathGroups, g)
			u.layout = append(u.layout, segmentGroup)
			start = i + 1
		}
		run = nil
		return nil
	}

	for _, p := range ps {
		if !p.IsPause() {
			run = append(run, p)
			continue
		}
		if err := flush(); err != nil {
			return Utterance{}, err
		}
		u.Pauses = append(u.Pauses, p)
		u.layout = append(u.layout, segmentPause)
	}
	if err := flush(); err != nil {
		return Utterance{}, err
	}
	return u, nil
}

// WithContext returns a copy of u with key set on every phoneme of every
// breath group. Pauses are left as they are.
func (u Utterance) WithContext(key, value string) Utterance {
	groups := make([]BreathGroup, len(u.BreathGroups))
	for i, g := range u.BreathGroups {
		groups[i] = g.WithContext(key, value)
	}
	return Utterance{BreathGroups: groups, Pauses: u.Pauses, layout: u.layout}
}

// Phonemes rebuilds the full phoneme sequence, pauses included.
func (u Utterance) Phonemes() []Phoneme {
	var out []Phoneme
	pi, gi := 0, 0
	for _, s := range u.order() {
		switch s {
		case segmentPause:
			out = append(out, u.Pauses[pi])
			pi++
		case segmentGroup:
			out = u.BreathGroups[gi].appendPhonemes(out)
			gi++
		}
	}
	return out
}

// Labels returns the raw labels of the whole utterance.
func (u Utterance) Labels() []string { return labelsOf(u.Phonemes()) }

func (u Utterance) order() []segment {
	if u.layout != nil {
		return u.layout
	}
	order := make([]segment, 0, len(u.Pauses)+len(u.BreathGroups))
	pi, gi := 0, 0
	for pi < len(u.Pauses) || gi < len(u.BreathGroups) {
		if pi < len(u.Pauses) {
			order = append(order, segmentPause)
			pi++
		}
		if gi < len(u.BreathGroups) {
			order = append(order, segmentGroup)
			gi++
		}
	}
	return order
}
