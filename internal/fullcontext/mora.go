package fullcontext

// Mora is a vowel optionally preceded by one consonant.
type Mora struct {
	Consonant *Phoneme
	Vowel     Phoneme
}

// MoraFromPhonemes builds a mora from one (vowel) or two (consonant, vowel) phonemes.
func MoraFromPhonemes(ps []Phoneme) (Mora, error) {
	switch len(ps) {
	case 1:
		return Mora{Vowel: ps[0]}, nil
	case 2:
		c := ps[0]
		return Mora{Consonant: &c, Vowel: ps[1]}, nil
	default:
		return Mora{}, structuralf("mora has %d phonemes, want 1 or 2", len(ps))
	}
}

// WithContext returns a copy of m with key set on every phoneme.
func (m Mora) WithContext(key, value string) Mora {
	out := Mora{Vowel: m.Vowel.WithContext(key, value)}
	if m.Consonant != nil {
		c := m.Consonant.WithContext(key, value)
		out.Consonant = &c
	}
	return out
}

// Phonemes returns the consonant (if any) followed by the vowel.
func (m Mora) Phonemes() []Phoneme {
	return m.appendPhonemes(nil)
}

func (m Mora) appendPhonemes(dst []Phoneme) []Phoneme {
	if m.Consonant != nil {
		dst = append(dst, *m.Consonant)
	}
	return append(dst, m.Vowel)
}

// Labels returns the raw labels of the mora's phonemes.
func (m Mora) Labels() []string { return labelsOf(m.Phonemes()) }

func labelsOf(ps []Phoneme) []string {
	labels := make([]string, len(ps))
	for i, p := range ps {
		labels[i] = p.Label
	}
	return labels
}
