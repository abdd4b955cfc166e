// Package fullcontext parses full-context labels produced by the phonetic
// analyzer and groups them into the prosodic hierarchy used for synthesis:
// phoneme → mora → accent phrase → breath group → utterance.
//
// Every node is a value. Operations that change context features return a
// new node and leave the receiver untouched.
package fullcontext

import (
	"fmt"
	"regexp"
)

// Context keys resolved from a label. Names follow the HTS label field naming.
const (
	KeyPhoneme          = "p3" // phoneme identity
	KeyMoraPosition     = "a2" // mora position in accent phrase, forward
	KeyMoraPositionBack = "a3" // mora position in accent phrase, backward
	KeyMoraCount        = "f1" // mora count of the accent phrase, "xx" for pauses
	KeyAccent           = "f2" // accent position of the accent phrase
	KeyInterrogative    = "f3" // "1" when the accent phrase is a question
	KeyPhrasePosition   = "f5" // accent phrase position in breath group
	KeyPrevPhraseCount  = "h1" // accent phrase count of the previous breath group
	KeyGroupPosition    = "i3" // breath group position in utterance
	KeyNextPhraseCount  = "j1" // accent phrase count of the next breath group
)

// NotApplicable is the analyzer's value for fields that do not apply.
const NotApplicable = "xx"

type fieldRule struct {
	key string
	re  *regexp.Regexp
}

// labelGrammar has one rule per field. The value is the first capture of the
// first match in the label.
var labelGrammar = []fieldRule{
	{KeyPhoneme, regexp.MustCompile(`-(.*?)\+`)},
	{KeyMoraPosition, regexp.MustCompile(`\+(\d+|xx)\+`)},
	{KeyMoraPositionBack, regexp.MustCompile(`\+(\d+|xx)/B:`)},
	{KeyMoraCount, regexp.MustCompile(`/F:(\d+|xx)_`)},
	{KeyAccent, regexp.MustCompile(`_(\d+|xx)#`)},
	{KeyInterrogative, regexp.MustCompile(`#(\d+|xx)_`)},
	{KeyPhrasePosition, regexp.MustCompile(`@(\d+|xx)_`)},
	{KeyPrevPhraseCount, regexp.MustCompile(`/H:(\d+|xx)_`)},
	{KeyGroupPosition, regexp.MustCompile(`@(\d+|xx)\+`)},
	{KeyNextPhraseCount, regexp.MustCompile(`/J:(\d+|xx)_`)},
}

// Phoneme is one parsed label.
type Phoneme struct {
	Label    string
	contexts map[string]string
}

// NewPhoneme builds a phoneme from already resolved contexts. The map is copied.
func NewPhoneme(label string, contexts map[string]string) Phoneme {
	m := make(map[string]string, len(contexts))
	for k, v := range contexts {
		m[k] = v
	}
	return Phoneme{Label: label, contexts: m}
}

// ParseLabel resolves every context field of label.
func ParseLabel(label string) (Phoneme, error) {
	contexts := make(map[string]string, len(labelGrammar))
	for _, rule := range labelGrammar {
		m := rule.re.FindStringSubmatch(label)
		if m == nil {
			return Phoneme{}, &LabelParseError{Label: label, Key: rule.key}
		}
		contexts[rule.key] = m[1]
	}
	return Phoneme{Label: label, contexts: contexts}, nil
}

// ParseLabels parses labels in order and stops at the first malformed one.
func ParseLabels(labels []string) ([]Phoneme, error) {
	phonemes := make([]Phoneme, 0, len(labels))
	for i, label := range labels {
		p, err := ParseLabel(label)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		phonemes = append(phonemes, p)
	}
	return phonemes, nil
}

// Context returns the value of a context field, or "" if it is absent.
func (p Phoneme) Context(key string) string { return p.contexts[key] }

// Phoneme returns the phoneme identity.
func (p Phoneme) Phoneme() string { return p.contexts[KeyPhoneme] }

// IsPause reports whether the label stands for a silence.
func (p Phoneme) IsPause() bool { return p.contexts[KeyMoraCount] == NotApplicable }

// WithContext returns a copy of p with key set to value.
func (p Phoneme) WithContext(key, value string) Phoneme {
	q := NewPhoneme(p.Label, p.contexts)
	q.contexts[key] = value
	return q
}
