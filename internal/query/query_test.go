package query

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/koe/internal/fullcontext"
	"github.com/nadzzz/koe/internal/fullcontext/fctest"
)

func utterance(t *testing.T, groups ...fctest.Group) fullcontext.Utterance {
	t.Helper()
	ps, err := fullcontext.ParseLabels(fctest.Utterance(groups...))
	require.NoError(t, err)
	u, err := fullcontext.UtteranceFromPhonemes(ps)
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func TestMoraText(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"k", "a"}, "ka"},
		{[]string{"N"}, "N"},
		{[]string{"n"}, "N"},
		{[]string{"I"}, "i"},
		{[]string{"sh", "I"}, "shi"},
		{[]string{"cl"}, "cl"},
		{[]string{"n", "a"}, "na"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MoraText(tt.in...), tt.in)
	}
}

func TestFromUtterance(t *testing.T) {
	u := utterance(t,
		fctest.Group{
			{Moras: [][]string{fctest.M("k", "o"), fctest.M("N")}, Accent: 1},
			{Moras: [][]string{fctest.M("n", "i"), fctest.M("ch", "I")}, Accent: 2},
		},
		fctest.Group{
			{Moras: [][]string{fctest.M("w", "a")}, Accent: 1, Interrogative: true},
		},
	)

	phrases := FromUtterance(u)
	require.Len(t, phrases, 3)

	first := phrases[0]
	assert.Equal(t, 1, first.Accent)
	assert.Nil(t, first.PauseMora, "pause only after the last phrase of a group")
	require.Len(t, first.Moras, 2)
	assert.Equal(t, Mora{Text: "ko", Consonant: ptr("k"), ConsonantLength: ptr(0.0), Vowel: "o"}, first.Moras[0])
	assert.Equal(t, Mora{Text: "N", Vowel: "N"}, first.Moras[1])

	second := phrases[1]
	require.NotNil(t, second.PauseMora)
	assert.Equal(t, NewPauseMora(), *second.PauseMora)
	assert.Equal(t, "chi", second.Moras[1].Text)

	last := phrases[2]
	assert.Nil(t, last.PauseMora, "no pause after the final breath group")
	assert.True(t, last.IsInterrogative)
}

func TestFromUtterance_Empty(t *testing.T) {
	phrases := FromUtterance(fullcontext.Utterance{})
	assert.NotNil(t, phrases)
	assert.Empty(t, phrases)
}

func TestFlatten(t *testing.T) {
	pause := NewPauseMora()
	phrases := []AccentPhrase{
		{Moras: []Mora{{Text: "a", Vowel: "a"}, {Text: "i", Vowel: "i"}}, Accent: 1, PauseMora: &pause},
		{Moras: []Mora{{Text: "u", Vowel: "u"}}, Accent: 1},
	}
	got := Flatten(phrases)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"a", "i", "pau", "u"}, []string{got[0].Vowel, got[1].Vowel, got[2].Vowel, got[3].Vowel})
	assert.Empty(t, Flatten(nil))
}

func TestAdjustInterrogative(t *testing.T) {
	tests := []struct {
		name      string
		phrase    AccentPhrase
		wantAdded bool
		wantPitch float64
	}{
		{
			name:      "rises by step",
			phrase:    AccentPhrase{Moras: []Mora{{Text: "ka", Consonant: ptr("k"), ConsonantLength: ptr(0.1), Vowel: "a", VowelLength: 0.1, Pitch: 5.5}}, Accent: 1, IsInterrogative: true},
			wantAdded: true,
			wantPitch: 5.8,
		},
		{
			name:      "capped",
			phrase:    AccentPhrase{Moras: []Mora{{Text: "o", Vowel: "o", Pitch: 6.4}}, Accent: 1, IsInterrogative: true},
			wantAdded: true,
			wantPitch: 6.5,
		},
		{
			name:   "unvoiced last mora",
			phrase: AccentPhrase{Moras: []Mora{{Text: "i", Vowel: "I", Pitch: 0}}, Accent: 1, IsInterrogative: true},
		},
		{
			name:   "not interrogative",
			phrase: AccentPhrase{Moras: []Mora{{Text: "a", Vowel: "a", Pitch: 5}}, Accent: 1},
		},
		{
			name:   "no moras",
			phrase: AccentPhrase{IsInterrogative: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []AccentPhrase{tt.phrase}
			out := AdjustInterrogative(in)
			require.Len(t, out, 1)
			assert.Equal(t, tt.phrase.Accent, out[0].Accent)
			assert.Len(t, in[0].Moras, len(tt.phrase.Moras), "input untouched")

			if !tt.wantAdded {
				assert.Equal(t, tt.phrase.Moras, out[0].Moras)
				return
			}
			require.Len(t, out[0].Moras, len(tt.phrase.Moras)+1)
			added := out[0].Moras[len(out[0].Moras)-1]
			last := tt.phrase.Moras[len(tt.phrase.Moras)-1]
			assert.InDelta(t, tt.wantPitch, added.Pitch, 1e-9)
			assert.Equal(t, UpspeakVowelLength, added.VowelLength)
			assert.Equal(t, last.Vowel, added.Vowel)
			assert.Equal(t, MoraText(last.Vowel), added.Text)
			assert.Nil(t, added.Consonant)
		})
	}
}

func TestClone_DoesNotShare(t *testing.T) {
	pause := NewPauseMora()
	a := AccentPhrase{Moras: []Mora{{Text: "ka", Consonant: ptr("k"), ConsonantLength: ptr(0.05), Vowel: "a"}}, Accent: 1, PauseMora: &pause}
	b := a.Clone()
	*b.Moras[0].ConsonantLength = 1
	b.PauseMora.VowelLength = 2
	b.Moras[0].Pitch = 3

	assert.Equal(t, 0.05, *a.Moras[0].ConsonantLength)
	assert.Zero(t, a.PauseMora.VowelLength)
	assert.Zero(t, a.Moras[0].Pitch)
}

func TestClone_KeepsNilMoras(t *testing.T) {
	assert.Nil(t, AccentPhrase{Accent: 1}.Clone().Moras)
	assert.NotNil(t, AccentPhrase{Moras: []Mora{}}.Clone().Moras)
}

func TestDefaultAudioQuery(t *testing.T) {
	q := DefaultAudioQuery(nil)
	require.NoError(t, q.Validate())
	assert.NotNil(t, q.AccentPhrases)
	assert.Equal(t, 1.0, q.SpeedScale)
	assert.Equal(t, 0.0, q.PitchScale)
	assert.Equal(t, 1.0, q.IntonationScale)
	assert.Equal(t, 1.0, q.VolumeScale)
	assert.Equal(t, 0.1, q.PrePhonemeLength)
	assert.Equal(t, 0.1, q.PostPhonemeLength)
	assert.Equal(t, DefaultSamplingRate, q.OutputSamplingRate)
	assert.Equal(t, 1, q.Channels())
}

func TestValidate(t *testing.T) {
	good := func() *AudioQuery {
		return DefaultAudioQuery([]AccentPhrase{{
			Moras:  []Mora{{Text: "ka", Consonant: ptr("k"), ConsonantLength: ptr(0.1), Vowel: "a", VowelLength: 0.1, Pitch: 5}},
			Accent: 1,
		}})
	}
	tests := []struct {
		name      string
		mutate    func(q *AudioQuery)
		wantField string
	}{
		{"ok", func(*AudioQuery) {}, ""},
		{"stereo 48k", func(q *AudioQuery) { q.OutputStereo = true; q.OutputSamplingRate = 48000 }, ""},
		{"zero speed", func(q *AudioQuery) { q.SpeedScale = 0 }, "speedScale"},
		{"negative volume", func(q *AudioQuery) { q.VolumeScale = -1 }, "volumeScale"},
		{"negative pre", func(q *AudioQuery) { q.PrePhonemeLength = -0.1 }, "prePhonemeLength"},
		{"negative post", func(q *AudioQuery) { q.PostPhonemeLength = -0.1 }, "postPhonemeLength"},
		{"non multiple rate", func(q *AudioQuery) { q.OutputSamplingRate = 44100 }, "outputSamplingRate"},
		{"zero rate", func(q *AudioQuery) { q.OutputSamplingRate = 0 }, "outputSamplingRate"},
		{"accent past end", func(q *AudioQuery) { q.AccentPhrases[0].Accent = 2 }, "accent_phrases[0].accent"},
		{"no moras", func(q *AudioQuery) { q.AccentPhrases[0].Moras = nil }, "accent_phrases[0].moras"},
		{"unknown vowel", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].Vowel = "x" }, "accent_phrases[0].moras[0].vowel"},
		{"vowel as consonant", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].Consonant = ptr("a") }, "accent_phrases[0].moras[0].consonant"},
		{"missing consonant length", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].ConsonantLength = nil }, "accent_phrases[0].moras[0].consonant_length"},
		{"bad pause mora", func(q *AudioQuery) { q.AccentPhrases[0].PauseMora = &Mora{Vowel: "k"} }, "accent_phrases[0].pause_mora.vowel"},
		{"negative vowel length", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].VowelLength = -0.1 }, "accent_phrases[0].moras[0].vowel_length"},
		{"infinite vowel length", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].VowelLength = math.Inf(1) }, "accent_phrases[0].moras[0].vowel_length"},
		{"nan consonant length", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].ConsonantLength = ptr(math.NaN()) }, "accent_phrases[0].moras[0].consonant_length"},
		{"nan pitch", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].Pitch = math.NaN() }, "accent_phrases[0].moras[0].pitch"},
		{"huge vowel length", func(q *AudioQuery) { q.AccentPhrases[0].Moras[0].VowelLength = 1e300 }, "accent_phrases"},
		{"huge pre length", func(q *AudioQuery) { q.PrePhonemeLength = 1e6 }, "accent_phrases"},
		{"tiny speed", func(q *AudioQuery) { q.SpeedScale = 1e-9 }, "accent_phrases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := good()
			tt.mutate(q)
			err := q.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var qerr *InvalidQueryError
			require.True(t, errors.As(err, &qerr), "got %v", err)
			assert.Equal(t, tt.wantField, qerr.Field)
		})
	}
}

func TestDuration(t *testing.T) {
	q := DefaultAudioQuery([]AccentPhrase{{
		Moras:           []Mora{{Text: "ka", Consonant: ptr("k"), ConsonantLength: ptr(0.05), Vowel: "a", VowelLength: 0.1, Pitch: 5}},
		Accent:          1,
		PauseMora:       &Mora{Text: PauseText, Vowel: "pau", VowelLength: 0.3},
		IsInterrogative: true,
	}})
	assert.InDelta(t, 0.1+0.1+0.05+0.1+0.3+UpspeakVowelLength, q.Duration(), 1e-9)

	q.SpeedScale = 2
	assert.InDelta(t, (0.1+0.1+0.05+0.1+0.3+UpspeakVowelLength)/2, q.Duration(), 1e-9)

	assert.NoError(t, q.ValidateWithin(1))
	var qerr *InvalidQueryError
	require.ErrorAs(t, q.ValidateWithin(0.1), &qerr)
	assert.Equal(t, "accent_phrases", qerr.Field)
}

func TestAudioQuery_JSONFieldNames(t *testing.T) {
	q := DefaultAudioQuery([]AccentPhrase{{Moras: []Mora{{Text: "a", Vowel: "a"}}, Accent: 1}})
	b, err := json.Marshal(q)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, k := range []string{
		"accent_phrases", "speedScale", "pitchScale", "intonationScale", "volumeScale",
		"prePhonemeLength", "postPhonemeLength", "outputSamplingRate", "outputStereo", "kana",
	} {
		assert.Contains(t, raw, k)
	}
	mora := raw["accent_phrases"].([]any)[0].(map[string]any)["moras"].([]any)[0].(map[string]any)
	assert.NotContains(t, mora, "consonant")
	assert.Contains(t, mora, "vowel_length")
}

func TestAudioQuery_KeepsKana(t *testing.T) {
	in := `{"accent_phrases":[],"speedScale":1,"pitchScale":0,"intonationScale":1,"volumeScale":1,` +
		`"prePhonemeLength":0.1,"postPhonemeLength":0.1,"outputSamplingRate":24000,"outputStereo":false,"kana":"コ'ンニチワ"}`
	var q AudioQuery
	require.NoError(t, json.Unmarshal([]byte(in), &q))
	assert.Equal(t, "コ'ンニチワ", q.Kana)

	out, err := json.Marshal(&q)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}
