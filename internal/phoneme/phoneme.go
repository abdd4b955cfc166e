// Package phoneme holds the fixed phoneme inventory shared by the acoustic
// models: symbol to id mapping, the mora-bearing subset and the pause symbol.
//
// The table is built once at package initialisation and only read afterwards,
// so it is safe for concurrent use without locking.
package phoneme

// Pause is the phoneme used for silences and to frame every model input.
const Pause = "pau"

// Empty marks "no consonant" in the consonant array given to the pitch model.
const Empty = ""

// EmptyID is the id reported for Empty.
const EmptyID int64 = -1

var symbols = [...]string{
	"pau", "A", "E", "I", "N", "O", "U", "a", "b",
	"by", "ch", "cl", "d", "dy", "e", "f", "g", "gw",
	"gy", "h", "hy", "i", "j", "k", "kw", "ky", "m",
	"my", "n", "ny", "o", "p", "py", "r", "ry", "s",
	"sh", "t", "ts", "ty", "u", "v", "w", "y", "z",
}

var ids = func() map[string]int64 {
	m := make(map[string]int64, len(symbols))
	for i, s := range symbols {
		m[s] = int64(i)
	}
	return m
}()

// moraPhonemes carry a mora on their own: vowels, devoiced vowels, the
// moraic nasal, the geminate closure and the pause.
var moraPhonemes = map[string]bool{
	"a": true, "i": true, "u": true, "e": true, "o": true,
	"N": true,
	"A": true, "I": true, "U": true, "E": true, "O": true,
	"cl": true, "pau": true,
}

var unvoicedMoraPhonemes = map[string]bool{
	"A": true, "I": true, "U": true, "E": true, "O": true, "cl": true, "pau": true,
}

// Count returns the number of phonemes known to the models. It is also the
// width of a one-hot phoneme vector.
func Count() int { return len(symbols) }

// Lookup returns the id of symbol. Empty maps to EmptyID with ok set.
func Lookup(symbol string) (id int64, ok bool) {
	if symbol == Empty {
		return EmptyID, true
	}
	id, ok = ids[symbol]
	if !ok {
		return EmptyID, false
	}
	return id, true
}

// ID returns the id of symbol, or EmptyID when the symbol is empty or unknown.
func ID(symbol string) int64 {
	id, _ := Lookup(symbol)
	return id
}

// Symbol returns the phoneme for id.
func Symbol(id int64) (string, bool) {
	if id < 0 || id >= int64(len(symbols)) {
		return "", false
	}
	return symbols[id], true
}

// IsMoraPhoneme reports whether p occupies a vowel slot.
func IsMoraPhoneme(p string) bool { return moraPhonemes[p] }

// IsUnvoicedMoraPhoneme reports whether p is a mora phoneme that carries no pitch.
func IsUnvoicedMoraPhoneme(p string) bool { return unvoicedMoraPhonemes[p] }

// IDs maps every symbol in ps to its id.
func IDs(ps []string) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = ID(p)
	}
	return out
}
