package nlp

import "strings"

// DutchStemmer implements the Snowball stemming algorithm for Dutch. It is
// the fallback morphological reducer used when no lemma dictionary is
// configured.
type DutchStemmer struct{}

// NewDutchStemmer returns the built-in Dutch Snowball stemmer.
func NewDutchStemmer() *DutchStemmer { return &DutchStemmer{} }

// Name implements Reducer.
func (*DutchStemmer) Name() string { return "stem" }

// Reduce stems a single lowercase token. Tokens that still contain
// non-ASCII runes after accent folding are returned unchanged.
func (*DutchStemmer) Reduce(token string) string {
	w := []byte(foldAccents(token))
	for _, b := range w {
		if b >= 0x80 {
			return token
		}
	}
	if len(w) < 3 {
		return string(w)
	}

	w = prelude(w)
	r1, r2 := regions(w)

	w, r1, r2 = step1(w, r1, r2)
	var eFound bool
	w, r1, r2, eFound = step2(w, r1, r2)
	w, r1, r2 = step3a(w, r1, r2)
	w = step3b(w, r1, r2, eFound)
	w = step4(w)

	return postlude(w)
}

// accentFolds removes umlaut and acute accents per the algorithm's prelude;
// the grave accents are folded too so the rest of the stemmer can work on
// ASCII bytes.
var accentFolds = strings.NewReplacer(
	"ä", "a", "á", "a", "à", "a", "â", "a",
	"ë", "e", "é", "e", "è", "e", "ê", "e",
	"ï", "i", "í", "i", "ì", "i", "î", "i",
	"ö", "o", "ó", "o", "ò", "o", "ô", "o",
	"ü", "u", "ú", "u", "ù", "u", "û", "u",
)

func foldAccents(s string) string {
	return accentFolds.Replace(s)
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// prelude marks y and intervocalic i as consonants by upper-casing them, so
// the region and suffix logic can treat them uniformly.
func prelude(w []byte) []byte {
	out := make([]byte, len(w))
	copy(out, w)
	for i := range out {
		switch out[i] {
		case 'y':
			if i == 0 || isVowel(out[i-1]) {
				out[i] = 'Y'
			}
		case 'i':
			if i > 0 && i+1 < len(out) && isVowel(out[i-1]) && isVowel(out[i+1]) {
				out[i] = 'I'
			}
		}
	}
	return out
}

func postlude(w []byte) string {
	out := make([]byte, len(w))
	for i, b := range w {
		switch b {
		case 'Y':
			out[i] = 'y'
		case 'I':
			out[i] = 'i'
		default:
			out[i] = b
		}
	}
	return string(out)
}

// regions computes R1 and R2, with R1 adjusted so at least three letters
// precede it.
func regions(w []byte) (int, int) {
	r1 := regionAfter(w, 0)
	if r1 < 3 {
		r1 = 3
	}
	r2 := regionAfter(w, r1)
	return r1, r2
}

// regionAfter returns the position after the first non-vowel that follows a
// vowel, scanning from start. Returns len(w) when no such position exists.
func regionAfter(w []byte, start int) int {
	for i := start + 1; i < len(w); i++ {
		if isVowel(w[i-1]) && !isVowel(w[i]) {
			return i + 1
		}
	}
	return len(w)
}

func inRegion(w []byte, region, sufLen int) bool {
	return len(w)-sufLen >= region
}

func hasSuffix(w []byte, suf string) bool {
	return strings.HasSuffix(string(w), suf)
}

// undoubleEnd removes one letter from a kk, dd or tt ending.
func undoubleEnd(w []byte) []byte {
	if len(w) >= 2 {
		switch string(w[len(w)-2:]) {
		case "kk", "dd", "tt":
			return w[:len(w)-1]
		}
	}
	return w
}

// validEnEnding reports whether the stem remaining before an en/ene suffix
// ends in a non-vowel and is not "gem".
func validEnEnding(stem []byte) bool {
	if len(stem) == 0 || isVowel(stem[len(stem)-1]) {
		return false
	}
	return !strings.HasSuffix(string(stem), "gem")
}

func step1(w []byte, r1, r2 int) ([]byte, int, int) {
	switch {
	case hasSuffix(w, "heden"):
		if inRegion(w, r1, 5) {
			w = append(w[:len(w)-5], "heid"...)
		}
	case hasSuffix(w, "ene"):
		if inRegion(w, r1, 3) && validEnEnding(w[:len(w)-3]) {
			w = undoubleEnd(w[:len(w)-3])
		}
	case hasSuffix(w, "en"):
		if inRegion(w, r1, 2) && validEnEnding(w[:len(w)-2]) {
			w = undoubleEnd(w[:len(w)-2])
		}
	case hasSuffix(w, "se"):
		if inRegion(w, r1, 2) && validSEnding(w[:len(w)-2]) {
			w = w[:len(w)-2]
		}
	case hasSuffix(w, "s"):
		if inRegion(w, r1, 1) && validSEnding(w[:len(w)-1]) {
			w = w[:len(w)-1]
		}
	}
	return w, clampRegion(r1, w), clampRegion(r2, w)
}

// validSEnding reports whether the stem before an s/se suffix ends in a
// non-vowel other than j.
func validSEnding(stem []byte) bool {
	if len(stem) == 0 {
		return false
	}
	last := stem[len(stem)-1]
	return !isVowel(last) && last != 'j'
}

func step2(w []byte, r1, r2 int) ([]byte, int, int, bool) {
	if len(w) >= 2 && w[len(w)-1] == 'e' && inRegion(w, r1, 1) && !isVowel(w[len(w)-2]) {
		w = undoubleEnd(w[:len(w)-1])
		return w, clampRegion(r1, w), clampRegion(r2, w), true
	}
	return w, r1, r2, false
}

func step3a(w []byte, r1, r2 int) ([]byte, int, int) {
	if hasSuffix(w, "heid") && inRegion(w, r2, 4) && (len(w) < 5 || w[len(w)-5] != 'c') {
		w = w[:len(w)-4]
		if hasSuffix(w, "en") && inRegion(w, r1, 2) && validEnEnding(w[:len(w)-2]) {
			w = undoubleEnd(w[:len(w)-2])
		}
	}
	return w, clampRegion(r1, w), clampRegion(r2, w)
}

func step3b(w []byte, r1, r2 int, eFound bool) []byte {
	switch {
	case hasSuffix(w, "lijk"):
		if inRegion(w, r2, 4) {
			w = w[:len(w)-4]
			w, _, _, _ = step2(w, r1, r2)
		}
	case hasSuffix(w, "baar"):
		if inRegion(w, r2, 4) {
			w = w[:len(w)-4]
		}
	case hasSuffix(w, "end") || hasSuffix(w, "ing"):
		if inRegion(w, r2, 3) {
			w = w[:len(w)-3]
			if hasSuffix(w, "ig") && inRegion(w, r2, 2) && (len(w) < 3 || w[len(w)-3] != 'e') {
				w = w[:len(w)-2]
			} else {
				w = undoubleEnd(w)
			}
		}
	case hasSuffix(w, "bar"):
		if inRegion(w, r2, 3) && eFound {
			w = w[:len(w)-3]
		}
	case hasSuffix(w, "ig"):
		if inRegion(w, r2, 2) && (len(w) < 3 || w[len(w)-3] != 'e') {
			w = w[:len(w)-2]
		}
	}
	return w
}

// step4 undoubles a vowel in a CVVD ending (maan -> man, brood -> brod).
func step4(w []byte) []byte {
	n := len(w)
	if n < 4 {
		return w
	}
	d := w[n-1]
	if isVowel(d) || d == 'I' {
		return w
	}
	v1, v2 := w[n-3], w[n-2]
	if v1 != v2 {
		return w
	}
	switch v1 {
	case 'a', 'e', 'o', 'u':
	default:
		return w
	}
	if isVowel(w[n-4]) {
		return w
	}
	out := make([]byte, 0, n-1)
	out = append(out, w[:n-2]...)
	out = append(out, d)
	return out
}

func clampRegion(r int, w []byte) int {
	if r > len(w) {
		return len(w)
	}
	return r
}
