// Package hangul decodes the syllable structure of precomposed Hangul
// syllable blocks (U+AC00..U+D7A3).
package hangul

const (
	baseCodePoint = 0xAC00
	lastCodePoint = 0xD7A3
	medialCount   = 21
	trailingCount = 28
)

// HarmonyClass is the vowel-harmony grouping of a vowel nucleus.
type HarmonyClass int

const (
	Neutral HarmonyClass = iota
	Bright
	Dark
)

func (h HarmonyClass) String() string {
	switch h {
	case Bright:
		return "bright"
	case Dark:
		return "dark"
	default:
		return "neutral"
	}
}

// VowelI is the "i" vowel nucleus.
const VowelI = "ㅣ"

var (
	medialJamo = []string{"ㅏ", "ㅐ", "ㅑ", "ㅒ", "ㅓ", "ㅔ", "ㅕ", "ㅖ", "ㅗ", "ㅘ", "ㅙ", "ㅚ", "ㅛ", "ㅜ", "ㅝ", "ㅞ", "ㅟ", "ㅠ", "ㅡ", "ㅢ", "ㅣ"}

	brightVowels = map[string]struct{}{
		"ㅏ": {}, "ㅑ": {}, "ㅗ": {}, "ㅛ": {}, "ㅘ": {}, "ㅙ": {}, "ㅚ": {},
	}
	darkVowels = map[string]struct{}{
		"ㅓ": {}, "ㅕ": {}, "ㅜ": {}, "ㅠ": {}, "ㅡ": {}, "ㅝ": {}, "ㅞ": {}, "ㅟ": {}, "ㅢ": {},
	}
)

// IsSyllable reports whether r is a precomposed syllable block.
func IsSyllable(r rune) bool {
	return r >= baseCodePoint && r <= lastCodePoint
}

// trailingIndex returns the final-consonant slot of r, or -1 outside the
// syllable range. Slot 0 means no final consonant.
func trailingIndex(r rune) int {
	if !IsSyllable(r) {
		return -1
	}
	return int(r-baseCodePoint) % trailingCount
}

// HasFinalConsonant reports whether r is a syllable block with a non-empty
// final-consonant slot.
func HasFinalConsonant(r rune) bool {
	return trailingIndex(r) > 0
}

// IsOpenSyllable reports whether r is a syllable block that ends in its vowel.
// Characters outside the syllable range are neither open nor closed.
func IsOpenSyllable(r rune) bool {
	return trailingIndex(r) == 0
}

// VowelNucleus returns the compatibility jamo of r's vowel slot, or "" when r
// is not a syllable block.
func VowelNucleus(r rune) string {
	if !IsSyllable(r) {
		return ""
	}
	idx := (int(r-baseCodePoint) / trailingCount) % medialCount
	return medialJamo[idx]
}

// Harmony classifies r's vowel nucleus.
func Harmony(r rune) HarmonyClass {
	v := VowelNucleus(r)
	if _, ok := brightVowels[v]; ok {
		return Bright
	}
	if _, ok := darkVowels[v]; ok {
		return Dark
	}
	return Neutral
}
