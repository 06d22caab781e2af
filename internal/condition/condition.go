// Package condition parses and evaluates phonetic conditions attached to
// rewrite rules.
//
// A condition is a disjunction of conjunctions of predicate names:
//
//	모음뒤 or 자음뒤and양성모음뒤
//
// Every predicate inspects the character immediately before the match
// position. Predicate names that are not recognized parse to Unknown, which
// never holds, so a rule guarded by a condition nobody understands is never
// applied.
package condition

import (
	"regexp"
	"strings"

	"github.com/TimurManjosov/gojungse/internal/hangul"
)

// Predicate is one phonetic test on the preceding character.
type Predicate int

const (
	Unknown Predicate = iota
	ConsonantFinal
	VowelFinal
	BrightVowelFinal
	DarkVowelFinal
	IVowelFinal
	NonIVowelFinal
)

var predicateNames = map[Predicate]string{
	Unknown:          "unknown",
	ConsonantFinal:   "자음뒤",
	VowelFinal:       "모음뒤",
	BrightVowelFinal: "양성모음뒤",
	DarkVowelFinal:   "음성모음뒤",
	IVowelFinal:      "ㅣ모음뒤",
	NonIVowelFinal:   "ㅣ외의모음뒤",
}

func (p Predicate) String() string {
	return predicateNames[p]
}

// lookupPredicate resolves a cleaned token, including its aliases.
func lookupPredicate(token string) Predicate {
	switch strings.ToLower(token) {
	case "자음뒤", "consonant-final":
		return ConsonantFinal
	case "모음뒤", "vowel-final":
		return VowelFinal
	case "양성모음뒤", "bright-vowel-final":
		return BrightVowelFinal
	case "음성모음뒤", "dark-vowel-final":
		return DarkVowelFinal
	case "ㅣ모음뒤", "중성모음ㅣ뒤", "i-vowel-final":
		return IVowelFinal
	case "ㅣ외의모음뒤", "ㅣ외모음뒤", "non-i-vowel-final":
		return NonIVowelFinal
	default:
		return Unknown
	}
}

// Holds reports whether p is true for the character prev. A zero rune means
// there is no preceding character.
func (p Predicate) Holds(prev rune) bool {
	switch p {
	case ConsonantFinal:
		return hangul.HasFinalConsonant(prev)
	case VowelFinal:
		return hangul.IsOpenSyllable(prev)
	case BrightVowelFinal:
		return hangul.IsOpenSyllable(prev) && hangul.Harmony(prev) == hangul.Bright
	case DarkVowelFinal:
		return hangul.IsOpenSyllable(prev) && hangul.Harmony(prev) == hangul.Dark
	case IVowelFinal:
		return hangul.IsOpenSyllable(prev) && hangul.VowelNucleus(prev) == hangul.VowelI
	case NonIVowelFinal:
		v := hangul.VowelNucleus(prev)
		return hangul.IsOpenSyllable(prev) && v != "" && v != hangul.VowelI
	default:
		return false
	}
}

// Atom is a parsed predicate together with the token it was parsed from.
type Atom struct {
	Predicate Predicate
	Name      string
}

// Conjunction holds when all of its atoms hold.
type Conjunction []Atom

// Expr holds when any of its conjunctions holds. The zero Expr always holds.
type Expr []Conjunction

var (
	phraseCleaner = strings.NewReplacer(
		"에서쓰일때", "",
		"에서쓸때", "",
		"쓸때", "",
		"일때", "",
		"‘", "",
		"’", "",
		"'", "",
		`"`, "",
		" ", "",
		"\t", "",
	)

	orSplitter  = regexp.MustCompile(`(?i)or`)
	andSplitter = regexp.MustCompile(`(?i)and`)
)

// Cleanup strips the descriptive trailing phrases ("...일때"), quote
// characters and blanks that rule authors tend to leave around conditions.
func Cleanup(text string) string {
	return strings.TrimSpace(phraseCleaner.Replace(text))
}

// Parse turns condition text into an Expr. Empty text yields an empty Expr.
func Parse(text string) Expr {
	text = Cleanup(text)
	if text == "" {
		return nil
	}

	var expr Expr
	for _, part := range orSplitter.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var conj Conjunction
		for _, token := range andSplitter.Split(part, -1) {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			conj = append(conj, Atom{Predicate: lookupPredicate(token), Name: token})
		}
		if len(conj) > 0 {
			expr = append(expr, conj)
		}
	}
	return expr
}

// IsEmpty reports whether e is unconditional.
func (e Expr) IsEmpty() bool {
	return len(e) == 0
}

// Eval evaluates e against the preceding character prev (0 for none).
func (e Expr) Eval(prev rune) bool {
	if len(e) == 0 {
		return true
	}
	for _, conj := range e {
		if conj.holds(prev) {
			return true
		}
	}
	return false
}

// EvalAt evaluates e for a match starting at index i of text.
func (e Expr) EvalAt(text []rune, i int) bool {
	var prev rune
	if i > 0 && i <= len(text) {
		prev = text[i-1]
	}
	return e.Eval(prev)
}

func (c Conjunction) holds(prev rune) bool {
	for _, atom := range c {
		if !atom.Predicate.Holds(prev) {
			return false
		}
	}
	return true
}

// UnknownNames lists the tokens that did not resolve to a predicate.
func (e Expr) UnknownNames() []string {
	var names []string
	for _, conj := range e {
		for _, atom := range conj {
			if atom.Predicate == Unknown {
				names = append(names, atom.Name)
			}
		}
	}
	return names
}

// String renders e in canonical form, e.g. "모음뒤 and 양성모음뒤 or 자음뒤".
func (e Expr) String() string {
	parts := make([]string, 0, len(e))
	for _, conj := range e {
		names := make([]string, 0, len(conj))
		for _, atom := range conj {
			if atom.Predicate == Unknown {
				names = append(names, atom.Name)
				continue
			}
			names = append(names, atom.Predicate.String())
		}
		parts = append(parts, strings.Join(names, " and "))
	}
	return strings.Join(parts, " or ")
}
