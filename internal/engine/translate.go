// Package engine rewrites text by applying a rule table.
//
// Rules are applied one after another in table order and each rule sees the
// text as left by the previous one. A rule never re-scans its own output.
package engine

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/TimurManjosov/gojungse/internal/condition"
	"github.com/TimurManjosov/gojungse/internal/rules"
)

// regexCache keeps compiled patterns for the hot translation path.
// Expected value type is *regexp.Regexp; a nil value marks a pattern that
// failed to compile.
var regexCache sync.Map

// Translate applies rs to text. The input is NFC-normalized first. trace,
// when non-nil, is called for every rule that changed the text and has no
// influence on the result.
func Translate(text string, rs []rules.Rule, trace Tracer) string {
	text = norm.NFC.String(text)

	for _, r := range rs {
		alts := r.Alternatives()
		if len(alts) == 0 {
			continue
		}

		before := text
		text = apply(text, r, alts)

		if trace != nil && text != before {
			trace(newApplication(r))
		}
	}
	return text
}

func apply(text string, r rules.Rule, alts []string) string {
	switch r.Mode {
	case rules.ModePrefix, rules.ModeSuffix:
		// conditions are not evaluated for anchored modes
		for _, alt := range alts {
			text = replaceAnchored(text, alt, r.Destination, r.Mode == rules.ModePrefix)
		}
	case rules.ModeRegex:
		// A conditional regex rule is matched literally: phonetic lookbehind
		// on top of regex match boundaries is not supported.
		if r.Conditional() {
			for _, alt := range alts {
				text = replaceConditional(text, alt, r.Destination, r.Condition)
			}
			return text
		}
		rx, ok := compiled(r.Source)
		if !ok {
			return strings.ReplaceAll(text, r.Source, r.Destination)
		}
		return rx.ReplaceAllString(text, expandTemplate(r.Destination, rx.NumSubexp()))
	default:
		for _, alt := range alts {
			if r.Conditional() {
				text = replaceConditional(text, alt, r.Destination, r.Condition)
			} else {
				text = strings.ReplaceAll(text, alt, r.Destination)
			}
		}
	}
	return text
}

// replaceConditional scans text once, left to right. At each position the
// pattern is replaced when it matches there and cond holds for the last
// character already emitted; otherwise one character is copied byte for
// byte, so invalid UTF-8 passes through unchanged.
func replaceConditional(text, pattern, dst string, cond condition.Expr) string {
	if pattern == "" || !strings.Contains(text, pattern) {
		return text
	}
	dstLast, _ := utf8.DecodeLastRuneInString(dst)

	var (
		out  strings.Builder
		prev rune
	)
	out.Grow(len(text))
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], pattern) && cond.Eval(prev) {
			out.WriteString(dst)
			if dst != "" {
				prev = dstLast
			}
			i += len(pattern)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		out.WriteString(text[i : i+size])
		prev = r
		i += size
	}
	return out.String()
}

type tokenClass int

const (
	classSpace tokenClass = iota
	classPunct
	classWord
)

type token struct {
	text  string
	class tokenClass
}

func classify(r rune) tokenClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '_':
		return classWord
	default:
		return classPunct
	}
}

// tokenize splits text into maximal runs of whitespace, punctuation and word
// characters. Concatenating the tokens yields text again.
func tokenize(text string) []token {
	var (
		tokens []token
		start  int
		cur    tokenClass
	)
	for i, r := range text {
		c := classify(r)
		if i == 0 {
			cur = c
			continue
		}
		if c != cur {
			tokens = append(tokens, token{text: text[start:i], class: cur})
			start, cur = i, c
		}
	}
	if start < len(text) {
		tokens = append(tokens, token{text: text[start:], class: cur})
	}
	return tokens
}

// replaceAnchored rewrites the leading (prefix) or trailing (suffix)
// occurrence of pattern in every word token.
func replaceAnchored(text, pattern, dst string, prefix bool) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, tok := range tokenize(text) {
		w := tok.text
		if tok.class == classWord {
			switch {
			case prefix && strings.HasPrefix(w, pattern):
				w = dst + w[len(pattern):]
			case !prefix && strings.HasSuffix(w, pattern):
				w = w[:len(w)-len(pattern)] + dst
			}
		}
		out.WriteString(w)
	}
	return out.String()
}

func compiled(pattern string) (*regexp.Regexp, bool) {
	if cached, ok := regexCache.Load(pattern); ok {
		rx, _ := cached.(*regexp.Regexp)
		return rx, rx != nil
	}

	rx, err := regexp.Compile(pattern)
	if err != nil {
		regexCache.Store(pattern, (*regexp.Regexp)(nil))
		return nil, false
	}
	regexCache.Store(pattern, rx)
	return rx, true
}

// expandTemplate converts a replacement written with "$1" and "$&" group
// references into regexp.Expand syntax for a pattern with the given number of
// capture groups. A reference is at most two digits; "$10" with fewer than ten
// groups is group 1 followed by "0". References to groups that do not exist,
// and any other "$", are kept literally.
func expandTemplate(dst string, groups int) string {
	if !strings.Contains(dst, "$") {
		return dst
	}
	var b strings.Builder
	for i := 0; i < len(dst); i++ {
		c := dst[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(dst) {
			b.WriteString("$$")
			continue
		}
		next := dst[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case isDigit(next):
			d := int(next - '0')
			if i+2 < len(dst) && isDigit(dst[i+2]) {
				if two := d*10 + int(dst[i+2]-'0'); two >= 1 && two <= groups {
					b.WriteString("${" + strconv.Itoa(two) + "}")
					i += 2
					continue
				}
			}
			if d >= 1 && d <= groups {
				b.WriteString("${" + strconv.Itoa(d) + "}")
				i++
				continue
			}
			b.WriteString("$$")
		default:
			b.WriteString("$$")
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
