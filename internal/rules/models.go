// Package rules defines rewrite rules and turns ingested table rows into
// them.
package rules

import (
	"regexp"
	"strings"

	"github.com/TimurManjosov/gojungse/internal/condition"
)

// Mode selects how a rule's source pattern is matched.
type Mode string

// Supported modes (string values for clean JSON serialization).
const (
	ModeLiteral Mode = "literal"
	ModePrefix  Mode = "prefix"
	ModeSuffix  Mode = "suffix"
	ModeRegex   Mode = "regex"
)

// Modes lists every mode in a stable order.
var Modes = []Mode{ModeLiteral, ModePrefix, ModeSuffix, ModeRegex}

// ParseMode maps a table token to a Mode. Tokens are case-sensitive.
// Unrecognized tokens map to ModeLiteral and ok is false.
func ParseMode(token string) (mode Mode, ok bool) {
	switch strings.TrimSpace(token) {
	case "그대로", "일반", "치환", "replace":
		return ModeLiteral, true
	case "앞", "전", "prefix", "시작":
		return ModePrefix, true
	case "끝", "후", "suffix", "종결":
		return ModeSuffix, true
	case "정규식", "regex", "re", "re.sub":
		return ModeRegex, true
	default:
		return ModeLiteral, false
	}
}

// Rule is one rewriting instruction.
type Rule struct {
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	Mode          Mode   `json:"mode"`
	Priority      int    `json:"priority"`
	ConditionText string `json:"condition,omitempty"`
	Note          string `json:"note,omitempty"`
	// Row is the 1-based position of the rule's row among the non-blank
	// rows of the table it was read from, header included.
	Row int `json:"row,omitempty"`

	Condition condition.Expr `json:"-"`

	// Raw cells, kept for Validate.
	ModeToken     string `json:"-"`
	PriorityToken string `json:"-"`
}

var alternativeSplitter = regexp.MustCompile(`(?i)or`)

// Alternatives splits Source on the token "or" (any case) into trimmed,
// non-empty literal patterns, in listed order.
func (r Rule) Alternatives() []string {
	src := strings.TrimSpace(r.Source)
	if src == "" {
		return nil
	}
	if !alternativeSplitter.MatchString(src) {
		return []string{src}
	}
	var alts []string
	for _, part := range alternativeSplitter.Split(src, -1) {
		if part = strings.TrimSpace(part); part != "" {
			alts = append(alts, part)
		}
	}
	return alts
}

// PrimaryPattern is the first alternative, or "" when there is none.
func (r Rule) PrimaryPattern() string {
	alts := r.Alternatives()
	if len(alts) == 0 {
		return ""
	}
	return alts[0]
}

// Conditional reports whether the rule carries a non-empty condition.
func (r Rule) Conditional() bool {
	return !r.Condition.IsEmpty()
}
