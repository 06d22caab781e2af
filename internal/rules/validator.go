package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors wrapped by ValidationError. None of them stops a table from
// loading: every one has a fallback applied during normalization or
// translation.
var (
	ErrUnknownMode      = errors.New("unknown mode")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrUnknownPredicate = errors.New("unknown condition predicate")
	ErrInvalidPattern   = errors.New("invalid regular expression")
	ErrEmptySource      = errors.New("empty source")
	ErrConditionIgnored = errors.New("condition ignored")
)

// ValidationError is a non-fatal finding about one rule.
type ValidationError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d [%s]: %v: %s", e.Row, e.Field, e.Err, e.Detail)
}

func (e ValidationError) Unwrap() error { return e.Err }

// Validate reports, for every rule, the places where a conservative fallback
// will kick in. It is a pure function and never mutates rs.
func Validate(rs []Rule) []ValidationError {
	var out []ValidationError
	for _, r := range rs {
		out = append(out, validateRule(r)...)
	}
	return out
}

func validateRule(r Rule) []ValidationError {
	var out []ValidationError
	add := func(field string, err error, format string, args ...any) {
		out = append(out, ValidationError{Row: r.Row, Field: field, Err: err, Detail: fmt.Sprintf(format, args...)})
	}

	if r.ModeToken != "" {
		if _, ok := ParseMode(r.ModeToken); !ok {
			add(ColumnMode, ErrUnknownMode, "%q treated as %s", r.ModeToken, ModeLiteral)
		}
	}

	if r.PriorityToken != "" {
		if _, err := strconv.Atoi(r.PriorityToken); err != nil {
			add(ColumnPriority, ErrInvalidPriority, "%q treated as %d", r.PriorityToken, r.Priority)
		}
	}

	if names := r.Condition.UnknownNames(); len(names) > 0 {
		add(ColumnCondition, ErrUnknownPredicate, "%s never holds", strings.Join(names, ", "))
	}

	if len(r.Alternatives()) == 0 {
		add(ColumnSource, ErrEmptySource, "rule with destination %q never applies", r.Destination)
	}

	switch r.Mode {
	case ModeRegex:
		if !r.Conditional() && r.Source != "" {
			if _, err := regexp.Compile(r.Source); err != nil {
				add(ColumnSource, ErrInvalidPattern, "falls back to literal replace: %v", err)
			}
		}
	case ModePrefix, ModeSuffix:
		if r.Conditional() {
			add(ColumnCondition, ErrConditionIgnored, "%s rules do not evaluate conditions", r.Mode)
		}
	}

	return out
}
