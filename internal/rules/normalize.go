package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/TimurManjosov/gojungse/internal/condition"
)

// Column names recognized in a header row.
const (
	ColumnSource      = "현대어"
	ColumnDestination = "중세어"
	ColumnMode        = "적용방식"
	ColumnCondition   = "조건"
	ColumnPriority    = "우선순위"
	ColumnNote        = "비고"
)

// LegacyHeader is the positional layout assumed when a table has no header.
var LegacyHeader = []string{ColumnSource, ColumnDestination, ColumnMode, ColumnPriority, ColumnNote}

// Layout describes how cells of a data row map to rule fields.
type Layout struct {
	// HasHeader is true when the first row named the columns.
	HasHeader bool
	// HasCondition is true when a dedicated condition column exists.
	HasCondition bool

	header []string
}

// DetectLayout inspects the first row. It is treated as a header when it
// contains any of the source, destination or mode column names.
func DetectLayout(rows [][]string) Layout {
	if len(rows) > 0 {
		first := trimAll(rows[0])
		if contains(first, ColumnSource) || contains(first, ColumnDestination) || contains(first, ColumnMode) {
			return Layout{
				HasHeader:    true,
				HasCondition: contains(first, ColumnCondition),
				header:       first,
			}
		}
	}
	return Layout{header: LegacyHeader}
}

func (l Layout) index(name string) int {
	for i, h := range l.header {
		if h == name {
			return i
		}
	}
	return -1
}

// cell resolves a field by header name, falling back to a fixed position
// when the name is absent. Missing cells read as "".
func (l Layout) cell(row []string, name string, fallback int) string {
	i := l.index(name)
	if i == -1 {
		i = fallback
	}
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var noteCondition = regexp.MustCompile(`조건\s*=\s*([^\n\r]+)`)

// ConditionFromNote extracts the text after a "조건=" marker in a note.
func ConditionFromNote(note string) string {
	m := noteCondition.FindStringSubmatch(note)
	if m == nil {
		return ""
	}
	return condition.Cleanup(m[1])
}

// Normalize turns ingested rows into rules. Rows with neither a source nor a
// destination are dropped; every other row yields exactly one rule. The
// result is in table order; sorting is the caller's concern.
func Normalize(rows [][]string) []Rule {
	layout := DetectLayout(rows)
	start := 0
	if layout.HasHeader {
		start = 1
	}

	priorityPos, notePos := 3, 4
	if layout.HasCondition {
		priorityPos, notePos = 4, 5
	}

	out := make([]Rule, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		src := layout.cell(row, ColumnSource, 0)
		dst := layout.cell(row, ColumnDestination, 1)
		if src == "" && dst == "" {
			continue
		}

		modeToken := layout.cell(row, ColumnMode, 2)
		mode, _ := ParseMode(modeToken)

		priorityToken := layout.cell(row, ColumnPriority, priorityPos)
		priority, _ := ParsePriority(priorityToken)

		note := layout.cell(row, ColumnNote, notePos)

		var condText string
		if layout.HasCondition {
			condText = layout.cell(row, ColumnCondition, 3)
		}
		if condText == "" {
			condText = ConditionFromNote(note)
		}
		condText = condition.Cleanup(condText)

		out = append(out, Rule{
			Source:        src,
			Destination:   dst,
			Mode:          mode,
			Priority:      priority,
			ConditionText: condText,
			Note:          note,
			Row:           i + 1,
			Condition:     condition.Parse(condText),
			ModeToken:     modeToken,
			PriorityToken: priorityToken,
		})
	}
	return out
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func contains(cells []string, want string) bool {
	for _, c := range cells {
		if c == want {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParsePriority reads the leading integer of tok: optional whitespace, an
// optional sign, then decimal digits. Anything after the digits is ignored,
// so "3.5" is 3 and "5위" is 5. ok is false when there are no digits, in
// which case the priority is 0.
func ParsePriority(tok string) (n int, ok bool) {
	s := strings.TrimLeft(tok, " \t")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of range for int
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
