// Package ingest splits raw rule-table text into rows of cells.
//
// The format is a forgiving flavour of CSV: comma separated, double-quote
// delimited fields, "" as an escaped quote. An unmatched quote is tolerated
// and simply keeps the remainder of the line inside the current field.
// Rows are never validated for length; callers resolve missing cells by
// position.
package ingest

import (
	"strings"
)

const (
	separator = ','
	quote     = '"'
	bom       = "\uFEFF"
)

// Parse returns one row per non-blank line of raw.
// All newline conventions (\r\n, \r, \n) are treated alike.
func Parse(raw string) [][]string {
	raw = strings.TrimPrefix(raw, bom)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var rows [][]string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, ParseLine(line))
	}
	return rows
}

// ParseLine splits a single line into cells.
func ParseLine(line string) []string {
	var (
		cells    []string
		cur      strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == quote:
			if inQuotes && i+1 < len(runes) && runes[i+1] == quote {
				cur.WriteRune(quote)
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == separator && !inQuotes:
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(cells, cur.String())
}
