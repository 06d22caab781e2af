package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/gojungse/internal/rules"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ruleView is the serialized shape of a rule in json and yaml output.
type ruleView struct {
	Row         int    `json:"row" yaml:"row"`
	Priority    int    `json:"priority" yaml:"priority"`
	Mode        string `json:"mode" yaml:"mode"`
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Condition   string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"`
}

func viewOf(rs []rules.Rule) []ruleView {
	out := make([]ruleView, 0, len(rs))
	for _, r := range rs {
		out = append(out, ruleView{
			Row:         r.Row,
			Priority:    r.Priority,
			Mode:        string(r.Mode),
			Source:      r.Source,
			Destination: r.Destination,
			Condition:   r.ConditionText,
			Note:        r.Note,
		})
	}
	return out
}

// PrintRules writes rs to w in the given format, in the order given.
func PrintRules(w io.Writer, rs []rules.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]ruleView{"rules": viewOf(rs)})
	case FormatYAML:
		return printYAML(w, viewOf(rs))
	case FormatTable:
		return printRuleTable(w, rs)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintWarnings writes lint findings to w. Nothing is written when there are
// none.
func PrintWarnings(w io.Writer, warnings []rules.ValidationError, format OutputFormat) error {
	type warningView struct {
		Row     int    `json:"row" yaml:"row"`
		Field   string `json:"field" yaml:"field"`
		Problem string `json:"problem" yaml:"problem"`
		Detail  string `json:"detail" yaml:"detail"`
	}
	views := make([]warningView, 0, len(warnings))
	for _, v := range warnings {
		problem := ""
		if v.Err != nil {
			problem = v.Err.Error()
		}
		views = append(views, warningView{Row: v.Row, Field: v.Field, Problem: problem, Detail: v.Detail})
	}

	switch format {
	case FormatJSON:
		return printJSON(w, map[string]any{"warnings": views})
	case FormatYAML:
		return printYAML(w, views)
	case FormatTable:
		if len(views) == 0 {
			return nil
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"Row", "Field", "Problem", "Detail"})
		for _, v := range views {
			t.AppendRow(table.Row{v.Row, v.Field, v.Problem, v.Detail})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func printRuleTable(w io.Writer, rs []rules.Rule) error {
	if len(rs) == 0 {
		_, err := fmt.Fprintln(w, "(0 rules)")
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Row", "Priority", "Mode", "Source", "Destination", "Condition", "Note"})
	for _, r := range rs {
		note := r.Note
		if len([]rune(note)) > 30 {
			note = string([]rune(note)[:29]) + "…"
		}
		t.AppendRow(table.Row{strconv.Itoa(r.Row), r.Priority, r.Mode, r.Source, r.Destination, r.ConditionText, note})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "total", len(rs)})
	t.Render()
	return nil
}
