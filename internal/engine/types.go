package engine

import (
	"fmt"

	"github.com/TimurManjosov/gojungse/internal/rules"
)

// Application describes one rule whose application changed the text.
type Application struct {
	Priority    int        `json:"priority"`
	Mode        rules.Mode `json:"mode"`
	Condition   string     `json:"condition,omitempty"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Note        string     `json:"note,omitempty"`
	Row         int        `json:"row,omitempty"`
}

func newApplication(r rules.Rule) Application {
	return Application{
		Priority:    r.Priority,
		Mode:        r.Mode,
		Condition:   r.ConditionText,
		Source:      r.Source,
		Destination: r.Destination,
		Note:        r.Note,
		Row:         r.Row,
	}
}

func (a Application) String() string {
	cond := ""
	if a.Condition != "" {
		cond = " cond=" + a.Condition
	}
	return fmt.Sprintf("[APPLIED] (%d) %s%s: '%s' -> '%s'", a.Priority, a.Mode, cond, a.Source, a.Destination)
}

// Tracer receives every Application during a translation. A nil Tracer
// disables tracing.
type Tracer func(Application)

// TraceCollector accumulates Applications in order.
type TraceCollector struct {
	Applied []Application
}

// Trace returns a Tracer appending to c.
func (c *TraceCollector) Trace() Tracer {
	return func(a Application) {
		c.Applied = append(c.Applied, a)
	}
}

// Result is the outcome of Engine.Translate.
type Result struct {
	Output  string        `json:"output"`
	Applied []Application `json:"applied,omitempty"`
	ETag    string        `json:"etag"`
}

// LoadResult summarizes a successful rule table load.
type LoadResult struct {
	RuleCount int                     `json:"ruleCount"`
	ETag      string                  `json:"etag"`
	Origin    string                  `json:"origin,omitempty"`
	Warnings  []rules.ValidationError `json:"warnings,omitempty"`
}
