package webhook

import (
	"time"

	"github.com/TimurManjosov/gojungse/internal/snapshot"
)

// EventRulesChanged is sent whenever a new rule table is put in force,
// including the empty table left behind by a failed load.
const EventRulesChanged = "rules.changed"

// Event is the JSON body posted to every endpoint.
type Event struct {
	Type      string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Table     TableInfo `json:"table"`
}

// TableInfo identifies the table that triggered the event.
type TableInfo struct {
	ID        string    `json:"id"`
	ETag      string    `json:"etag"`
	Origin    string    `json:"origin"`
	RuleCount int       `json:"ruleCount"`
	LoadedAt  time.Time `json:"loadedAt"`
}

// NewEvent describes t.
func NewEvent(t *snapshot.Table) Event {
	return Event{
		Type:      EventRulesChanged,
		Timestamp: time.Now().UTC(),
		Table: TableInfo{
			ID:        t.ID,
			ETag:      t.ETag,
			Origin:    t.Origin,
			RuleCount: t.Len(),
			LoadedAt:  t.LoadedAt,
		},
	}
}

// Endpoint is one subscriber URL. Payloads are signed with Secret.
type Endpoint struct {
	URL        string
	Secret     string
	MaxRetries uint
	Timeout    time.Duration
}
