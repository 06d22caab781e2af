// Package snapshot holds the rule table currently in force.
//
// A Table is immutable once built. Reloading builds a new Table and swaps it
// into a Holder atomically, so a translation that already took a reference
// keeps using the table it started with.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/TimurManjosov/gojungse/internal/rules"
)

// Table is an ordered, sorted rule table.
type Table struct {
	ID       string       `json:"id"`
	ETag     string       `json:"etag"`
	Origin   string       `json:"origin,omitempty"`
	Rules    []rules.Rule `json:"rules"`
	LoadedAt time.Time    `json:"loadedAt"`
}

// Len returns the number of rules in t.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rules)
}

// Sort orders rs by priority descending, then by the rune length of the
// primary pattern descending. Equal keys keep their table order.
func Sort(rs []rules.Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority > rs[j].Priority
		}
		return utf8.RuneCountInString(rs[i].PrimaryPattern()) > utf8.RuneCountInString(rs[j].PrimaryPattern())
	})
}

// Build copies rs, sorts the copy and wraps it in a new Table.
func Build(rs []rules.Rule, origin string) *Table {
	sorted := make([]rules.Rule, len(rs))
	copy(sorted, rs)
	Sort(sorted)

	return &Table{
		ID:       uuid.NewString(),
		ETag:     computeETag(sorted),
		Origin:   origin,
		Rules:    sorted,
		LoadedAt: time.Now().UTC(),
	}
}

// Empty returns a table with no rules. Translating with it is the identity.
func Empty(origin string) *Table {
	return Build(nil, origin)
}

func computeETag(rs []rules.Rule) string {
	blob, _ := json.Marshal(rs)
	return fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(blob))
}

// Holder owns the current table.
type Holder struct {
	current atomic.Pointer[Table]
	notifier
}

// NewHolder returns a Holder whose current table is empty.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(Empty(""))
	h.subs = make(map[chan string]struct{})
	return h
}

// Load returns the current table. It never returns nil.
func (h *Holder) Load() *Table {
	if t := h.current.Load(); t != nil {
		return t
	}
	return Empty("")
}

// Update replaces the current table and notifies subscribers.
func (h *Holder) Update(t *Table) {
	if t == nil {
		t = Empty("")
	}
	h.current.Store(t)
	h.publish(t.ETag)
}
