// Package store persists raw rule tables by name so that pushed tables
// survive restarts and can be shared between server instances.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no table is stored under a name.
var ErrNotFound = errors.New("rule table not found")

// Store defines rule table persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetRuleTable returns the table stored under name, or ErrNotFound.
	GetRuleTable(ctx context.Context, name string) (*RuleTable, error)

	// PutRuleTable creates or replaces the table stored under name.
	PutRuleTable(ctx context.Context, name, body string) error

	// Close releases any resources held by the store.
	Close() error
}

// RuleTable is a stored rule table in its raw CSV form.
type RuleTable struct {
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}
