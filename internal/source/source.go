// Package source provides the places a rule table can be read from.
//
// Every Source yields the raw CSV text; parsing is the engine's job.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/config"
	"github.com/TimurManjosov/gojungse/internal/store"
)

// Source yields raw rule table text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	String() string
}

// File reads the table from a local path.
type File struct {
	Path string
}

func (f File) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f File) String() string { return "file:" + f.Path }

// Static always yields the same text.
type Static struct {
	Name string
	Body string
}

func (s Static) Fetch(context.Context) (string, error) { return s.Body, nil }

func (s Static) String() string {
	if s.Name == "" {
		return "static"
	}
	return "static:" + s.Name
}

// Stored reads the table from a store by name.
type Stored struct {
	Store store.Store
	Name  string
}

func (s Stored) Fetch(ctx context.Context) (string, error) {
	t, err := s.Store.GetRuleTable(ctx, s.Name)
	if err != nil {
		return "", err
	}
	return t.Body, nil
}

func (s Stored) String() string { return "store:" + s.Name }

// ErrNoSource is returned by New for RULES_SOURCE=none.
var ErrNoSource = errors.New("no rule source configured")

// New builds the Source selected by cfg. st is required for the postgres
// source and ignored otherwise.
func New(cfg *config.Config, st store.Store, logger zerolog.Logger) (Source, error) {
	switch cfg.RulesSource {
	case config.SourceFile:
		return File{Path: cfg.RulesPath}, nil
	case config.SourceHTTP:
		return NewHTTP(cfg.RulesURL, cfg.FetchTimeout, logger), nil
	case config.SourcePostgres:
		if st == nil {
			return nil, fmt.Errorf("postgres rule source needs a store")
		}
		return Stored{Store: st, Name: cfg.RulesTableName}, nil
	case config.SourceNone:
		return nil, ErrNoSource
	default:
		return nil, fmt.Errorf("unsupported rule source: %s", cfg.RulesSource)
	}
}
