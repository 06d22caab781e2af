package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/ingest"
	"github.com/TimurManjosov/gojungse/internal/rules"
	"github.com/TimurManjosov/gojungse/internal/snapshot"
	"github.com/TimurManjosov/gojungse/internal/telemetry"
)

var (
	// ErrSourceUnavailable wraps any failure to obtain rule table bytes.
	ErrSourceUnavailable = errors.New("rule source unavailable")
	// ErrInvalidEncoding is returned for rule tables that are not UTF-8.
	ErrInvalidEncoding = errors.New("rule table is not valid UTF-8")
)

// Fetcher yields raw rule table text.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
	String() string
}

// Engine owns the rule table in force and translates against it.
// Translate may be called concurrently with itself and with loads.
type Engine struct {
	tables *snapshot.Holder
	log    zerolog.Logger

	loadMu sync.Mutex
}

// New returns an Engine over tables. A nil holder starts a fresh empty one.
func New(tables *snapshot.Holder, logger zerolog.Logger) *Engine {
	if tables == nil {
		tables = snapshot.NewHolder()
	}
	return &Engine{
		tables: tables,
		log:    logger.With().Str("component", "engine").Logger(),
	}
}

// Tables exposes the holder, e.g. for change subscriptions.
func (e *Engine) Tables() *snapshot.Holder {
	return e.tables
}

// Table returns the table currently in force.
func (e *Engine) Table() *snapshot.Table {
	return e.tables.Load()
}

// LoadRuleTable parses raw and replaces the current table with the result.
// On error the current table is reset to empty.
func (e *Engine) LoadRuleTable(raw string) (LoadResult, error) {
	return e.LoadRuleTableFrom(raw, "inline")
}

// LoadRuleTableFrom is LoadRuleTable with a description of where raw came from.
func (e *Engine) LoadRuleTableFrom(raw, origin string) (LoadResult, error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.load(raw, origin)
}

// Reload fetches the table from src and installs it. If the source fails the
// table is reset to empty and the error wraps ErrSourceUnavailable.
func (e *Engine) Reload(ctx context.Context, src Fetcher) (LoadResult, error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	raw, err := src.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src, err)
		e.reset(src.String(), err)
		return LoadResult{}, err
	}
	return e.load(raw, src.String())
}

// load and reset expect loadMu to be held.
func (e *Engine) load(raw, origin string) (LoadResult, error) {
	if !utf8.ValidString(raw) {
		e.reset(origin, ErrInvalidEncoding)
		return LoadResult{}, ErrInvalidEncoding
	}

	rs := rules.Normalize(ingest.Parse(raw))
	warnings := rules.Validate(rs)
	tbl := snapshot.Build(rs, origin)

	e.tables.Update(tbl)

	telemetry.RuleTableRules.Set(float64(tbl.Len()))
	telemetry.RuleTableLoads.WithLabelValues("ok").Inc()

	e.log.Info().
		Int("rules", tbl.Len()).
		Str("etag", tbl.ETag).
		Str("origin", origin).
		Int("warnings", len(warnings)).
		Msg("rule table loaded")
	for _, w := range warnings {
		e.log.Warn().Int("row", w.Row).Str("field", w.Field).Msg(w.Error())
	}

	return LoadResult{
		RuleCount: tbl.Len(),
		ETag:      tbl.ETag,
		Origin:    origin,
		Warnings:  warnings,
	}, nil
}

func (e *Engine) reset(origin string, cause error) {
	e.tables.Update(snapshot.Empty(origin))

	telemetry.RuleTableRules.Set(0)
	telemetry.RuleTableLoads.WithLabelValues("error").Inc()
	e.log.Error().Err(cause).Str("origin", origin).Msg("rule table load failed, table reset to empty")
}

// Translate rewrites input with the current table. It never fails; with
// diagnostics on, the rules that changed the text are returned in order.
func (e *Engine) Translate(input string, diagnostics bool) Result {
	tbl := e.tables.Load()
	telemetry.Translations.Inc()

	var collected TraceCollector
	collect := collected.Trace()
	trace := func(a Application) {
		telemetry.RuleApplications.WithLabelValues(string(a.Mode)).Inc()
		if diagnostics {
			collect(a)
			e.log.Debug().Str("etag", tbl.ETag).Msg(a.String())
		}
	}

	out := Translate(input, tbl.Rules, trace)
	return Result{Output: out, Applied: collected.Applied, ETag: tbl.ETag}
}
