package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createRuleTables = `CREATE TABLE IF NOT EXISTS rule_tables (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectRuleTable = `SELECT name, body, updated_at FROM rule_tables WHERE name = $1`
	upsertRuleTable = `INSERT INTO rule_tables (name, body, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
)

// PostgresStore keeps rule tables in the rule_tables table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool. Call EnsureSchema before first use on a
// fresh database.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the rule_tables table when missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createRuleTables); err != nil {
		return fmt.Errorf("create rule_tables: %w", err)
	}
	return nil
}

func (p *PostgresStore) GetRuleTable(ctx context.Context, name string) (*RuleTable, error) {
	var t RuleTable
	err := p.pool.QueryRow(ctx, selectRuleTable, name).Scan(&t.Name, &t.Body, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select rule table %q: %w", name, err)
	}
	return &t, nil
}

func (p *PostgresStore) PutRuleTable(ctx context.Context, name, body string) error {
	if _, err := p.pool.Exec(ctx, upsertRuleTable, name, body); err != nil {
		return fmt.Errorf("upsert rule table %q: %w", name, err)
	}
	return nil
}

// Close closes the underlying pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
