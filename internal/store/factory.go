package store

import (
	"context"
	"fmt"

	mydb "github.com/TimurManjosov/gojungse/internal/db"
)

// NewStore creates a store of the given type.
// Supported types: "memory", "postgres". The postgres schema is created when
// missing.
func NewStore(ctx context.Context, storeType, dbDSN string) (Store, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := mydb.NewPool(ctx, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
