package db

import (
	"context"

	"jandon-server/src/syncer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements syncer.Store on top of the pgx pool.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// InAccountTx scopes one account's ingestion to a single database
// transaction: commit if fn succeeds, roll back everything that account wrote
// otherwise.
func (s *Store) InAccountTx(ctx context.Context, fn func(syncer.Ingester) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(&accountTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type accountTx struct {
	tx pgx.Tx
}
