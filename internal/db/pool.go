// Package db provides the connection pool and bulk upsert helpers shared by
// the ingestion pipeline.
package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Querier is the subset of pgx operations the pipeline issues against either
// a pool or an open transaction. Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Pool is the pool-level interface, adding transaction control to Querier.
// Satisfied by *pgxpool.Pool and by pgxmock in tests.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connect establishes a connection pool, retrying indefinitely with a fixed
// delay while the store is unreachable. The ingestion job is a batch process
// that may start before the database does, so waiting is the correct behavior;
// cancel the context to give up. A DSN that fails to parse is returned
// immediately as a permanent error.
func Connect(ctx context.Context, dsn string, retryDelay time.Duration) (*pgxpool.Pool, error) {
	log := zap.L().With(zap.String("component", "db"))

	var pool *pgxpool.Pool
	op := func() error {
		cfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return backoff.Permanent(eris.Wrap(err, "db: parse connection string"))
		}

		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "db: create connection pool")
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return eris.Wrap(err, "db: ping")
		}

		pool = p
		return nil
	}

	notify := func(err error, next time.Duration) {
		log.Warn("store unreachable, retrying",
			zap.Error(err),
			zap.Duration("retry_in", next),
		)
	}

	bo := backoff.WithContext(backoff.NewConstantBackOff(retryDelay), ctx)
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return nil, err
	}

	log.Info("connected to store")
	return pool, nil
}
