// Package database provides a thin pgx connection pool wrapper used by the
// optional live-Postgres table source (internal/database's LoadPostgres):
// the CSV loader is the default, but a deployment that already mirrors the
// five demo relations into a real database can point yannaql at it instead
// of exported files.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yannaql/yannaql/internal/util"
)

// Pool wraps a pgx connection pool, exposing only the read-only query
// surface the table loader needs.
type Pool struct {
	pool *pgxpool.Pool
}

func NewPoolFromURL(ctx context.Context, url string) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, util.WrapError("parse pool config", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, util.WrapError("create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, util.WrapError("ping database", err)
	}

	return &Pool{pool: pool}, nil
}

func (p *Pool) Close() {
	p.pool.Close()
}

func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...) //nolint:wrapcheck
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// HasRelation reports whether name resolves to an existing table or view,
// using to_regclass rather than information_schema so it also recognizes
// relations only visible via the caller's current search_path.
func (p *Pool) HasRelation(ctx context.Context, name string) (bool, error) {
	var oid *uint32

	err := p.pool.QueryRow(ctx, "SELECT to_regclass($1)::oid", name).Scan(&oid)
	if err != nil {
		return false, util.WrapError("check relation "+name, err)
	}

	return oid != nil, nil
}

func (p *Pool) CurrentDatabase(ctx context.Context) (string, error) {
	var dbName string

	err := p.pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName)
	if err != nil {
		return "", util.WrapError("get current database", err)
	}

	return dbName, nil
}
