package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	pgdb "github.com/yannaql/yannaql/pkg/database"

	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/util"
)

// LoadPostgres builds a Database by querying one table per fixed relation
// from a live Postgres connection, in the Schemas column order. Every value
// is read back as text: the evaluator treats all attributes as opaque
// strings for comparison purposes regardless of source type.
func LoadPostgres(ctx context.Context, url string) (*Database, error) {
	pool, err := pgdb.NewPoolFromURL(ctx, url)
	if err != nil {
		return nil, util.WrapError("connect to postgres", err)
	}
	defer pool.Close()

	tables := make(map[string]table.Table, len(relationOrder))

	for _, relation := range relationOrder {
		t, err := loadRelationPostgres(ctx, pool, relation)
		if err != nil {
			return nil, util.WrapError("load "+relation, err)
		}

		tables[relation] = t
	}

	return New(tables), nil
}

func loadRelationPostgres(ctx context.Context, pool *pgdb.Pool, relation string) (table.Table, error) {
	exists, err := pool.HasRelation(ctx, relation)
	if err != nil {
		return table.Table{}, err
	}

	if !exists {
		return table.Table{}, fmt.Errorf("relation %q does not exist in the connected database", relation)
	}

	schema := Schemas[relation]

	query := "SELECT " + strings.Join(schema, ", ") + " FROM " + relation

	columns := make([][]string, len(schema))

	err = fetchAll(ctx, pool, query, func(rows pgx.Rows) error {
		values := make([]any, len(schema))
		ptrs := make([]any, len(schema))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return util.WrapError("scan "+relation+" row", err)
		}

		for i, v := range values {
			columns[i] = append(columns[i], util.ToText(v))
		}

		return nil
	})
	if err != nil {
		return table.Table{}, err
	}

	return table.New(relation, schema, columns), nil
}

func fetchAll(ctx context.Context, pool *pgdb.Pool, query string, handle func(pgx.Rows) error) error {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return util.WrapError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := handle(rows); err != nil {
			return err
		}
	}

	return util.WrapError("iterate rows", rows.Err())
}
