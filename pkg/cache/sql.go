package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

// cacheRecordsTable is the table cache entries live in, mirroring the
// teacher's goqu.T(...) identifier-expression pattern in
// internal/store/postgres/postgres.go.
var cacheRecordsTable = goqu.T("algofab_cache_records")

// SQLCache is a goqu-backed cache persisted to any database/sql driver
// goqu has a dialect for — Postgres via jackc/pgx and SQLite via
// modernc.org/sqlite are both wired through dialect name alone.
type SQLCache struct {
	db   *sql.DB
	goqu *goqu.Database
}

// NewSQLCache wraps an already-open *sql.DB. dialect must be a goqu
// dialect name ("postgres" or "sqlite3"). Callers are responsible for
// running migrations to create algofab_cache_records beforehand,
// mirroring the teacher's MigrateDB-before-New sequencing in
// internal/store/postgres.New.
func NewSQLCache(db *sql.DB, dialect string) *SQLCache {
	return &SQLCache{db: db, goqu: goqu.New(dialect, db)}
}

func (c *SQLCache) Fetch(ctx context.Context, algorithmID, signature string) (map[string]any, bool, error) {
	query, args, err := c.goqu.From(cacheRecordsTable).
		Select("output").
		Where(goqu.Ex{"algorithm_id": algorithmID, "signature": signature}).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("cache: build fetch query: %w", err)
	}

	var raw string
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: fetch %s/%s: %w", algorithmID, signature, err)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, fmt.Errorf("cache: decode stored output: %w", err)
	}
	return out, true, nil
}

func (c *SQLCache) Record(ctx context.Context, algorithmID, signature string, output map[string]any) error {
	raw, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("cache: encode output: %w", err)
	}

	del, delArgs, err := c.goqu.From(cacheRecordsTable).
		Where(goqu.Ex{"algorithm_id": algorithmID, "signature": signature}).
		Delete().
		ToSQL()
	if err != nil {
		return fmt.Errorf("cache: build delete query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("cache: evict existing entry: %w", err)
	}

	insert, insertArgs, err := c.goqu.Insert(cacheRecordsTable).Rows(goqu.Record{
		"algorithm_id": algorithmID,
		"signature":    signature,
		"output":       string(raw),
		"created_at":   time.Now().UTC().Format(time.RFC3339),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("cache: build insert query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, insert, insertArgs...); err != nil {
		return fmt.Errorf("cache: record %s/%s: %w", algorithmID, signature, err)
	}
	return nil
}
