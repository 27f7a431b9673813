package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

var credentialsTable = goqu.T("algofab_credentials")

// SQLAuthenticator stores credentials in any database/sql-backed store
// goqu has a dialect for, grounded on the teacher's
// internal/store/postgres CRUD pattern (goqu.Record + ToSQL +
// QueryContext/ExecContext) generalized from provider/token rows to
// credential rows.
type SQLAuthenticator struct {
	db   *sql.DB
	goqu *goqu.Database
}

// NewSQLAuthenticator wraps an already-open *sql.DB. Callers must have
// already migrated algofab_credentials into existence.
func NewSQLAuthenticator(db *sql.DB, dialect string) *SQLAuthenticator {
	return &SQLAuthenticator{db: db, goqu: goqu.New(dialect, db)}
}

type credentialRow struct {
	ID      string
	KeyHash string
	All     bool
	Access  string // JSON-encoded []string
}

func (s *SQLAuthenticator) fetch(ctx context.Context, id string) (credentialRow, bool, error) {
	query, args, err := s.goqu.From(credentialsTable).
		Select("id", "key_hash", "access_all", "access").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return credentialRow{}, false, fmt.Errorf("auth: build fetch query: %w", err)
	}

	var row credentialRow
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&row.ID, &row.KeyHash, &row.All, &row.Access); err != nil {
		if err == sql.ErrNoRows {
			return credentialRow{}, false, nil
		}
		return credentialRow{}, false, fmt.Errorf("auth: fetch credential %q: %w", id, err)
	}
	return row, true, nil
}

func (s *SQLAuthenticator) Authenticate(ctx context.Context, id, key string) (bool, error) {
	row, ok, err := s.fetch(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return constantTimeEqual([]byte(encodeHash(hashKey(key))), []byte(row.KeyHash)), nil
}

func (s *SQLAuthenticator) AccessFor(ctx context.Context, id string) (AccessSet, bool, error) {
	row, ok, err := s.fetch(ctx, id)
	if err != nil || !ok {
		return AccessSet{}, false, err
	}
	if row.All {
		return AllAccess(), true, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(row.Access), &ids); err != nil {
		return AccessSet{}, false, fmt.Errorf("auth: decode access list for %q: %w", id, err)
	}
	return NewAccessSet(ids...), true, nil
}

func (s *SQLAuthenticator) Create(ctx context.Context, access AccessSet) (string, string, error) {
	id, err := randomID(12)
	if err != nil {
		return "", "", err
	}
	key := newCredentialKey()

	all, ids := fromAccessSet(access)
	accessJSON, err := json.Marshal(ids)
	if err != nil {
		return "", "", fmt.Errorf("auth: encode access list: %w", err)
	}

	insert, args, err := s.goqu.Insert(credentialsTable).Rows(goqu.Record{
		"id":         id,
		"key_hash":   encodeHash(hashKey(key)),
		"access_all": all,
		"access":     string(accessJSON),
	}).ToSQL()
	if err != nil {
		return "", "", fmt.Errorf("auth: build insert query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, insert, args...); err != nil {
		return "", "", fmt.Errorf("auth: create credential: %w", err)
	}
	return id, key, nil
}

func (s *SQLAuthenticator) Revoke(ctx context.Context, id string) error {
	del, args, err := s.goqu.From(credentialsTable).
		Where(goqu.Ex{"id": id}).
		Delete().
		ToSQL()
	if err != nil {
		return fmt.Errorf("auth: build delete query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, del, args...)
	if err != nil {
		return fmt.Errorf("auth: revoke credential %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("auth: revoke credential %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("auth: credential %q not found", id)
	}
	return nil
}
