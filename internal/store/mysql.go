package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/content-hub/internal/apperr"
)

const documentsDDL = `CREATE TABLE IF NOT EXISTS documents (
	k          VARCHAR(255) NOT NULL PRIMARY KEY,
	v          LONGBLOB     NOT NULL,
	updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQL keeps every document in a single documents table keyed by k.
type MySQL struct{ db *sql.DB }

// NewMySQL creates the documents table when missing.
func NewMySQL(ctx context.Context, db *sql.DB) (*MySQL, error) {
	if _, err := db.ExecContext(ctx, documentsDDL); err != nil {
		return nil, apperr.Storage("create documents table", err)
	}
	return &MySQL{db: db}, nil
}

func (m *MySQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := m.db.QueryRowContext(ctx, "SELECT v FROM documents WHERE k=? LIMIT 1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("mysql get", err)
	}
	return v, nil
}

func (m *MySQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO documents (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v=VALUES(v)",
		key, value)
	return apperr.Storage("mysql set", err)
}

func (m *MySQL) Delete(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM documents WHERE k=?", key)
	return apperr.Storage("mysql delete", err)
}

func (m *MySQL) ScanPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT v FROM documents WHERE k LIKE ? ESCAPE '\\'`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, apperr.Storage("mysql scan", err)
	}
	defer rows.Close()
	var out [][]byte
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, apperr.Storage("mysql scan", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("mysql scan", err)
	}
	return out, nil
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of fn.
// An absent key takes a gap lock, so two creators of the same key serialize.
func (m *MySQL) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("mysql begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var cur []byte
	err = tx.QueryRowContext(ctx, "SELECT v FROM documents WHERE k=? FOR UPDATE", key).Scan(&cur)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return apperr.Storage("mysql lock", err)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if next == nil {
		_, err = tx.ExecContext(ctx, "DELETE FROM documents WHERE k=?", key)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO documents (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v=VALUES(v)",
			key, next)
	}
	if err != nil {
		return apperr.Storage("mysql write", err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage("mysql commit", err)
	}
	committed = true
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
