package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/sigmareview/internal/database"
)

const selectPayloadQuery = `SELECT payload FROM review_storage WHERE name = ?`

var upsertPayloadQueries = map[string]string{
	database.DriverMySQL: `INSERT INTO review_storage (name, payload, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`,
	database.DriverSQLite: `INSERT INTO review_storage (name, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
}

// SQLStorage keeps entries in the review_storage table of MySQL or SQLite.
type SQLStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStorage(db *sqlx.DB) (*SQLStorage, error) {
	if _, ok := upsertPayloadQueries[db.DriverName()]; !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", db.DriverName())
	}
	return &SQLStorage{db: db, now: time.Now}, nil
}

func (s *SQLStorage) Load(ctx context.Context, name string) ([]byte, error) {
	var payload string
	if err := s.db.GetContext(ctx, &payload, selectPayloadQuery, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db.GetContext(%s) > %w", name, err)
	}
	return []byte(payload), nil
}

func (s *SQLStorage) Save(ctx context.Context, name string, data []byte) error {
	query := upsertPayloadQueries[s.db.DriverName()]
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, name, string(data), s.now().UTC()); err != nil {
			return fmt.Errorf("tx.ExecContext(%s) > %w", name, err)
		}
		return nil
	})
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
