package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/groupements-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS partition_cache (
	id        TEXT PRIMARY KEY,
	cache_key TEXT NOT NULL UNIQUE,
	payload   TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*model.Table, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM partition_cache WHERE cache_key = ?`, key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s", key)
	}

	var tbl model.Table
	if err := json.Unmarshal([]byte(payload), &tbl); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal %s", key)
	}
	return &tbl, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, tbl *model.Table) error {
	payload, err := json.Marshal(tbl)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal table")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO partition_cache (id, cache_key, payload, cached_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (cache_key) DO NOTHING`,
		uuid.New().String(), key, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: set %s", key)
}

func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key FROM partition_cache WHERE cache_key LIKE ? ESCAPE '\' ORDER BY cache_key`,
		likePrefix(prefix),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan key")
		}
		keys = append(keys, k)
	}
	return keys, eris.Wrap(rows.Err(), "sqlite: list keys iterate")
}
