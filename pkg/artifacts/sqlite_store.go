package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteRepository persists artifacts, one JSON payload per row.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		return nil, errors.New("sqlite artifact repository: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	_, err := r.db.Exec(`
CREATE TABLE IF NOT EXISTS artifacts (
  id TEXT PRIMARY KEY,
  last_modified_ms INTEGER NOT NULL,
  payload_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_last_modified ON artifacts(last_modified_ms);
`)
	return errors.Wrap(err, "migrate artifacts table")
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Save(ctx context.Context, a Artifact) error {
	if a.ID == "" {
		return errors.New("artifact has no id")
	}
	b, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "encode artifact")
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, last_modified_ms, payload_json) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET last_modified_ms = excluded.last_modified_ms, payload_json = excluded.payload_json`,
		a.ID, a.LastModified.UnixMilli(), string(b))
	return errors.Wrapf(err, "save artifact %s", a.ID)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload_json FROM artifacts ORDER BY last_modified_ms DESC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list artifacts")
	}
	defer func() { _ = rows.Close() }()

	ret := []Artifact{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a Artifact
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, errors.Wrap(err, "decode artifact")
		}
		ret = append(ret, a)
	}
	return ret, rows.Err()
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (Artifact, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload_json FROM artifacts WHERE id = ?`, id)
	var payload string
	switch err := row.Scan(&payload); err {
	case nil:
	case sql.ErrNoRows:
		return Artifact{}, false, nil
	default:
		return Artifact{}, false, err
	}
	var a Artifact
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return Artifact{}, false, errors.Wrap(err, "decode artifact")
	}
	return a, true, nil
}
