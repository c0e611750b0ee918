package history

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteStore keeps sessions in a SQLite database, one JSON payload per row.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite history store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS chat_sessions (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  payload_json TEXT NOT NULL
);
`)
	return errors.Wrap(err, "migrate chat_sessions table")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSession(ctx context.Context, messages []Message) (Session, bool, error) {
	if len(messages) <= 1 {
		return Session{}, false, nil
	}
	sess := NewSession(messages)
	b, err := json.Marshal(sess)
	if err != nil {
		return Session{}, false, errors.Wrap(err, "encode session")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO chat_sessions (id, payload_json) VALUES (?, ?)`, sess.ID, string(b)); err != nil {
		return Session{}, false, errors.Wrap(err, "insert session")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE seq NOT IN (SELECT seq FROM chat_sessions ORDER BY seq DESC LIMIT ?)`,
		MaxSessions); err != nil {
		return Session{}, false, errors.Wrap(err, "trim sessions")
	}
	if err := tx.Commit(); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload_json FROM chat_sessions ORDER BY seq DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	defer func() { _ = rows.Close() }()

	ret := []Session{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sess Session
		if err := json.Unmarshal([]byte(payload), &sess); err != nil {
			return nil, errors.Wrap(err, "decode session")
		}
		ret = append(ret, sess)
	}
	return ret, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions`)
	return errors.Wrap(err, "clear sessions")
}
