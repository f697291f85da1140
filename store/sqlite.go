package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores the serialized document as a single row in an
// SQLite database. The document stays an opaque blob; SQLite only buys
// durable, atomic replacement of the whole thing.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(dataSourceName string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS document (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		body BLOB NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load() ([]byte, error) {
	var body []byte
	err := b.db.QueryRow("SELECT body FROM document WHERE id = 1").Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (b *SQLiteBackend) Save(data []byte) error {
	_, err := b.db.Exec(
		"INSERT INTO document (id, body) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET body = excluded.body",
		data,
	)
	return err
}

func (b *SQLiteBackend) Close() error { return b.db.Close() }
