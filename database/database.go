package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier covers *sql.DB and *sql.Tx so store functions can run inside or
// outside a transaction
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func InitDB(dataSourceName string) (*sql.DB, error) {
	// media_tags relies on cascading deletes from both parents, and the
	// pragma only holds per connection: it has to ride the DSN so every
	// pooled connection enforces it, not just the one that ran an Exec
	dsn := dataSourceName
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable write-ahead logging for better concurrency
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		log.Printf("warning: failed to set WAL mode: %v", err)
	}

	sqlStmt := `
	CREATE TABLE IF NOT EXISTS media (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filepath TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		type TEXT CHECK(type IN ('image', 'video')) NOT NULL,
		is_favourite INTEGER NOT NULL DEFAULT 0,
		width INTEGER,
		height INTEGER,
		filesize INTEGER NOT NULL DEFAULT 0,
		format TEXT,
		camera_model TEXT,
		times_viewed INTEGER NOT NULL DEFAULT 0,
		time_viewed INTEGER NOT NULL DEFAULT 0,
		date_captured INTEGER,
		date_added INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS media_tags (
		media_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (media_id, tag_id),
		FOREIGN KEY (media_id) REFERENCES media(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	);
	`
	_, err = db.Exec(sqlStmt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog tables: %w", err)
	}

	log.Println("database: initialized successfully at", dataSourceName)
	return db, nil
}
