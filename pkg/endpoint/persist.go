package endpoint

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Directory is an optional, write-through durable record of endpoint
// URIs and their creation times (SPEC_FULL.md §6.2). It is advisory
// only: on restart nothing reads it back into the live Registry, and no
// endpoint is ever auto-reconnected from it. List is its only read path;
// no cmd/purcmcd subcommand calls it.
type Directory struct {
	db *sql.DB
}

// OpenDirectory opens (creating if absent) a sqlite-backed Directory at
// path, using the pure-Go modernc.org/sqlite driver so the binary stays
// cgo-free.
func OpenDirectory(path string) (*Directory, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("endpoint: open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("endpoint: ping sqlite: %w", err)
	}
	if _, err := conn.Exec(directorySchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("endpoint: create schema: %w", err)
	}
	return &Directory{db: conn}, nil
}

const directorySchema = `
CREATE TABLE IF NOT EXISTS endpoints (
	uri        TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	last_seen  TEXT NOT NULL
)`

// Close closes the underlying connection.
func (d *Directory) Close() error {
	return d.db.Close()
}

// Record upserts ep's URI and creation time, refreshing last_seen. It is
// called once per successful Registry.New, from the renderer loop
// goroutine; the write is fire-and-forget from the caller's point of
// view (failures are logged, never block connection handling).
func (d *Directory) Record(ctx context.Context, uri string, createdAt time.Time) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO endpoints (uri, created_at, last_seen) VALUES (?, ?, ?)
		 ON CONFLICT(uri) DO UPDATE SET last_seen = excluded.last_seen`,
		uri, createdAt.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("endpoint: record %q: %w", uri, err)
	}
	return nil
}

// Entry is one row of the durable endpoint directory.
type Entry struct {
	URI       string
	CreatedAt time.Time
	LastSeen  time.Time
}

// List returns every recorded endpoint, oldest creation first. It never
// reflects whether the endpoint is still connected — that is the live
// Registry's job — only that it was connected at some point.
func (d *Directory) List(ctx context.Context) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT uri, created_at, last_seen FROM endpoints ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("endpoint: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var uri, createdAt, lastSeen string
		if err := rows.Scan(&uri, &createdAt, &lastSeen); err != nil {
			return nil, fmt.Errorf("endpoint: scan: %w", err)
		}
		e := Entry{URI: uri}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
		out = append(out, e)
	}
	return out, rows.Err()
}
