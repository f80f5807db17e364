package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/compazz/funds"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends events to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Writes go through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			payload    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_name_ts ON events(name, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// HandleEvent records evt. Redelivery of the same event is ignored.
func (r *SQLiteRecorder) HandleEvent(ctx context.Context, evt *funds.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (id, name, created_at, payload) VALUES (?, ?, ?, ?)`,
		evt.ID.String(), evt.Name, evt.CreatedAt.UnixNano(), string(evt.Payload),
	)
	if err != nil {
		return fmt.Errorf("record event %s: %w", evt.Name, err)
	}

	return nil
}

// ListEvents returns the newest events, filtered by name unless name is empty.
func (r *SQLiteRecorder) ListEvents(ctx context.Context, name string, limit int) ([]*funds.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, payload FROM events
		WHERE ? = '' OR name = ?
		ORDER BY created_at DESC LIMIT ?`,
		name, name, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*funds.Event
	for rows.Next() {
		var (
			id, payload string
			nanos       int64
			evt         funds.Event
		)

		if err := rows.Scan(&id, &evt.Name, &nanos, &payload); err != nil {
			return nil, err
		}

		if evt.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}

		evt.CreatedAt = time.Unix(0, nanos)
		evt.Payload = []byte(payload)
		events = append(events, &evt)
	}

	return events, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
