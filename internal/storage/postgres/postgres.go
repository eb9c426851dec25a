// Package postgres backs the document cache and the edit-event log with
// a Postgres database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/pajamadot/storyforge/internal/cache"
	"github.com/pajamadot/storyforge/internal/config"
)

// EventRow represents an edit event stored in Postgres.
type EventRow struct {
	EventID   int64          `json:"event_id"`
	Timestamp time.Time      `json:"ts"`
	Level     string         `json:"level"`
	Event     string         `json:"event"`
	Message   *string        `json:"msg,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Project   string         `json:"project"`
}

// Client manages the Postgres connection. It implements cache.Storage for
// document text and carries the append-only edit-event log.
type Client struct {
	db      *sql.DB
	project string
}

// New opens a connection using the standard PG* environment variables and
// ensures the schema exists. project scopes both documents and events.
func New(project string) (*Client, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "storyforge")
	dbname := getEnv("PGDATABASE", "storyforge")
	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return nil, err
	}

	var connStr string
	if password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
			host, port, user, dbname)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{db: db, project: project}
	if err := client.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return client, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (c *Client) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			doc_id     TEXT NOT NULL,
			project    TEXT NOT NULL,
			body       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (project, doc_id)
		);
		CREATE TABLE IF NOT EXISTS edit_events (
			event_id BIGSERIAL PRIMARY KEY,
			ts       TIMESTAMPTZ NOT NULL,
			level    TEXT NOT NULL,
			event    TEXT NOT NULL,
			msg      TEXT,
			fields   JSONB,
			project  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_edit_events_ts ON edit_events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_edit_events_project ON edit_events(project);
	`
	_, err := c.db.Exec(query)
	return err
}

// FetchText returns the serialized document text for an id, or
// cache.ErrNotFound when no row exists.
func (c *Client) FetchText(ctx context.Context, id string) (string, error) {
	query := `SELECT body FROM documents WHERE project = $1 AND doc_id = $2`
	var body string
	err := c.db.QueryRowContext(ctx, query, c.project, id).Scan(&body)
	if err == sql.ErrNoRows {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch document %s: %w", id, err)
	}
	return body, nil
}

// PersistText upserts the serialized document text for an id.
func (c *Client) PersistText(ctx context.Context, id, text string) error {
	query := `
		INSERT INTO documents (doc_id, project, body, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project, doc_id) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, id, c.project, text, time.Now().UTC()); err != nil {
		return fmt.Errorf("persist document %s: %w", id, err)
	}
	return nil
}

// Append inserts an edit event into the log.
func (c *Client) Append(ts time.Time, level, event, msg string, fields map[string]any) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	query := `
		INSERT INTO edit_events (ts, level, event, msg, fields, project)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.project)
	return err
}

// Query returns the last N edit events in descending order by timestamp.
func (c *Client) Query(limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 10000 {
		limit = 10000
	}

	query := `
		SELECT event_id, ts, level, event, msg, fields, project
		FROM edit_events
		WHERE project = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := c.db.Query(query, c.project, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.Project); err != nil {
			return nil, err
		}
		if msg.Valid {
			e.Message = &msg.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
