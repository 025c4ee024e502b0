package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teamyukt/honeynet/internal/model/intel"
)

// Archive persists finalized reports in sqlite so intelligence
// survives restarts even when the push endpoint is down.
type Archive struct {
	db *sql.DB
}

// NewArchive opens (and creates if needed) the report database.
func NewArchive(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return a, nil
}

func (a *Archive) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS reports (
		session_id TEXT PRIMARY KEY,
		scam_detected INTEGER NOT NULL,
		scam_type TEXT NOT NULL,
		confidence REAL NOT NULL,
		payload_json TEXT NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0,
		finalized_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_finalized ON reports(finalized_at);
	`
	if _, err := a.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save upserts a report. A session finalizes once, so a second save
// for the same id simply refreshes the row.
func (a *Archive) Save(ctx context.Context, r *intel.Report, delivered bool) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	query := `
		INSERT INTO reports (session_id, scam_detected, scam_type, confidence, payload_json, delivered, finalized_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			payload_json = excluded.payload_json,
			delivered = excluded.delivered`

	_, err = a.db.ExecContext(ctx, query,
		r.SessionID, boolToInt(r.ScamDetected), r.ScamType, r.ConfidenceLevel,
		string(payload), boolToInt(delivered), r.FinalizedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get loads one archived report by session id. Returns nil when the
// session was never finalized.
func (a *Archive) Get(ctx context.Context, sessionID string) (*intel.Report, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT payload_json FROM reports WHERE session_id = ?`, sessionID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan report row: %w", err)
	}

	var r intel.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode report payload: %w", err)
	}
	return &r, nil
}

// Recent returns up to limit reports, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]*intel.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT payload_json FROM reports ORDER BY finalized_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []*intel.Report
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		var r intel.Report
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decode report payload: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
