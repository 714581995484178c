package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			outcome TEXT NOT NULL,
			name TEXT,
			role TEXT,
			scanned_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_uid ON scans(uid)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// RecordScan inserts a scan journal entry
func (r *Repository) RecordScan(ctx context.Context, ev models.ScanEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scans (id, uid, outcome, name, role, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.UID, string(ev.Outcome), ev.Name, ev.Role, ev.ScannedAt.UTC())
	return err
}

// GetScan returns a single entry by id
func (r *Repository) GetScan(ctx context.Context, id string) (*models.ScanEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uid, outcome, COALESCE(name, ''), COALESCE(role, ''), scanned_at
		FROM scans WHERE id = ?
	`, id)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListScans returns the most recent entries, newest first
func (r *Repository) ListScans(ctx context.Context, limit int) ([]models.ScanEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, outcome, COALESCE(name, ''), COALESCE(role, ''), scanned_at
		FROM scans
		ORDER BY scanned_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListScansForUID returns the most recent entries for one badge, newest first
func (r *Repository) ListScansForUID(ctx context.Context, uid string, limit int) ([]models.ScanEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, outcome, COALESCE(name, ''), COALESCE(role, ''), scanned_at
		FROM scans
		WHERE uid = ?
		ORDER BY scanned_at DESC, rowid DESC
		LIMIT ?
	`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CountByOutcome returns the number of entries per outcome
func (r *Repository) CountByOutcome(ctx context.Context) (map[models.ScanOutcome]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM scans GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ScanOutcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[models.ScanOutcome(outcome)] = n
	}
	return counts, rows.Err()
}

// CountUniqueUIDs returns the number of distinct badges seen
func (r *Repository) CountUniqueUIDs(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT uid) FROM scans`).Scan(&n)
	return n, err
}

// LastScanAt returns the time of the newest entry, if any
func (r *Repository) LastScanAt(ctx context.Context) (time.Time, bool, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT scanned_at FROM scans ORDER BY scanned_at DESC LIMIT 1`).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return last.Time, last.Valid, nil
}

// PruneBefore deletes entries older than cutoff and reports how many went
func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scans WHERE scanned_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (models.ScanEvent, error) {
	var ev models.ScanEvent
	var outcome string
	if err := s.Scan(&ev.ID, &ev.UID, &outcome, &ev.Name, &ev.Role, &ev.ScannedAt); err != nil {
		return models.ScanEvent{}, err
	}
	ev.Outcome = models.ScanOutcome(outcome)
	return ev, nil
}

func scanEvents(rows *sql.Rows) ([]models.ScanEvent, error) {
	events := []models.ScanEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
