// Package store persists the caseload to a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"caseburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const metaSavedAt = "saved_at"

// DB is the on-disk caseload.
type DB struct {
	db *sql.DB
}

// Open opens or creates the caseload database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening caseload db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// LoadClients returns every stored record in caseload order.
func (d *DB) LoadClients(ctx context.Context) ([]model.ClientRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT
		client_id, name, ndis_number, support_level, hourly_rate,
		total_budget, balance, plan_end, hours_per_week, notes
		FROM clients ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ClientRecord
	for rows.Next() {
		var r model.ClientRecord
		var level string
		if err := rows.Scan(
			&r.ID, &r.Name, &r.NDISNumber, &level, &r.HourlyRate,
			&r.TotalBudget, &r.Balance, &r.PlanEnd, &r.HoursPerWeek, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		r.SupportLevel = model.SupportLevel(level)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadRetired returns the ids of deleted clients, sorted.
func (d *DB) LoadRetired(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT client_id FROM retired_ids ORDER BY client_id")
	if err != nil {
		return nil, fmt.Errorf("querying retired ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning retired id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveClients replaces the stored caseload with recs in one transaction.
// Retired ids are added to the ones already stored; they are never removed.
func (d *DB) SaveClients(ctx context.Context, recs []model.ClientRecord, retired ...string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clients"); err != nil {
		return fmt.Errorf("clearing clients: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO clients
		(client_id, position, name, ndis_number, support_level, hourly_rate,
		 total_budget, balance, plan_end, hours_per_week, notes, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range recs {
		if _, err := stmt.ExecContext(ctx,
			r.ID, i, r.Name, r.NDISNumber, string(r.SupportLevel), r.HourlyRate,
			r.TotalBudget, r.Balance, r.PlanEnd, r.HoursPerWeek, r.Notes, now,
		); err != nil {
			return fmt.Errorf("saving client %s: %w", r.ID, err)
		}
	}

	for _, id := range retired {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO retired_ids (client_id) VALUES (?)", id); err != nil {
			return fmt.Errorf("retiring client %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", metaSavedAt, now); err != nil {
		return err
	}

	return tx.Commit()
}

// ClientCount returns the number of stored records.
func (d *DB) ClientCount(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&count)
	return count, err
}

// LastSaved returns when the caseload was last written, or the zero time if never.
func (d *DB) LastSaved(ctx context.Context) (time.Time, error) {
	var v string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaSavedAt).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
