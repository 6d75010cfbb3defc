// Package store provides SQLite-backed persistence for consent and leads.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/upthermo/orcalc/internal/leads"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ConsentKey is the preference holding the cookie-consent flag.
const ConsentKey = "cookies-accepted"

// Store wraps the application database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Consent reports whether the cookie notice has been accepted.
func (s *Store) Consent() (bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", ConsentKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetConsent records or clears the consent flag.
func (s *Store) SetConsent(accepted bool) error {
	if !accepted {
		_, err := s.db.Exec("DELETE FROM preferences WHERE key = ?", ConsentKey)
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`INSERT OR REPLACE INTO preferences (key, value, updated_at)
		VALUES (?, 'true', ?)`, ConsentKey, now)
	return err
}

// SaveLead inserts a lead and returns its row id. A zero CreatedAt is
// stamped with the current time.
func (s *Store) SaveLead(ctx context.Context, l leads.Lead) (int64, error) {
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO leads
		(name, email, phone, company, message,
		 calc_bill, calc_waste, calc_shifts, calc_solar, calc_savings_yearly, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Name, l.Email, l.Phone, l.Company, l.Message,
		l.Summary.Bill, l.Summary.Waste, l.Summary.Shifts, l.Summary.Solar, l.Summary.YearlySavings,
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting lead: %w", err)
	}
	return res.LastInsertId()
}

// ListLeads returns up to limit leads, newest first. limit <= 0 returns all.
func (s *Store) ListLeads(ctx context.Context, limit int) ([]leads.Lead, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, name, email, phone, company, message,
		calc_bill, calc_waste, calc_shifts, calc_solar, calc_savings_yearly, created_at
		FROM leads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []leads.Lead
	for rows.Next() {
		var l leads.Lead
		var phone, company, bill, waste, solar, savings sql.NullString
		var shifts sql.NullInt64
		var created string
		err := rows.Scan(&l.ID, &l.Name, &l.Email, &phone, &company, &l.Message,
			&bill, &waste, &shifts, &solar, &savings, &created)
		if err != nil {
			return nil, err
		}
		l.Phone = phone.String
		l.Company = company.String
		l.Summary = leads.Summary{
			Bill:          bill.String,
			Waste:         waste.String,
			Shifts:        int(shifts.Int64),
			Solar:         solar.String,
			YearlySavings: savings.String,
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, l)
	}
	return out, rows.Err()
}

// LeadCount returns the number of stored leads.
func (s *Store) LeadCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM leads").Scan(&count)
	return count, err
}

// Sink adapts the store to leads.Sink.
func (s *Store) Sink() leads.Sink {
	return leads.SinkFunc(func(ctx context.Context, l leads.Lead) error {
		_, err := s.SaveLead(ctx, l)
		return err
	})
}
