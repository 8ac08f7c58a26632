package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"dining_alerts/internal/model"
	"dining_alerts/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Upsert inserts a new subscription, or merges keywords and halls into
// an existing row the way the subscription form behaves: new magic
// words are appended if unseen, hall selections accumulate, and a
// still-empty hall list stays NULL (meaning any hall).
func (s *SQLite) Upsert(ctx context.Context, email string, keywords, halls []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var kwJSON string
	var hallsJSON sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT item_keywords, halls FROM subscriptions WHERE email = ?`, email,
	).Scan(&kwJSON, &hallsJSON)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		now := time.Now().UTC().Format(timeLayout)
		kw, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("encode keywords: %w", err)
		}
		var hallsVal any
		if len(halls) > 0 {
			h, err := json.Marshal(halls)
			if err != nil {
				return fmt.Errorf("encode halls: %w", err)
			}
			hallsVal = string(h)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subscriptions (email, item_keywords, halls, last_notified_date, created_at)
			 VALUES (?, ?, ?, NULL, ?)`,
			email, string(kw), hallsVal, now,
		); err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
	case err != nil:
		return fmt.Errorf("query subscription: %w", err)
	default:
		merged, err := mergeJSONList(kwJSON, keywords)
		if err != nil {
			return fmt.Errorf("merge keywords: %w", err)
		}
		stored := ""
		if hallsJSON.Valid {
			stored = hallsJSON.String
		}
		mergedHalls, err := mergeJSONList(stored, halls)
		if err != nil {
			return fmt.Errorf("merge halls: %w", err)
		}
		var hallsVal any
		if mergedHalls != "[]" && mergedHalls != "null" {
			hallsVal = mergedHalls
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET item_keywords = ?, halls = ? WHERE email = ?`,
			merged, hallsVal, email,
		); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}
	}

	return tx.Commit()
}

// Get returns a single subscription by email.
func (s *SQLite) Get(ctx context.Context, email string) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT email, item_keywords, halls, last_notified_date, created_at
		 FROM subscriptions WHERE email = ?`, email,
	)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return sub, err
}

// List returns all subscriptions ordered by email.
func (s *SQLite) List(ctx context.Context) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, item_keywords, halls, last_notified_date, created_at
		 FROM subscriptions ORDER BY email`,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpdateLastNotified records the calendar date of the last digest sent.
func (s *SQLite) UpdateLastNotified(ctx context.Context, email string, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET last_notified_date = ? WHERE email = ?`,
		date.Format(model.DateLayout), email,
	)
	if err != nil {
		return fmt.Errorf("update last notified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a subscription by email.
func (s *SQLite) Delete(ctx context.Context, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE email = ?`, email)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// mergeJSONList decodes a JSON string list and appends the values not
// already present, preserving order.
func mergeJSONList(stored string, add []string) (string, error) {
	var list []string
	if stored != "" {
		if err := json.Unmarshal([]byte(stored), &list); err != nil {
			return "", fmt.Errorf("decode list: %w", err)
		}
	}
	for _, v := range add {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	out, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(out), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubscription(row scannable) (*model.Subscription, error) {
	var sub model.Subscription
	var kwJSON string
	var hallsJSON, lastNotified, created sql.NullString
	if err := row.Scan(&sub.Email, &kwJSON, &hallsJSON, &lastNotified, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	if err := json.Unmarshal([]byte(kwJSON), &sub.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords for %s: %w", sub.Email, err)
	}
	if hallsJSON.Valid {
		if err := json.Unmarshal([]byte(hallsJSON.String), &sub.Halls); err != nil {
			return nil, fmt.Errorf("decode halls for %s: %w", sub.Email, err)
		}
	}
	if lastNotified.Valid {
		t, err := time.Parse(model.DateLayout, lastNotified.String)
		if err != nil {
			return nil, fmt.Errorf("parse last notified for %s: %w", sub.Email, err)
		}
		sub.LastNotified = &t
	}
	if created.Valid {
		sub.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &sub, nil
}
