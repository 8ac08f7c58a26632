// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"dining_alerts/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	// Upsert creates a subscription or merges new keywords and halls
	// into an existing one.
	Upsert(ctx context.Context, email string, keywords, halls []string) error
	Get(ctx context.Context, email string) (*model.Subscription, error)
	// List returns every subscription ordered by email.
	List(ctx context.Context) ([]model.Subscription, error)
	UpdateLastNotified(ctx context.Context, email string, date time.Time) error
	// Delete removes a subscription, reporting whether one existed.
	Delete(ctx context.Context, email string) (bool, error)

	Close() error
}
