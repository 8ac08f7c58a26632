// Package model defines the domain types used across the application.
package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DateLayout is the calendar-date format used for last-notified tracking.
const DateLayout = "2006-01-02"

// Subscription represents one email address watching for magic words
// on dining hall menus.
type Subscription struct {
	Email    string
	Keywords []string
	// Halls limits matching to the named dining halls.
	// Empty means all configured halls.
	Halls        []string
	LastNotified *time.Time
	CreatedAt    time.Time
}

// NotifiedOn reports whether the subscription was already notified
// on the given calendar date.
func (s *Subscription) NotifiedOn(date time.Time) bool {
	if s.LastNotified == nil {
		return false
	}
	return s.LastNotified.Format(DateLayout) == date.Format(DateLayout)
}

// WantsHall reports whether the subscription covers the named hall.
func (s *Subscription) WantsHall(hall string) bool {
	if len(s.Halls) == 0 {
		return true
	}
	for _, h := range s.Halls {
		if h == hall {
			return true
		}
	}
	return false
}

// MenuEntry is a single dish on a hall's menu for one day.
// Entries are fetched fresh per run and never persisted.
type MenuEntry struct {
	Hall       string
	MealPeriod string
	Item       string
	Date       time.Time
}

// MatchResult records that a magic word hit a menu entry.
type MatchResult struct {
	Email      string
	Hall       string
	MealPeriod string
	Item       string
	Keyword    string
}
