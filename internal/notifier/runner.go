// Package notifier implements the daily scrape-match-notify batch job.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"dining_alerts/internal/fetcher"
	"dining_alerts/internal/mailer"
	"dining_alerts/internal/matcher"
	"dining_alerts/internal/metrics"
	"dining_alerts/internal/model"
	"dining_alerts/internal/storage"
)

// Runner walks every subscription once, matches magic words against
// today's menus, and sends at most one digest per subscriber.
type Runner struct {
	store   storage.Storage
	fetcher *fetcher.Fetcher
	mailer  mailer.Mailer
	log     *slog.Logger
	rec     metrics.Recorder

	// halls maps hall name to menu page URL.
	halls   map[string]string
	baseURL string

	cacheEnabled  bool
	alwaysNotify  bool
	forceRenotify bool
}

// New creates a Runner. The per-run menu cache is enabled by default
// and metrics are discarded until a recorder is set.
func New(store storage.Storage, f *fetcher.Fetcher, m mailer.Mailer, halls map[string]string, log *slog.Logger) *Runner {
	return &Runner{
		store:        store,
		fetcher:      f,
		mailer:       m,
		log:          log,
		rec:          metrics.Noop{},
		halls:        halls,
		cacheEnabled: true,
	}
}

// SetRecorder wires a metrics recorder.
func (r *Runner) SetRecorder(rec metrics.Recorder) { r.rec = rec }

// SetCacheEnabled toggles the per-run menu cache.
func (r *Runner) SetCacheEnabled(on bool) { r.cacheEnabled = on }

// SetAlwaysNotify makes the runner email subscribers even on zero
// matches. Debug aid.
func (r *Runner) SetAlwaysNotify(on bool) { r.alwaysNotify = on }

// SetForceRenotify makes the runner ignore the already-notified-today
// guard. Debug aid.
func (r *Runner) SetForceRenotify(on bool) { r.forceRenotify = on }

// SetBaseURL sets the subscription site address used in email footers.
func (r *Runner) SetBaseURL(url string) { r.baseURL = url }

// menuCache memoizes per-hall fetch outcomes within one run, including
// failures, so no hall is hit more than once.
type menuCache struct {
	entries map[string][]model.MenuEntry
	failed  map[string]bool
}

// Run processes every subscription for the given calendar date. It
// fails only when the subscriber list itself cannot be read; per-hall
// and per-subscriber failures are logged and skipped.
func (r *Runner) Run(ctx context.Context, date time.Time) error {
	subs, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	cache := &menuCache{
		entries: make(map[string][]model.MenuEntry),
		failed:  make(map[string]bool),
	}

	r.log.Info("starting notification run", "date", date.Format(model.DateLayout), "subscribers", len(subs))

	for i := range subs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.processSubscription(ctx, &subs[i], date, cache)
	}

	r.log.Info("notification run complete", "date", date.Format(model.DateLayout))
	return nil
}

func (r *Runner) processSubscription(ctx context.Context, sub *model.Subscription, date time.Time, cache *menuCache) {
	if sub.NotifiedOn(date) && !r.forceRenotify {
		r.log.Debug("already notified today", "email", sub.Email)
		return
	}

	var entries []model.MenuEntry
	for _, hall := range r.hallNames() {
		if !sub.WantsHall(hall) {
			continue
		}
		entries = append(entries, r.menuFor(ctx, cache, hall, date)...)
	}

	results := matcher.MatchAll(sub.Email, sub.Keywords, entries)
	if len(results) == 0 && !r.alwaysNotify {
		r.log.Debug("no matches today", "email", sub.Email)
		return
	}

	subject, body := FormatDigest(date, results, r.baseURL)
	if err := r.mailer.Send(ctx, sub.Email, subject, body); err != nil {
		r.log.Error("send digest", "email", sub.Email, "error", err)
		r.rec.SendFailed()
		return
	}
	r.rec.DigestSent()
	r.log.Info("sent digest", "email", sub.Email, "matches", len(results))

	if err := r.store.UpdateLastNotified(ctx, sub.Email, date); err != nil {
		// The subscriber may get a duplicate tomorrow; acceptable.
		r.log.Error("update last notified", "email", sub.Email, "error", err)
	}
}

// menuFor returns the menu entries for one hall, fetching at most once
// per run when the cache is enabled. A failed fetch yields zero
// entries so the other halls keep working.
func (r *Runner) menuFor(ctx context.Context, cache *menuCache, hall string, date time.Time) []model.MenuEntry {
	if r.cacheEnabled {
		if entries, ok := cache.entries[hall]; ok {
			return entries
		}
		if cache.failed[hall] {
			return nil
		}
	}

	entries, err := r.fetcher.Fetch(ctx, hall, r.halls[hall], date)
	if err != nil {
		r.log.Error("fetch menu", "hall", hall, "error", err)
		r.rec.FetchFailed(hall)
		if r.cacheEnabled {
			cache.failed[hall] = true
		}
		return nil
	}

	r.rec.FetchSucceeded(hall)
	if len(entries) == 0 {
		r.log.Warn("menu page yielded no entries", "hall", hall)
		r.rec.EmptyMenu(hall)
	}
	if r.cacheEnabled {
		cache.entries[hall] = entries
	}
	return entries
}

func (r *Runner) hallNames() []string {
	names := make([]string, 0, len(r.halls))
	for name := range r.halls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
