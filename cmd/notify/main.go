// Command notify runs the daily scrape-match-notify batch once.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dining_alerts/internal/config"
	"dining_alerts/internal/fetcher"
	"dining_alerts/internal/mailer"
	"dining_alerts/internal/metrics"
	"dining_alerts/internal/model"
	"dining_alerts/internal/notifier"
	"dining_alerts/internal/storage"
)

func main() {
	dateFlag := flag.String("date", "", "run date as YYYY-MM-DD (default: today)")
	force := flag.Bool("force", false, "renotify subscribers already notified today")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	date := time.Now()
	if *dateFlag != "" {
		date, err = time.Parse(model.DateLayout, *dateFlag)
		if err != nil {
			log.Error("invalid -date", "value", *dateFlag, "error", err)
			os.Exit(1)
		}
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	smtp, err := mailer.NewSMTP(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword, cfg.EmailFrom)
	if err != nil {
		log.Error("configure mailer", "error", err)
		os.Exit(1)
	}

	f := fetcher.New(http.DefaultClient)
	f.SetTimeout(cfg.FetchTimeout)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	runner := notifier.New(store, f, smtp, cfg.HallURLs, log)
	runner.SetRecorder(collector)
	runner.SetCacheEnabled(cfg.MenuCache)
	runner.SetAlwaysNotify(cfg.AlwaysNotify)
	runner.SetForceRenotify(*force)
	runner.SetBaseURL(cfg.BaseURL)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runner.Run(ctx, date); err != nil {
		log.Error("notification run failed", "error", err)
		os.Exit(1)
	}

	logRunTotals(log, reg)
}

// logRunTotals reports the run's counters; a one-shot job has nothing
// for Prometheus to scrape, so the summary goes to the log instead.
func logRunTotals(log *slog.Logger, reg *prometheus.Registry) {
	totals, err := metrics.Totals(reg)
	if err != nil {
		log.Error("gather run metrics", "error", err)
		return
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(totals)*2)
	for _, name := range names {
		args = append(args, name, totals[name])
	}
	log.Info("run totals", args...)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
