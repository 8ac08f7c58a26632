// Package migrations holds the embedded schema migrations for the
// subscriptions database and runs them through goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var schemaFS embed.FS

// commands maps migration command names to goose operations. The CLI
// dispatches through this table and Up reuses it on database open.
var commands = map[string]func(*sql.DB, string, ...goose.OptionsFunc) error{
	"up":      goose.Up,
	"up-one":  goose.UpByOne,
	"down":    goose.Down,
	"status":  goose.Status,
	"version": goose.Version,
	"reset":   goose.Reset,
}

// Commands returns the supported migration command names, sorted.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs one migration command against the subscriptions database.
func Apply(db *sql.DB, command string) error {
	fn, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown migration command %q", command)
	}

	goose.SetBaseFS(schemaFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := fn(db, "."); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

// Up brings the subscriptions schema to the latest version. The
// storage layer calls this on open so a fresh database file is usable
// immediately.
func Up(db *sql.DB) error {
	return Apply(db, "up")
}
