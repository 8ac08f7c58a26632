// Command migrate manages the subscriptions database schema.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"dining_alerts/migrations"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/subscriptions.db"), "path to the subscriptions database")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database %s: %v", *dbPath, err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Apply(db, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: migrate [-db path] <%s>\n\n", strings.Join(migrations.Commands(), "|"))
	fmt.Fprintln(os.Stderr, "Applies schema migrations to the dining alerts subscriptions database.")
	fmt.Fprintln(os.Stderr, "The notify and server commands run \"up\" automatically on startup;")
	fmt.Fprintln(os.Stderr, "this tool exists for rollbacks and for inspecting migration state.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
