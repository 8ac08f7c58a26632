// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// defaultHalls maps the MIT dining halls to their published menu pages.
// Used when HALL_URLS is not set.
var defaultHalls = map[string]string{
	"Simmons Hall": "http://mit.cafebonappetit.com/cafe/simmons/",
	"Maseeh Hall":  "http://mit.cafebonappetit.com/cafe/the-howard-dining-hall-at-maseeh/",
	"New Vassar":   "http://mit.cafebonappetit.com/cafe/new-vassar/",
	"Baker House":  "http://mit.cafebonappetit.com/cafe/baker/",
	"McCormick":    "http://mit.cafebonappetit.com/cafe/mccormick/",
	"Next House":   "http://mit.cafebonappetit.com/cafe/next/",
}

// Config holds the application configuration.
type Config struct {
	HallURLs     map[string]string
	DatabasePath string
	LogLevel     string

	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPassword string
	EmailFrom     string

	// BaseURL is the public address of the subscription site,
	// used only for links in outgoing emails.
	BaseURL string

	MenuCache    bool
	AlwaysNotify bool
	FetchTimeout time.Duration

	ListenAddr string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	halls := defaultHalls
	if raw := os.Getenv("HALL_URLS"); raw != "" {
		parsed, err := parseHallURLs(raw)
		if err != nil {
			return nil, err
		}
		halls = parsed
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/subscriptions.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	host := os.Getenv("EMAIL_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	port := 587
	if raw := os.Getenv("EMAIL_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_PORT %q: %w", raw, err)
		}
		port = p
	}

	user := os.Getenv("EMAIL_USER")
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = user
	}

	timeout := 15 * time.Second
	if raw := os.Getenv("FETCH_TIMEOUT"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT %q", raw)
		}
		timeout = time.Duration(secs) * time.Second
	}

	cache, err := boolEnv("MENU_CACHE", true)
	if err != nil {
		return nil, err
	}
	alwaysNotify, err := boolEnv("ALWAYS_NOTIFY", false)
	if err != nil {
		return nil, err
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	return &Config{
		HallURLs:      halls,
		DatabasePath:  dbPath,
		LogLevel:      logLevel,
		EmailHost:     host,
		EmailPort:     port,
		EmailUser:     user,
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:     from,
		BaseURL:       os.Getenv("BASE_URL"),
		MenuCache:     cache,
		AlwaysNotify:  alwaysNotify,
		FetchTimeout:  timeout,
		ListenAddr:    addr,
	}, nil
}

// HallNames returns the configured hall names in sorted order.
func (c *Config) HallNames() []string {
	names := make([]string, 0, len(c.HallURLs))
	for name := range c.HallURLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseHallURLs parses a "Name=URL;Name=URL" list.
func parseHallURLs(raw string) (map[string]string, error) {
	halls := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, url, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid hall entry %q in HALL_URLS", pair)
		}
		halls[name] = url
	}
	if len(halls) == 0 {
		return nil, fmt.Errorf("HALL_URLS is set but contains no halls")
	}
	return halls, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
