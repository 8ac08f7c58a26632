// Package matcher implements magic-word matching over menu entries.
package matcher

import (
	"strings"

	"dining_alerts/internal/model"
)

// Match returns the entries whose item text contains the keyword as a
// case-insensitive substring, preserving entry order. Entries arrive
// from the fetcher already grouped by meal period, so the result is
// grouped the same way.
func Match(keyword string, entries []model.MenuEntry) []model.MenuEntry {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil
	}

	var matched []model.MenuEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Item), kw) {
			matched = append(matched, e)
		}
	}
	return matched
}

// MatchAll runs every keyword against the entries and produces one
// MatchResult per (keyword, entry) hit. Distinct keywords hitting the
// same dish each produce their own result. The keyword keeps the
// spelling the subscriber entered; lowering happens only for the
// comparison.
func MatchAll(email string, keywords []string, entries []model.MenuEntry) []model.MatchResult {
	var results []model.MatchResult
	for _, kw := range keywords {
		for _, e := range Match(kw, entries) {
			results = append(results, model.MatchResult{
				Email:      email,
				Hall:       e.Hall,
				MealPeriod: e.MealPeriod,
				Item:       e.Item,
				Keyword:    strings.TrimSpace(kw),
			})
		}
	}
	return results
}
