package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dining_alerts/internal/model"
)

// FormatDigest builds the subject and body of a subscriber's daily
// digest. Matches are grouped by hall, then by meal period in menu
// order, with the magic word that hit. An empty result set produces
// the "nothing today" variant used by the always-notify override.
func FormatDigest(date time.Time, results []model.MatchResult, baseURL string) (subject, body string) {
	day := date.Format(model.DateLayout)

	if len(results) == 0 {
		subject = fmt.Sprintf("[Dining] No tracked items today (%s)", day)
		var b strings.Builder
		b.WriteString("Hi,\n\n")
		b.WriteString("We checked today's dining hall menus and found no dishes matching your magic words.\n")
		b.WriteString(footer(baseURL))
		return subject, b.String()
	}

	subject = fmt.Sprintf("[Dining] Your tracked items are on the menu today! (%s)", day)

	var b strings.Builder
	b.WriteString("Hi,\n\n")
	b.WriteString("We found the following dishes matching your magic words:\n\n")
	b.WriteString(formatMatches(results))
	b.WriteString(footer(baseURL))
	return subject, b.String()
}

// formatMatches renders results as hall -> meal period -> dishes.
// Halls are sorted by name; meal periods and dishes keep the order in
// which they came off the menu.
func formatMatches(results []model.MatchResult) string {
	type mealGroup struct {
		name  string
		lines []string
	}
	type hallGroup struct {
		meals  []*mealGroup
		byMeal map[string]*mealGroup
	}

	halls := make(map[string]*hallGroup)
	seen := make(map[model.MatchResult]bool)

	for _, r := range results {
		if seen[r] {
			continue
		}
		seen[r] = true

		hg, ok := halls[r.Hall]
		if !ok {
			hg = &hallGroup{byMeal: make(map[string]*mealGroup)}
			halls[r.Hall] = hg
		}
		mg, ok := hg.byMeal[r.MealPeriod]
		if !ok {
			mg = &mealGroup{name: r.MealPeriod}
			hg.byMeal[r.MealPeriod] = mg
			hg.meals = append(hg.meals, mg)
		}
		mg.lines = append(mg.lines, fmt.Sprintf("    - %s (magic word: %s)", r.Item, r.Keyword))
	}

	hallNames := make([]string, 0, len(halls))
	for name := range halls {
		hallNames = append(hallNames, name)
	}
	sort.Strings(hallNames)

	var b strings.Builder
	for _, name := range hallNames {
		fmt.Fprintf(&b, "%s:\n", name)
		for _, mg := range halls[name].meals {
			fmt.Fprintf(&b, "  %s:\n", mg.name)
			for _, line := range mg.lines {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func footer(baseURL string) string {
	if baseURL == "" {
		return "\nYou're receiving this because you subscribed to dining alerts.\n"
	}
	return fmt.Sprintf("\nYou're receiving this because you subscribed at %s. Manage your magic words there.\n", baseURL)
}
