package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dining_alerts/internal/model"
)

func TestFormatDigest(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	results := []model.MatchResult{
		{Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Jalapeno Poppers", Keyword: "jalapeno"},
		{Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Jalapeno Cheddar Cornbread", Keyword: "jalapeno"},
		{Hall: "Baker House", MealPeriod: "Lunch", Item: "Shrimp Tacos", Keyword: "shrimp"},
		{Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Jalapeno Poppers", Keyword: "poppers"},
	}

	subject, body := FormatDigest(date, results, "https://dining.example.com")

	if diff := cmp.Diff("[Dining] Your tracked items are on the menu today! (2026-03-14)", subject); diff != "" {
		t.Errorf("subject mismatch (-want +got):\n%s", diff)
	}

	// Halls sorted, meal periods in menu order within each hall.
	bakerIdx := strings.Index(body, "Baker House:")
	simmonsIdx := strings.Index(body, "Simmons Hall:")
	if bakerIdx < 0 || simmonsIdx < 0 || bakerIdx > simmonsIdx {
		t.Errorf("halls not sorted:\n%s", body)
	}
	breakfastIdx := strings.Index(body, "  Breakfast:")
	dinnerIdx := strings.Index(body, "  Dinner:")
	if breakfastIdx < 0 || dinnerIdx < 0 || breakfastIdx > dinnerIdx {
		t.Errorf("meal periods out of order:\n%s", body)
	}

	for _, want := range []string{
		"- Jalapeno Poppers (magic word: jalapeno)",
		"- Jalapeno Poppers (magic word: poppers)",
		"- Shrimp Tacos (magic word: shrimp)",
		"https://dining.example.com",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestFormatDigestDeduplicatesRepeats(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	dup := model.MatchResult{Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Roasted Tofu Bowl", Keyword: "tofu"}

	_, body := FormatDigest(date, []model.MatchResult{dup, dup}, "")

	if got := strings.Count(body, "Roasted Tofu Bowl"); got != 1 {
		t.Errorf("duplicate result rendered %d times, want 1:\n%s", got, body)
	}
}

func TestFormatDigestNoMatches(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	subject, body := FormatDigest(date, nil, "")

	if diff := cmp.Diff("[Dining] No tracked items today (2026-03-14)", subject); diff != "" {
		t.Errorf("subject mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(body, "no dishes matching your magic words") {
		t.Errorf("body missing no-matches text:\n%s", body)
	}
}
