package matcher

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dining_alerts/internal/model"
)

var menu = []model.MenuEntry{
	{Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Jalapeno Poppers"},
	{Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Scrambled Eggs"},
	{Hall: "Simmons Hall", MealPeriod: "Lunch", Item: "Shrimp Tacos"},
	{Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Roasted Tofu Bowl"},
	{Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Jalapeno Cheddar Cornbread"},
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name      string
		keyword   string
		wantItems []string
	}{
		{
			name:      "substring hit across meal periods keeps order",
			keyword:   "jalapeno",
			wantItems: []string{"Jalapeno Poppers", "Jalapeno Cheddar Cornbread"},
		},
		{
			name:      "case insensitive",
			keyword:   "JALAPENO",
			wantItems: []string{"Jalapeno Poppers", "Jalapeno Cheddar Cornbread"},
		},
		{
			name:      "mid-word substring",
			keyword:   "acos",
			wantItems: []string{"Shrimp Tacos"},
		},
		{
			name:      "keyword with surrounding spaces",
			keyword:   "  tofu ",
			wantItems: []string{"Roasted Tofu Bowl"},
		},
		{
			name:      "no hit",
			keyword:   "lobster",
			wantItems: nil,
		},
		{
			name:      "blank keyword matches nothing",
			keyword:   "   ",
			wantItems: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotItems []string
			for _, e := range Match(tt.keyword, menu) {
				gotItems = append(gotItems, e.Item)
			}
			if diff := cmp.Diff(tt.wantItems, gotItems); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchAll(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     []model.MatchResult
	}{
		{
			name:     "one result per keyword per entry",
			keywords: []string{"jalapeno", "poppers"},
			want: []model.MatchResult{
				{Email: "a@mit.edu", Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Jalapeno Poppers", Keyword: "jalapeno"},
				{Email: "a@mit.edu", Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Jalapeno Cheddar Cornbread", Keyword: "jalapeno"},
				{Email: "a@mit.edu", Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Jalapeno Poppers", Keyword: "poppers"},
			},
		},
		{
			name:     "no keywords no results",
			keywords: nil,
			want:     nil,
		},
		{
			name:     "keyword spelling preserved for display",
			keywords: []string{"Tofu"},
			want: []model.MatchResult{
				{Email: "a@mit.edu", Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Roasted Tofu Bowl", Keyword: "Tofu"},
			},
		},
		{
			name:     "keyword trimmed but not lowercased",
			keywords: []string{"  JALAPENO "},
			want: []model.MatchResult{
				{Email: "a@mit.edu", Hall: "Simmons Hall", MealPeriod: "Breakfast", Item: "Jalapeno Poppers", Keyword: "JALAPENO"},
				{Email: "a@mit.edu", Hall: "Simmons Hall", MealPeriod: "Dinner", Item: "Jalapeno Cheddar Cornbread", Keyword: "JALAPENO"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchAll("a@mit.edu", tt.keywords, menu)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MatchAll() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
