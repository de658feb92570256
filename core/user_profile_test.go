package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewUserProfile(t *testing.T) {
	reviews := []*Review{
		{PlaceName: "Blue Tokai", Comment: "great pour over", Category: "cafe"},
		nil,
		{PlaceName: "Lodhi Garden", Category: "park"},
		{PlaceName: "Third Wave", Comment: "", Category: "cafe"},
	}

	tests := []struct {
		name     string
		reviews  []*Review
		query    string
		wantText string
		wantCats []string
	}{
		{"no history no query", nil, "", "nearby", []string{}},
		{"query only", nil, "  latte ", "latte", []string{}},
		{
			"history with query",
			reviews, "latte",
			"latte . Blue Tokai great pour over . Lodhi Garden . Third Wave . cafe park",
			[]string{"cafe", "park"},
		},
		{
			"history without query",
			reviews[:1], "",
			"Blue Tokai great pour over . cafe",
			[]string{"cafe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUserProfile("u1", tt.reviews, tt.query)
			if p.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", p.Text, tt.wantText)
			}
			if !reflect.DeepEqual(p.PreferredCategories, tt.wantCats) {
				t.Errorf("PreferredCategories = %v, want %v", p.PreferredCategories, tt.wantCats)
			}
		})
	}
}

func TestNewUserProfile_ReviewLimit(t *testing.T) {
	reviews := make([]*Review, ProfileReviewLimit+5)
	for i := range reviews {
		reviews[i] = &Review{PlaceName: "p", Comment: "c"}
	}
	p := NewUserProfile("u1", reviews, "")
	if n := strings.Count(p.Text, "p c"); n != ProfileReviewLimit {
		t.Errorf("profile uses %d reviews, want %d", n, ProfileReviewLimit)
	}
	if len(p.Reviews) != len(reviews) {
		t.Errorf("Reviews should keep the full window, got %d", len(p.Reviews))
	}
}

func TestRecommendContext_NilProfile(t *testing.T) {
	var rctx *RecommendContext
	if rctx.Reviews() != nil || rctx.PreferredCategories() != nil {
		t.Error("nil context should yield nil history")
	}
}
