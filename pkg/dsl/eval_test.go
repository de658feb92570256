package dsl

import (
	"testing"

	"github.com/rushteam/placerec/core"
)

func TestProgram_Evaluate(t *testing.T) {
	rating := 4.2
	rated := core.NewPlaceItem(&core.Place{PlaceID: "p1", Name: "Blue Tokai", Tags: []string{"cafe", "coffee"}, AvgRating: &rating})
	rated.DistanceKm = 0.8
	rated.PutLabel("recall_source", core.Label{Value: "embedding", Source: "recall"})

	unrated := core.NewPlaceItem(&core.Place{PlaceID: "p2", Tags: []string{"closed"}})
	unrated.DistanceKm = 3

	rctx := &core.RecommendContext{UserID: "u1", Query: "coffee", RadiusKm: 5}

	tests := []struct {
		name string
		expr string
		item *core.Item
		want bool
	}{
		{name: "rating threshold", expr: `place.avg_rating == null || place.avg_rating >= 4.0`, item: rated, want: true},
		{name: "null rating passes", expr: `place.avg_rating == null || place.avg_rating >= 4.0`, item: unrated, want: true},
		{name: "tag membership", expr: `!("closed" in place.tags)`, item: unrated, want: false},
		{name: "distance", expr: `item.distance_km <= 1.0`, item: rated, want: true},
		{name: "label", expr: `label.recall_source == "embedding"`, item: rated, want: true},
		{name: "request context", expr: `rctx.query == "coffee" && rctx.radius_km == 5.0`, item: rated, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prg, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := prg.Evaluate(tt.item, rctx)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []string{
		`place.name ==`,
		`1 + 2`,
	}
	for _, expr := range tests {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) expected error", expr)
		}
	}
}
