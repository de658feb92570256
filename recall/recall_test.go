package recall

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/store"
)

type fakeSearcher struct {
	res      core.EmbeddingResult
	lastText string
}

func (f *fakeSearcher) Search(_ context.Context, text string, _ int) core.EmbeddingResult {
	f.lastText = text
	return f.res
}

type failingPlaces struct{}

func (failingPlaces) PlacesByIDs(context.Context, []string) ([]*core.Place, error) {
	return nil, errors.New("db down")
}

func (failingPlaces) PopularPlaces(context.Context, int) ([]*core.Place, error) {
	return nil, errors.New("db down")
}

// countingPlaces 记录 PlacesByIDs 的调用次数
type countingPlaces struct {
	*store.MemoryCatalog
	calls atomic.Int32
}

func (c *countingPlaces) PlacesByIDs(ctx context.Context, ids []string) ([]*core.Place, error) {
	c.calls.Add(1)
	return c.MemoryCatalog.PlacesByIDs(ctx, ids)
}

func rating(v float64) *float64 { return &v }

func catalog() *store.MemoryCatalog {
	c := store.NewMemoryCatalog()
	c.AddPlaces(
		&core.Place{PlaceID: "p1", Name: "one", AvgRating: rating(3)},
		&core.Place{PlaceID: "p2", Name: "two", AvgRating: rating(5)},
		&core.Place{PlaceID: "p3", Name: "three"},
		&core.Place{PlaceID: "p1", Name: "one-dup"},
	)
	return c
}

func rctxWithText(text string) *core.RecommendContext {
	return &core.RecommendContext{UserID: "u1", User: &core.UserProfile{UserID: "u1", Text: text}}
}

func TestEmbedding_Recall(t *testing.T) {
	s := &fakeSearcher{res: core.EmbeddingResult{IDs: []string{"p2", "p1", "p2"}, Dists: []float64{0.1, 0.2, 0.3}}}
	r := &Embedding{Searcher: s}

	items, err := r.Recall(context.Background(), rctxWithText("coffee . cafe"))
	if err != nil {
		t.Fatal(err)
	}
	if s.lastText != "coffee . cafe" {
		t.Errorf("searched with %q", s.lastText)
	}
	if len(items) != 2 || items[0].ID != "p2" || items[1].ID != "p1" {
		t.Fatalf("items = %v", itemIDs(items))
	}
	if items[0].Features[FeatureEmbeddingDist] != 0.1 {
		t.Errorf("dist feature = %v", items[0].Features[FeatureEmbeddingDist])
	}
}

func TestPopular_Recall(t *testing.T) {
	r := &Popular{Store: catalog(), Limit: 2}
	items, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "p2" || items[1].ID != "p1" {
		t.Fatalf("items = %v", itemIDs(items))
	}
	if items[0].Place == nil {
		t.Error("popular candidates should carry place records")
	}

	_, err = (&Popular{Store: failingPlaces{}}).Recall(context.Background(), nil)
	if !core.IsStorageFailure(err) {
		t.Errorf("err = %v, want storage failure", err)
	}
}

func TestChain_FirstNonEmptyWins(t *testing.T) {
	tests := []struct {
		name       string
		embedding  core.EmbeddingResult
		wantSource string
		wantLen    int
	}{
		{
			name:       "embedding hit",
			embedding:  core.EmbeddingResult{IDs: []string{"p3"}},
			wantSource: "recall.embedding",
			wantLen:    1,
		},
		{
			name:       "embedding empty falls back to popular",
			embedding:  core.EmbeddingResult{},
			wantSource: "recall.popular",
			wantLen:    4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &Chain{Sources: []Source{
				&Embedding{Searcher: &fakeSearcher{res: tt.embedding}},
				&Popular{Store: catalog()},
			}}
			items, err := chain.Process(context.Background(), rctxWithText("x"), nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(items), tt.wantLen)
			}
			for _, it := range items {
				if got := it.Labels[LabelRecallSource].Value; got != tt.wantSource {
					t.Errorf("%s recall_source = %q, want %q", it.ID, got, tt.wantSource)
				}
			}
		})
	}
}

func TestChain_PropagatesStorageFailure(t *testing.T) {
	chain := &Chain{Sources: []Source{
		&Embedding{Searcher: &fakeSearcher{}},
		&Popular{Store: failingPlaces{}},
	}}
	if _, err := chain.Process(context.Background(), rctxWithText("x"), nil); !core.IsStorageFailure(err) {
		t.Errorf("err = %v, want storage failure", err)
	}
}

func TestResolve_Process(t *testing.T) {
	cp := &countingPlaces{MemoryCatalog: catalog()}
	n := &Resolve{Store: cp, ChunkSize: 1, MaxConcurrent: 2}

	preloaded := core.NewPlaceItem(&core.Place{PlaceID: "px", Name: "loaded"})
	a := core.NewItem("p1")
	a.Features[FeatureEmbeddingDist] = 0.5
	a.PutLabel(LabelRecallSource, core.Label{Value: "recall.embedding", Source: "recall"})

	items := []*core.Item{a, core.NewItem("missing"), core.NewItem("p3"), preloaded}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatal(err)
	}

	// p1 命中两条记录，missing 被丢弃，px 原样保留
	want := []string{"one", "one-dup", "three", "loaded"}
	if len(out) != len(want) {
		t.Fatalf("out = %v", itemIDs(out))
	}
	for i, it := range out {
		if it.Place.Name != want[i] {
			t.Errorf("[%d] = %s, want %s", i, it.Place.Name, want[i])
		}
	}
	if out[0].Features[FeatureEmbeddingDist] != 0.5 || out[0].Labels[LabelRecallSource].Value != "recall.embedding" {
		t.Error("features/labels should carry over to resolved items")
	}
	if n := cp.calls.Load(); n != 3 {
		t.Errorf("chunked calls = %d, want 3", n)
	}
}

func TestResolve_StorageFailure(t *testing.T) {
	n := &Resolve{Store: failingPlaces{}}
	_, err := n.Process(context.Background(), nil, []*core.Item{core.NewItem("p1")})
	if !core.IsStorageFailure(err) {
		t.Errorf("err = %v, want storage failure", err)
	}
}

func TestResolve_NothingPending(t *testing.T) {
	n := &Resolve{Store: failingPlaces{}}
	in := []*core.Item{core.NewPlaceItem(&core.Place{PlaceID: "p"})}
	out, err := n.Process(context.Background(), nil, in)
	if err != nil || len(out) != 1 {
		t.Errorf("out = %v, err = %v", itemIDs(out), err)
	}
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

