package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/placerec/core"
)

// MemoryCatalog 是内存实现的 PlaceStore + ReviewStore，用于测试/开发/原型。
// 未配置 MongoDB 时由 LoadSeed 从 YAML 装载示例数据。
type MemoryCatalog struct {
	mu      sync.RWMutex
	places  []*core.Place
	reviews []*core.Review
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

// AddPlaces 追加地点记录（placeId 允许重复）
func (c *MemoryCatalog) AddPlaces(places ...*core.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range places {
		if p != nil {
			c.places = append(c.places, p)
		}
	}
}

// AddReviews 追加评论
func (c *MemoryCatalog) AddReviews(reviews ...*core.Review) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range reviews {
		if r != nil {
			c.reviews = append(c.reviews, r)
		}
	}
}

func (c *MemoryCatalog) PlacesByIDs(_ context.Context, ids []string) ([]*core.Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.Place, 0, len(ids))
	for _, p := range c.places {
		if _, ok := want[p.PlaceID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// PopularPlaces 按平均评分降序，无评分的排在最后；同分保持写入顺序。
func (c *MemoryCatalog) PopularPlaces(_ context.Context, limit int) ([]*core.Place, error) {
	c.mu.RLock()
	sorted := make([]*core.Place, len(c.places))
	copy(sorted, c.places)
	c.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].AvgRating, sorted[j].AvgRating
		if ri == nil || rj == nil {
			return ri != nil && rj == nil
		}
		return *ri > *rj
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (c *MemoryCatalog) RecentReviews(_ context.Context, userID string, since time.Time, limit int) ([]*core.Review, error) {
	c.mu.RLock()
	out := make([]*core.Review, 0)
	for _, r := range c.reviews {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ core.PlaceStore  = (*MemoryCatalog)(nil)
	_ core.ReviewStore = (*MemoryCatalog)(nil)
)
