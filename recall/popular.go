package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Popular 是热门兜底召回源：按平均评分降序取前 Limit 个地点。
// 返回的候选已带完整地点记录，Resolve 不再二次查询。
// 存储读失败直接返回错误（请求失败），不做静默恢复。
type Popular struct {
	Store core.PlaceStore
	Limit int // 默认 100
}

func (r *Popular) Name() string { return "recall.popular" }

func (r *Popular) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}
	limit := r.Limit
	if limit <= 0 {
		limit = core.DefaultPopularLimit
	}

	places, err := r.Store.PopularPlaces(ctx, limit)
	if err != nil {
		return nil, core.StorageFailure("popular_places", err)
	}

	out := make([]*core.Item, 0, len(places))
	for _, p := range places {
		if p == nil {
			continue
		}
		out = append(out, core.NewPlaceItem(p))
	}
	return out, nil
}
