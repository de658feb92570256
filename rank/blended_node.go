package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
)

// 写入 item.Features 的子分数 key
const (
	FeatureRating   = "score_rating"
	FeatureDistance = "score_distance"
	FeatureTag      = "score_tag"
	FeatureCategory = "score_category"
)

// BlendedNode 用 BlendedScore 给候选打分并排序。
//   - 依赖 Filter 阶段写入的 item.DistanceKm
//   - 写入 item.Score 与各子分数 Features，labels：rank_model
//   - 分数降序；同分按 placeId 升序，保证结果确定
type BlendedNode struct {
	// MaxRadiusKm 距离分的衰减半径（服务配置的最大半径，而非请求半径）
	MaxRadiusKm float64
}

func (n *BlendedNode) Name() string        { return "rank.blended" }
func (n *BlendedNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *BlendedNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.Place == nil {
			continue
		}
		b := Score(ScoreInput{
			Place:               it.Place,
			DistanceKm:          it.DistanceKm,
			MaxRadiusKm:         n.MaxRadiusKm,
			Query:               rctx.Query,
			Reviews:             rctx.Reviews(),
			PreferredCategories: rctx.PreferredCategories(),
		})
		it.Score = b.Total()
		if it.Features == nil {
			it.Features = make(map[string]float64)
		}
		it.Features[FeatureRating] = b.Rating
		it.Features[FeatureDistance] = b.Distance
		it.Features[FeatureTag] = b.Tag
		it.Features[FeatureCategory] = b.Category
		it.PutLabel("rank_model", core.Label{Value: "blended", Source: "rank"})
		it.PutLabel("rank_score", core.Label{Value: strconv.FormatFloat(it.Score, 'f', 4, 64), Source: "rank"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
