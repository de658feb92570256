package rank

import (
	"strings"

	"github.com/rushteam/placerec/core"
)

// 混合打分权重：质量与距离优先于文本相关性。调整权重会改变排序结果。
const (
	WeightRating   = 0.35
	WeightDistance = 0.30
	WeightTag      = 0.20
	WeightCategory = 0.15

	// neutralRating 缺失评分时按中位数 3 处理（ratingScore = 0.5）
	neutralRating = 3.0
)

// ScoreInput 是混合打分的输入
type ScoreInput struct {
	Place      *core.Place
	DistanceKm float64

	// MaxRadiusKm 距离分线性衰减到 0 的半径；<= 0 时用默认 5km
	MaxRadiusKm float64

	Query               string
	Reviews             []*core.Review
	PreferredCategories []string
}

// Breakdown 各子分数，均在 [0,1]
type Breakdown struct {
	Rating   float64
	Distance float64
	Tag      float64
	Category float64
}

// Total 加权求和
func (b Breakdown) Total() float64 {
	return WeightRating*b.Rating +
		WeightDistance*b.Distance +
		WeightTag*b.Tag +
		WeightCategory*b.Category
}

// BlendedScore 是纯函数：评分、距离、标签匹配、类目亲和的加权和，结果在 [0,1]。
func BlendedScore(in ScoreInput) float64 {
	return Score(in).Total()
}

// Score 返回各子分数
func Score(in ScoreInput) Breakdown {
	var tags []string
	var rating *float64
	if in.Place != nil {
		tags = in.Place.Tags
		rating = in.Place.AvgRating
	}
	return Breakdown{
		Rating:   RatingScore(rating),
		Distance: DistanceScore(in.DistanceKm, in.MaxRadiusKm),
		Tag:      TagScore(in.Query, tags),
		Category: CategoryScore(in.PreferredCategories, tags),
	}
}

// RatingScore = clamp((r-1)/4, 0, 1)；评分缺失时 r = 3。
func RatingScore(avgRating *float64) float64 {
	r := neutralRating
	if avgRating != nil {
		r = *avgRating
	}
	return clamp01((r - 1) / 4)
}

// DistanceScore = 1 - min(d/maxRadius, 1)：在半径边界处线性衰减到 0。
func DistanceScore(distanceKm, maxRadiusKm float64) float64 {
	if maxRadiusKm <= 0 {
		maxRadiusKm = core.DefaultRadiusKm
	}
	return clamp01(1 - min(distanceKm/maxRadiusKm, 1))
}

// TagScore 是地点标签中作为子串出现在查询里的比例（大小写不敏感）。
// 查询为空或没有标签时为 0。
func TagScore(query string, tags []string) float64 {
	if query == "" || len(tags) == 0 {
		return 0
	}
	q := strings.ToLower(query)
	hits := 0
	for _, t := range tags {
		if t == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(t)) {
			hits++
		}
	}
	return clamp01(float64(hits) / float64(len(tags)))
}

// CategoryScore 是偏好类目中出现在地点标签里的比例（大小写不敏感）。
// 任一集合为空时为 0。
func CategoryScore(preferred, tags []string) float64 {
	if len(preferred) == 0 || len(tags) == 0 {
		return 0
	}
	lower := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		lower[strings.ToLower(t)] = struct{}{}
	}
	matches := 0
	for _, c := range preferred {
		if _, ok := lower[strings.ToLower(c)]; ok {
			matches++
		}
	}
	return clamp01(float64(matches) / float64(len(preferred)))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
