package core

import "math"

// Request 是一次推荐请求。RadiusKm / TopK 不大于 0 时使用服务端默认值，超过上限时截断。
type Request struct {
	UserID   string  `json:"userId" validate:"required"`
	Lat      float64 `json:"lat" validate:"latitude"`
	Lon      float64 `json:"lon" validate:"longitude"`
	Query    string  `json:"query,omitempty"`
	RadiusKm float64 `json:"radiusKm,omitempty"`
	TopK     int     `json:"topk,omitempty"`
}

// Recommendation 是返回给调用方（也是写入缓存）的排序结果摘要。
type Recommendation struct {
	PlaceID    string   `json:"placeId"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Score      float64  `json:"score"`
	DistanceKm float64  `json:"distanceKm"`
	Tags       []string `json:"tags"`
	AvgRating  *float64 `json:"avg_rating"`
}

// NewRecommendation 由打分后的候选构建摘要：score 保留 4 位小数，distanceKm 保留 3 位。
func NewRecommendation(it *Item) Recommendation {
	p := it.Place
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return Recommendation{
		PlaceID:    p.PlaceID,
		Name:       p.Name,
		Lat:        p.Lat,
		Lon:        p.Lon,
		Score:      RoundTo(it.Score, 4),
		DistanceKm: RoundTo(it.DistanceKm, 3),
		Tags:       tags,
		AvgRating:  p.AvgRating,
	}
}

// RoundTo 四舍五入到 digits 位小数
func RoundTo(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
