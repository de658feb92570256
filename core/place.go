package core

import (
	"context"
	"time"
)

// Place 是地点记录（由外部存储拥有，推荐链路只读）。
// PlaceID 不保证跨数据源唯一。
type Place struct {
	PlaceID     string    `json:"placeId" bson:"placeId" yaml:"placeId"`
	Name        string    `json:"name" bson:"name" yaml:"name"`
	Lat         float64   `json:"lat" bson:"lat" yaml:"lat"`
	Lon         float64   `json:"lon" bson:"lon" yaml:"lon"`
	Tags        []string  `json:"tags" bson:"tags" yaml:"tags"`
	AvgRating   *float64  `json:"avg_rating" bson:"avg_rating,omitempty" yaml:"avg_rating"`
	NumRatings  int       `json:"n_ratings,omitempty" bson:"n_ratings,omitempty" yaml:"n_ratings"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" yaml:"description"`
	Embedding   []float64 `json:"-" bson:"embedding,omitempty" yaml:"-"`
}

// Review 是用户的一次历史评论（UserActivityRecord），创建后不可变。
type Review struct {
	UserID    string    `json:"userId" bson:"userId" yaml:"userId"`
	PlaceID   string    `json:"placeId" bson:"placeId" yaml:"placeId"`
	PlaceName string    `json:"placeName" bson:"placeName" yaml:"placeName"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty" yaml:"category"`
	Rating    float64   `json:"rating,omitempty" bson:"rating,omitempty" yaml:"rating"`
	Comment   string    `json:"comment,omitempty" bson:"comment,omitempty" yaml:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
}

// PlaceStore 是地点存储的只读接口。
type PlaceStore interface {
	// PlacesByIDs 按 placeId 批量查询；同一 placeId 可能命中多条记录，未命中的 id 直接忽略
	PlacesByIDs(ctx context.Context, ids []string) ([]*Place, error)

	// PopularPlaces 按平均评分降序返回至多 limit 条（热门兜底）
	PopularPlaces(ctx context.Context, limit int) ([]*Place, error)
}

// ReviewStore 是用户评论存储的只读接口。
type ReviewStore interface {
	// RecentReviews 返回 userID 在 since 之后的评论，按 createdAt 降序，至多 limit 条
	RecentReviews(ctx context.Context, userID string, since time.Time, limit int) ([]*Review, error)
}
