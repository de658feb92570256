package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/rushteam/placerec/core"
)

const (
	placesCollection  = "places"
	reviewsCollection = "reviews"
)

// MongoCatalog 是 MongoDB 实现的 PlaceStore + ReviewStore（只读）。
// 集合结构与评论提交流程写入的文档一致：places / reviews。
type MongoCatalog struct {
	client  *mongo.Client
	places  *mongo.Collection
	reviews *mongo.Collection
}

// NewMongoCatalog 连接 MongoDB 并 PING 探活。dbName 为空时使用连接串中的库名，再缺省为 "test"。
func NewMongoCatalog(ctx context.Context, uri, dbName string) (*MongoCatalog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	if dbName == "" {
		dbName = "test"
		if cs, err := connstring.ParseAndValidate(uri); err == nil && cs.Database != "" {
			dbName = cs.Database
		}
	}
	db := client.Database(dbName)
	return &MongoCatalog{
		client:  client,
		places:  db.Collection(placesCollection),
		reviews: db.Collection(reviewsCollection),
	}, nil
}

// placeDoc 是 places 集合的文档结构。
// 旧文档可能没有 placeId（用 _id 代替），也可能只有 rating 没有 avg_rating。
type placeDoc struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	PlaceID     string             `bson:"placeId"`
	Name        string             `bson:"name"`
	Lat         float64            `bson:"lat"`
	Lon         float64            `bson:"lon"`
	Tags        []string           `bson:"tags"`
	AvgRating   *float64           `bson:"avg_rating"`
	Rating      *float64           `bson:"rating"`
	NumRatings  int                `bson:"n_ratings"`
	Description string             `bson:"description"`
	Embedding   []float64          `bson:"embedding"`
}

func (d *placeDoc) toPlace() *core.Place {
	id := d.PlaceID
	if id == "" && !d.ObjectID.IsZero() {
		id = d.ObjectID.Hex()
	}
	rating := d.AvgRating
	if rating == nil {
		rating = d.Rating
	}
	return &core.Place{
		PlaceID:     id,
		Name:        d.Name,
		Lat:         d.Lat,
		Lon:         d.Lon,
		Tags:        d.Tags,
		AvgRating:   rating,
		NumRatings:  d.NumRatings,
		Description: d.Description,
		Embedding:   d.Embedding,
	}
}

func (c *MongoCatalog) PlacesByIDs(ctx context.Context, ids []string) ([]*core.Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// 兼容以 _id 作为标识的旧文档
	objectIDs := make([]primitive.ObjectID, 0)
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	filter := bson.M{"placeId": bson.M{"$in": ids}}
	if len(objectIDs) > 0 {
		filter = bson.M{"$or": bson.A{
			bson.M{"placeId": bson.M{"$in": ids}},
			bson.M{"_id": bson.M{"$in": objectIDs}},
		}}
	}
	return c.findPlaces(ctx, filter, options.Find())
}

func (c *MongoCatalog) PopularPlaces(ctx context.Context, limit int) ([]*core.Place, error) {
	opts := options.Find().SetSort(bson.D{{Key: "avg_rating", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return c.findPlaces(ctx, bson.M{}, opts)
}

func (c *MongoCatalog) findPlaces(ctx context.Context, filter any, opts *options.FindOptions) ([]*core.Place, error) {
	cursor, err := c.places.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find places: %w", err)
	}
	var docs []placeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	out := make([]*core.Place, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toPlace())
	}
	return out, nil
}

func (c *MongoCatalog) RecentReviews(ctx context.Context, userID string, since time.Time, limit int) ([]*core.Review, error) {
	filter := bson.M{
		"userId":    userID,
		"createdAt": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := c.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	var out []*core.Review
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return out, nil
}

// Close 断开连接
func (c *MongoCatalog) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

var (
	_ core.PlaceStore  = (*MongoCatalog)(nil)
	_ core.ReviewStore = (*MongoCatalog)(nil)
)
