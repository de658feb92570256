// Package recommender 是推荐编排层：缓存 → 用户历史 → 画像 → 召回 → 距离过滤 → 打分排序 → TopK → 回写缓存。
package recommender

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/placerec/cache"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/filter"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/rank"
	"github.com/rushteam/placerec/recall"
	"github.com/rushteam/placerec/rerank"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Service 推荐服务。除缓存外无共享可变状态，可被并发请求共享。
type Service struct {
	cache    *cache.Cache
	reviews  core.ReviewStore
	pipeline *pipeline.Pipeline
	opts     Options
	now      func() time.Time
	group    singleflight.Group
}

// New 组装推荐服务。searcher 可以为 nil（始终走热门兜底）。
func New(
	c *cache.Cache,
	places core.PlaceStore,
	reviews core.ReviewStore,
	searcher core.EmbeddingSearcher,
	opts ...Option,
) (*Service, error) {
	if c == nil || places == nil || reviews == nil {
		return nil, errors.New("recommender: cache, place store and review store are required")
	}

	s := &Service{
		cache:   c,
		reviews: reviews,
		opts:    DefaultOptions(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.opts = s.opts.withDefaults()

	filters := []filter.Filter{&filter.Radius{}}
	if s.opts.FilterExpr != "" {
		expr, err := filter.NewExpr(s.opts.FilterExpr)
		if err != nil {
			return nil, fmt.Errorf("recommender: filter expr: %w", err)
		}
		filters = append(filters, expr)
	}

	sources := make([]recall.Source, 0, 2)
	if searcher != nil {
		sources = append(sources, &recall.Embedding{Searcher: searcher, TopK: s.opts.EmbeddingTopK})
	}
	sources = append(sources, &recall.Popular{Store: places, Limit: s.opts.PopularLimit})

	s.pipeline = pipeline.New(
		&recall.Chain{Sources: sources},
		&recall.Resolve{
			Store:         places,
			ChunkSize:     s.opts.ResolveChunkSize,
			MaxConcurrent: s.opts.ResolveConcurrency,
		},
		&filter.FilterNode{Filters: filters},
		&rank.BlendedNode{MaxRadiusKm: s.opts.MaxRadiusKm},
		&rerank.TopNNode{},
	)
	return s, nil
}

// Options 返回生效的参数
func (s *Service) Options() Options { return s.opts }

// Recommend 返回按分数降序的推荐摘要（至多 topK 条，可能为空）。
//
// 只有两类错误会返回：请求非法（core.IsInvalidInput）与存储读失败（core.IsStorageFailure）。
// 缓存与语义检索的故障在各自组件内被吸收。
func (s *Service) Recommend(ctx context.Context, req core.Request) ([]core.Recommendation, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	key := cache.Key(req.UserID, req.Lat, req.Lon, req.RadiusKm, req.Query)
	if recs, ok := s.cache.Get(ctx, key); ok {
		return recs, nil
	}

	// 相同 key 的并发未命中只计算一次
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.compute(ctx, key, req)
	})
	if err != nil {
		// 共享的计算随发起方一起被取消，而本请求仍然有效：自行重算一次
		if shared && ctx.Err() == nil && isContextErr(err) {
			return s.compute(ctx, key, req)
		}
		return nil, err
	}
	recs := v.([]core.Recommendation)
	if shared {
		recs = append([]core.Recommendation(nil), recs...)
	}
	return recs, nil
}

// normalize 校验请求并补齐半径与条数
func (s *Service) normalize(req core.Request) (core.Request, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := getValidator().Struct(&req); err != nil {
		return req, core.InvalidInput(err)
	}

	if req.RadiusKm <= 0 || req.RadiusKm > s.opts.MaxRadiusKm || math.IsNaN(req.RadiusKm) {
		req.RadiusKm = s.opts.MaxRadiusKm
	}
	switch {
	case req.TopK <= 0:
		req.TopK = s.opts.DefaultTopK
	case req.TopK > s.opts.MaxTopK:
		req.TopK = s.opts.MaxTopK
	}
	return req, nil
}

func (s *Service) compute(ctx context.Context, key string, req core.Request) ([]core.Recommendation, error) {
	log := logging.Ctx(ctx)

	since := s.now().Add(-s.opts.HistoryWindow)
	reviews, err := s.reviews.RecentReviews(ctx, req.UserID, since, s.opts.HistoryLimit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		err = core.StorageFailure("recent_reviews", err)
		s.recordStorageError(ctx, err)
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:   req.UserID,
		Lat:      req.Lat,
		Lon:      req.Lon,
		Query:    req.Query,
		RadiusKm: req.RadiusKm,
		TopK:     req.TopK,
		User:     core.NewUserProfile(req.UserID, reviews, req.Query),
	}

	items, err := s.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if core.IsStorageFailure(err) {
			s.recordStorageError(ctx, err)
		}
		return nil, err
	}

	recs := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		recs = append(recs, core.NewRecommendation(it))
	}

	// 调用方已取消：不写入缓存，避免缓存不完整的结果
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.cache.Set(ctx, key, recs, s.opts.CacheTTL)

	log.Debug().
		Str("user_id", req.UserID).
		Int("reviews", len(reviews)).
		Int("results", len(recs)).
		Msg("recommendations computed")
	return recs, nil
}

func (s *Service) recordStorageError(ctx context.Context, err error) {
	op := "unknown"
	if de := core.GetDomainError(err); de != nil {
		op = strings.TrimPrefix(de.Message, "storage: ")
	}
	metrics.StorageErrors.WithLabelValues(op).Inc()
	logging.Ctx(ctx).Error().Err(err).Str("component", "recommender").Str("op", op).Msg("storage read failed")
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
