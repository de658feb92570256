// Package cache 是推荐结果缓存：对 core.Store 的失败即放行（fail-open）封装。
//
// 缓存只是优化手段，不是正确性依赖：后端的任何错误都在这里被吸收，
// Get 视为未命中，Set 静默丢弃；同时写日志并计数，保证可观测。
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
)

// Cache 推荐结果缓存
type Cache struct {
	backend core.Store
	ttl     time.Duration
}

// New 包装一个已选定的后端。ttl <= 0 时使用默认 300s。
func New(backend core.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = core.DefaultCacheTTL
	}
	return &Cache{backend: backend, ttl: ttl}
}

// Backend 返回后端名称（redis / memory）
func (c *Cache) Backend() string { return c.backend.Name() }

// TTL 返回默认过期时间
func (c *Cache) TTL() time.Duration { return c.ttl }

// Key 生成缓存 key：rec:{userId}:{lat}:{lon}:{radius}:{query}，坐标保留 4 位小数（约 11m）。
func Key(userID string, lat, lon, radiusKm float64, query string) string {
	return fmt.Sprintf("rec:%s:%.4f:%.4f:%s:%s",
		userID, lat, lon, strconv.FormatFloat(radiusKm, 'f', -1, 64), query)
}

// Get 读取缓存。后端错误、反序列化失败都按未命中处理。
func (c *Cache) Get(ctx context.Context, key string) ([]core.Recommendation, bool) {
	backend := c.backend.Name()
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			metrics.CacheErrors.WithLabelValues(backend, "get").Inc()
			logging.Ctx(ctx).Warn().Err(err).
				Str("component", "cache").
				Str("backend", backend).
				Str("key", key).
				Msg("cache get failed, treating as miss")
		}
		metrics.CacheMisses.WithLabelValues(backend).Inc()
		return nil, false
	}

	var recs []core.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		metrics.CacheErrors.WithLabelValues(backend, "decode").Inc()
		metrics.CacheMisses.WithLabelValues(backend).Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("component", "cache").
			Str("key", key).
			Msg("cache payload undecodable, treating as miss")
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(backend).Inc()
	return recs, true
}

// Set 写入缓存，尽力而为：失败只记录，不影响调用方。ttl <= 0 时使用默认 TTL。
func (c *Cache) Set(ctx context.Context, key string, recs []core.Recommendation, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	backend := c.backend.Name()

	if recs == nil {
		recs = []core.Recommendation{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		metrics.CacheErrors.WithLabelValues(backend, "encode").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("component", "cache").Msg("cache payload encode failed")
		return
	}

	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		metrics.CacheErrors.WithLabelValues(backend, "set").Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("component", "cache").
			Str("backend", backend).
			Str("key", key).
			Msg("cache set failed, result not cached")
	}
}

// Close 关闭后端
func (c *Cache) Close() error {
	return c.backend.Close()
}
