// Package config 加载服务配置：内置默认值 → 可选 YAML 文件 → 环境变量（优先级依次升高）。
//
// 所有配置项都是可选的；缺省时服务以内存缓存 + 内存数据 + 热门兜底运行。
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rushteam/placerec/cache"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/recommender"
	"github.com/rushteam/placerec/server"
)

// Config 服务配置
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Recommend RecommendConfig `koanf:"recommend"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Cache     CacheConfig     `koanf:"cache"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit 每个客户端 IP 每分钟的请求上限，0 表示不限流
	RateLimit int `koanf:"rate_limit"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RecommendConfig 推荐参数
type RecommendConfig struct {
	MaxRadiusKm   float64       `koanf:"max_radius_km"`
	DefaultTopK   int           `koanf:"default_topk"`
	MaxTopK       int           `koanf:"max_topk"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	HistoryWindow time.Duration `koanf:"history_window"`
	HistoryLimit  int           `koanf:"history_limit"`
	EmbeddingTopK int           `koanf:"embedding_topk"`
	PopularLimit  int           `koanf:"popular_limit"`
	FilterExpr    string        `koanf:"filter_expr"`
}

// EmbeddingConfig 语义检索服务
type EmbeddingConfig struct {
	// URL 为空时不调用语义检索，始终走热门兜底
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`
}

// CacheConfig 推荐结果缓存
type CacheConfig struct {
	// RedisURL 为空或连接失败时使用进程内缓存
	RedisURL      string        `koanf:"redis_url"`
	DialTimeout   time.Duration `koanf:"dial_timeout"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// DatabaseConfig 地点/评论存储
type DatabaseConfig struct {
	// MongoURI 为空时使用内存数据（可由 SeedPath 装载）
	MongoURI       string        `koanf:"mongo_uri"`
	Name           string        `koanf:"name"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	SeedPath       string        `koanf:"seed_path"`
}

// LoggingConfig 日志
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       600,
		},
		Recommend: RecommendConfig{
			MaxRadiusKm:   core.DefaultRadiusKm,
			DefaultTopK:   core.DefaultTopK,
			MaxTopK:       core.DefaultMaxTopK,
			CacheTTL:      core.DefaultCacheTTL,
			HistoryWindow: core.DefaultHistoryWindow,
			HistoryLimit:  core.DefaultHistoryLimit,
			EmbeddingTopK: core.DefaultEmbeddingTopK,
			PopularLimit:  core.DefaultPopularLimit,
		},
		Embedding: EmbeddingConfig{
			Timeout:          core.DefaultEmbeddingTimeout,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Cache: CacheConfig{
			DialTimeout:   3 * time.Second,
			SweepInterval: time.Minute,
		},
		Database: DatabaseConfig{
			ConnectTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// RecommenderOptions 转换为推荐服务参数
func (c *Config) RecommenderOptions() recommender.Options {
	r := c.Recommend
	return recommender.Options{
		MaxRadiusKm:   r.MaxRadiusKm,
		DefaultTopK:   r.DefaultTopK,
		MaxTopK:       r.MaxTopK,
		CacheTTL:      r.CacheTTL,
		HistoryWindow: r.HistoryWindow,
		HistoryLimit:  r.HistoryLimit,
		EmbeddingTopK: r.EmbeddingTopK,
		PopularLimit:  r.PopularLimit,
		FilterExpr:    r.FilterExpr,
	}
}

// CacheOptions 转换为缓存启动参数
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		RedisURL:      c.Cache.RedisURL,
		DialTimeout:   c.Cache.DialTimeout,
		TTL:           c.Recommend.CacheTTL,
		SweepInterval: c.Cache.SweepInterval,
	}
}

// ServerOptions 转换为 HTTP 层参数
func (c *Config) ServerOptions() server.Options {
	return server.Options{
		RateLimit:      c.Server.RateLimit,
		RequestTimeout: c.Server.WriteTimeout,
	}
}

// LogConfig 转换为日志配置
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// String 打印时隐藏连接串中的凭据
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s redis=%t mongo=%t embedding=%t max_radius_km=%g topk=%d/%d cache_ttl=%s",
		c.Server.Addr(), c.Cache.RedisURL != "", c.Database.MongoURI != "", c.Embedding.URL != "",
		c.Recommend.MaxRadiusKm, c.Recommend.DefaultTopK, c.Recommend.MaxTopK, c.Recommend.CacheTTL)
}
