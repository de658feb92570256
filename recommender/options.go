package recommender

import (
	"time"

	"github.com/rushteam/placerec/core"
)

// Options 推荐服务参数，零值字段使用 core 中的默认值。
type Options struct {
	// MaxRadiusKm 最大检索半径；请求半径超过时截断，距离分也按它衰减
	MaxRadiusKm float64

	DefaultTopK int
	MaxTopK     int

	CacheTTL time.Duration

	HistoryWindow time.Duration
	HistoryLimit  int

	EmbeddingTopK int
	PopularLimit  int

	// FilterExpr 可选的 CEL 过滤表达式，见 pkg/dsl
	FilterExpr string

	// ResolveChunkSize / ResolveConcurrency 补全地点记录时的分批与并发
	ResolveChunkSize   int
	ResolveConcurrency int
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		MaxRadiusKm:        core.DefaultRadiusKm,
		DefaultTopK:        core.DefaultTopK,
		MaxTopK:            core.DefaultMaxTopK,
		CacheTTL:           core.DefaultCacheTTL,
		HistoryWindow:      core.DefaultHistoryWindow,
		HistoryLimit:       core.DefaultHistoryLimit,
		EmbeddingTopK:      core.DefaultEmbeddingTopK,
		PopularLimit:       core.DefaultPopularLimit,
		ResolveChunkSize:   100,
		ResolveConcurrency: 4,
	}
}

// withDefaults 用默认值补齐零值字段
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRadiusKm <= 0 {
		o.MaxRadiusKm = d.MaxRadiusKm
	}
	if o.DefaultTopK <= 0 {
		o.DefaultTopK = d.DefaultTopK
	}
	if o.MaxTopK <= 0 {
		o.MaxTopK = d.MaxTopK
	}
	if o.DefaultTopK > o.MaxTopK {
		o.DefaultTopK = o.MaxTopK
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = d.CacheTTL
	}
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = d.HistoryWindow
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = d.HistoryLimit
	}
	if o.EmbeddingTopK <= 0 {
		o.EmbeddingTopK = d.EmbeddingTopK
	}
	if o.PopularLimit <= 0 {
		o.PopularLimit = d.PopularLimit
	}
	if o.ResolveChunkSize <= 0 {
		o.ResolveChunkSize = d.ResolveChunkSize
	}
	if o.ResolveConcurrency <= 0 {
		o.ResolveConcurrency = d.ResolveConcurrency
	}
	return o
}

// Option 服务构建选项
type Option func(*Service)

// WithOptions 覆盖全部参数
func WithOptions(o Options) Option {
	return func(s *Service) {
		s.opts = o
	}
}

// WithClock 替换时钟（测试中固定历史窗口）
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
