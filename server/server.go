// Package server 是推荐服务的 HTTP 边界：请求解码、错误映射、中间件。
//
//	POST /api/recommender/recommend  {userId, lat, lon, query?, topk?, radiusKm?}
//	POST /recommend                  同上
//	GET  /api/recommender/health     {"ok": true}
//	GET  /metrics                    Prometheus
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/placerec/core"
)

// Recommender 是 HTTP 层依赖的推荐接口
type Recommender interface {
	Recommend(ctx context.Context, req core.Request) ([]core.Recommendation, error)
}

// Options HTTP 层参数
type Options struct {
	// RateLimit 每个客户端 IP 每分钟的请求上限，0 表示不限流
	RateLimit int

	// MaxBodyBytes 请求体上限（默认 64KB）
	MaxBodyBytes int64

	// RequestTimeout 单个请求的处理超时（0 表示不限制）
	RequestTimeout time.Duration
}

// Server 路由与处理器
type Server struct {
	rec    Recommender
	opts   Options
	router chi.Router
}

// New 创建 HTTP 服务
func New(rec Recommender, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}
	s := &Server{rec: rec, opts: opts}
	s.router = s.routes()
	return s
}

// Handler 返回根 http.Handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(recoverer)
	r.Use(instrument)
	if s.opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))
	}

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimit, time.Minute))
		}
		r.Post("/recommend", s.handleRecommend)
		r.Route("/api/recommender", func(r chi.Router) {
			r.Post("/recommend", s.handleRecommend)
			r.Get("/health", s.handleHealth)
		})
	})
	return r
}
