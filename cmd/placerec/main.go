// Command placerec 启动附近地点推荐服务。
//
// 配置见 config 包：工作目录下的 .env、CONFIG_PATH 指定的 YAML 文件与环境变量（PORT、MONGODB_URI、REDIS_URL、
// EMB_SERVICE_URL、MAX_RADIUS_KM 等）。未配置外部依赖时以内存数据 + 内存缓存运行。
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/thejerf/suture/v4"

	"github.com/rushteam/placerec/cache"
	"github.com/rushteam/placerec/config"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/recommender"
	"github.com/rushteam/placerec/server"
	"github.com/rushteam/placerec/service"
	"github.com/rushteam/placerec/store"
)

// catalog 同时提供地点与评论读取
type catalog interface {
	core.PlaceStore
	core.ReviewStore
}

func main() {
	// .env 只补充未设置的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LogConfig())
	logging.Info().Str("config", cfg.String()).Msg("Starting placerec")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultCache := cache.Open(ctx, cfg.CacheOptions())
	defer func() {
		if err := resultCache.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close cache")
		}
	}()

	data, closeData, err := openCatalog(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open place catalog")
	}
	defer closeData()

	var searcher core.EmbeddingSearcher
	if cfg.Embedding.URL != "" {
		searcher = service.NewEmbeddingClient(cfg.Embedding.URL,
			service.WithEmbeddingTimeout(cfg.Embedding.Timeout),
			service.WithEmbeddingBreaker(cfg.Embedding.BreakerThreshold, cfg.Embedding.BreakerCooldown),
		)
	} else {
		logging.Info().Msg("Embedding service not configured, using popular fallback only")
	}

	rec, err := recommender.New(resultCache, data, data, searcher,
		recommender.WithOptions(cfg.RecommenderOptions()))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommender")
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.New(rec, cfg.ServerOptions()).Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	sup := suture.New("placerec", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Interface("details", e.Map()).Msg(e.String())
		},
		Timeout: cfg.Server.ShutdownTimeout,
	})
	sup.Add(server.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor stopped with error")
	}
	logging.Info().Msg("placerec stopped")
}

// openCatalog 配置了 Mongo 时连接 Mongo，否则使用内存数据（可由 seed 文件装载）
func openCatalog(ctx context.Context, cfg config.DatabaseConfig) (catalog, func(), error) {
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		mc, err := store.NewMongoCatalog(connectCtx, cfg.MongoURI, cfg.Name)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mc.Close(closeCtx); err != nil {
				logging.Warn().Err(err).Msg("Failed to disconnect MongoDB")
			}
		}
		logging.Info().Msg("Using MongoDB catalog")
		return mc, closeFn, nil
	}

	if cfg.SeedPath != "" {
		mem, err := store.LoadSeed(cfg.SeedPath)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("seed", cfg.SeedPath).Msg("Using in-memory catalog from seed file")
		return mem, func() {}, nil
	}

	logging.Warn().Msg("No database configured, serving from an empty in-memory catalog")
	return store.NewMemoryCatalog(), func() {}, nil
}
