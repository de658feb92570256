package cache

import (
	"context"
	"time"

	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/store"
)

// Options 缓存启动参数
type Options struct {
	// RedisURL 为空时直接使用内存后端
	RedisURL string

	// DialTimeout 连接 + PING 的超时（默认 3s）
	DialTimeout time.Duration

	// TTL 默认过期时间（默认 300s）
	TTL time.Duration

	// SweepInterval 内存后端的后台清理间隔（0 表示只做读时淘汰）
	SweepInterval time.Duration
}

// Open 在进程启动时选定一次后端：配置了 Redis 且探活成功则用 Redis，
// 否则降级到进程内存储。Open 不会因为 Redis 不可用而失败。
func Open(ctx context.Context, opts Options) *Cache {
	log := logging.WithComponent("cache")

	if opts.RedisURL != "" {
		timeout := opts.DialTimeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		rs, err := store.NewRedisStore(dialCtx, opts.RedisURL)
		cancel()
		if err == nil {
			log.Info().Str("backend", rs.Name()).Msg("cache backend selected")
			return New(rs, opts.TTL)
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory cache")
	}

	ms := store.NewMemoryStore(store.WithSweepInterval(opts.SweepInterval))
	log.Info().Str("backend", ms.Name()).Msg("cache backend selected")
	return New(ms, opts.TTL)
}
