package core

import "time"

// 推荐链路默认参数。所有参数都可由配置覆盖，缺省时按以下取值运行。
const (
	DefaultRadiusKm = 5.0               // 最大检索半径（km）
	DefaultTopK     = 5                 // 默认返回条数
	DefaultMaxTopK  = 50                // 单次请求允许的最大返回条数
	DefaultCacheTTL = 300 * time.Second // 推荐结果缓存时长

	DefaultHistoryWindow = 90 * 24 * time.Hour // 用户历史时间窗口
	DefaultHistoryLimit  = 50                  // 用户历史最多读取条数

	DefaultEmbeddingTopK = 200 // 语义检索候选数
	DefaultPopularLimit  = 100 // 热门兜底候选数

	DefaultEmbeddingTimeout = 8 * time.Second
)
