// Package placerec 是附近地点推荐服务。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑由 Node 串联（Recall → Filter → Rank → ReRank）
// - 语义检索只是预筛选：不可用或无结果时回退到热门地点，并用同一套打分排序
// - 外部依赖可降级：Redis 不可达时使用进程内缓存，缓存读写失败不影响请求
//
// 入口见 cmd/placerec，编排见 recommender 包。
package placerec

import (
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/recommender"
)

// 轻量 facade：便于直接 import "placerec" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Service  = recommender.Service
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
