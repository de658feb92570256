package pipeline

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Kind 标记 Node 所属阶段，用于日志与指标分组。
type Kind string

// 推荐链路的四个阶段，按执行顺序排列
const (
	KindRecall Kind = "recall" // 产出候选 id 或已加载的地点
	KindFilter Kind = "filter" // 按距离/表达式剔除候选
	KindRank   Kind = "rank"   // 混合打分并排序
	KindReRank Kind = "rerank" // 截断到 topK
)

func (k Kind) String() string { return string(k) }

// Node 接收上一阶段的候选，返回本阶段处理后的候选。
// rctx 在整条链路中只读；Node 需可被并发请求共享。
type Node interface {
	Name() string
	Kind() Kind
	Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)
}
