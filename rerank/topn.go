package rerank

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在排序之后截取前 N 个候选。
//
// N > 0 时固定截断为 N；否则使用请求的 rctx.TopK，请求也未指定时默认 5。
//
//	p := pipeline.New(
//	    &rank.BlendedNode{MaxRadiusKm: 5}, // 排序
//	    &rerank.TopNNode{},                // 按请求 topk 截断
//	)
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopK
	}
	if limit <= 0 {
		limit = core.DefaultTopK
	}

	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
