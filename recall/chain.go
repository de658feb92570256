package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
	"github.com/rushteam/placerec/pipeline"
)

// Chain 是一个 Recall Node：按顺序尝试各召回源，第一个返回非空结果的胜出。
// 典型用法是 [语义检索, 热门兜底]。
//
// 召回源返回的错误会中止请求（例如热门兜底的存储故障）；
// 需要降级的召回源应自己吸收错误并返回空集。
type Chain struct {
	Sources []Source
}

func (n *Chain) Name() string        { return "recall.chain" }
func (n *Chain) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Chain) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	for i, src := range n.Sources {
		items, err := src.Recall(ctx, rctx)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			continue
		}

		// 记录召回来源 label，方便 explain / 观测
		for _, it := range items {
			it.PutLabel(LabelRecallSource, core.Label{Value: src.Name(), Source: "recall"})
		}
		metrics.RecallSource.WithLabelValues(src.Name()).Inc()
		if i > 0 {
			logging.Ctx(ctx).Info().
				Str("component", "recall").
				Str("source", src.Name()).
				Str("user_id", rctx.UserID).
				Msg("primary recall empty, using fallback source")
		}
		return items, nil
	}

	metrics.RecallSource.WithLabelValues("none").Inc()
	return nil, nil
}
