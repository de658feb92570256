package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
	"github.com/rushteam/placerec/pipeline"
)

// FilterNode 依次应用 Filters，任一过滤器命中即剔除候选，保持其余候选的顺序。
// 过滤器出错时跳过该过滤器，候选保留。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	dropped := make(map[string]int, len(n.Filters))
	kept := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if by := n.match(ctx, rctx, item); by != "" {
			dropped[by]++
			continue
		}
		kept = append(kept, item)
	}

	for name, cnt := range dropped {
		metrics.FilteredCandidates.WithLabelValues(name).Add(float64(cnt))
	}
	logging.Ctx(ctx).Debug().
		Int("in", len(items)).
		Int("out", len(kept)).
		Interface("dropped", dropped).
		Msg("filter applied")
	return kept, nil
}

// match 返回剔除该候选的过滤器名，未命中返回空串
func (n *FilterNode) match(ctx context.Context, rctx *core.RecommendContext, item *core.Item) string {
	for _, f := range n.Filters {
		drop, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).
				Str("filter", f.Name()).
				Str("item", item.ID).
				Msg("filter error, keeping item")
			continue
		}
		if drop {
			return f.Name()
		}
	}
	return ""
}
