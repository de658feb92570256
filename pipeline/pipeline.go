package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：Recall → Filter → Rank → ReRank。
// Pipeline 本身无状态，可被并发请求共享。
type Pipeline struct {
	Nodes []Node
}

// New 按顺序组装 Node
func New(nodes ...Node) *Pipeline {
	return &Pipeline{Nodes: nodes}
}

// Run 依次执行各 Node。任一 Node 出错立即中止，错误带上 Node 名称。
// 执行前检查 ctx，调用方取消后不再继续后续阶段。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		metrics.PipelineStageDuration.WithLabelValues(node.Name()).Observe(elapsed.Seconds())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}

		logging.Ctx(ctx).Debug().
			Str("node", node.Name()).
			Stringer("kind", node.Kind()).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", elapsed).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
