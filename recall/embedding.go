package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Embedding 是语义检索召回源：用画像文本向语义检索服务要候选 id。
// 检索服务永不报错，失败时返回空集，由 Chain 走下一个召回源。
type Embedding struct {
	Searcher core.EmbeddingSearcher
	TopK     int // 默认 200
}

func (r *Embedding) Name() string { return "recall.embedding" }

func (r *Embedding) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Searcher == nil {
		return nil, nil
	}
	topK := r.TopK
	if topK <= 0 {
		topK = core.DefaultEmbeddingTopK
	}

	text := ""
	if rctx != nil && rctx.User != nil {
		text = rctx.User.Text
	}
	res := r.Searcher.Search(ctx, text, topK)

	seen := make(map[string]struct{}, len(res.IDs))
	out := make([]*core.Item, 0, len(res.IDs))
	for i, id := range res.IDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		it := core.NewItem(id)
		if d, ok := res.Dist(i); ok {
			it.Features[FeatureEmbeddingDist] = d
		}
		out = append(out, it)
	}
	return out, nil
}
