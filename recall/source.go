package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Source 表示一个可复用的召回源（语义检索/热门/...）。
// 返回的候选可以只有 ID（需要后续 Resolve），也可以已经带上地点记录。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

const (
	// LabelRecallSource 记录候选来自哪个召回源
	LabelRecallSource = "recall_source"

	// FeatureEmbeddingDist 语义检索返回的距离（越小越相似）
	FeatureEmbeddingDist = "embedding_dist"
)
