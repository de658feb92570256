package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Filter 判断单个候选是否应被剔除（true = 剔除）。
// 过滤器可以在判断时补写候选上的派生字段（例如 Radius 写入 DistanceKm），
// 后续阶段依赖这些字段。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
