package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pkg/dsl"
)

// Expr 是基于 CEL 表达式的过滤器：表达式为 false 的候选被过滤。
//
//	place.avg_rating == null || place.avg_rating >= 2.0
type Expr struct {
	prg *dsl.Program
}

// NewExpr 编译表达式
func NewExpr(expr string) (*Expr, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Expr{prg: prg}, nil
}

func (f *Expr) Name() string { return "filter.expr" }

func (f *Expr) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.prg.Evaluate(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
