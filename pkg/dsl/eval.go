// Package dsl 提供基于 CEL (Common Expression Language) 的候选过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/placerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("place", cel.DynType),
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，可并发复用。
//
// 可用变量：
//   - place：name / lat / lon / tags / avg_rating（可能为 null）/ n_ratings
//   - item：id / score / distance_km / features
//   - label：召回/排序写入的标签值，例如 label.recall_source
//   - rctx：user_id / lat / lon / query / radius_km / preferred_categories
//
// 示例：
//   - `place.avg_rating == null || place.avg_rating >= 2.0`
//   - `!("closed" in place.tags)`
//   - `item.distance_km <= 1.0 || label.recall_source == "embedding"`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); t != cel.BoolType && t != cel.DynType {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string { return p.expr }

// Evaluate 对单个候选求值
func (p *Program) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 会报错，用 x != null 先判断存在性
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	place := map[string]any{}
	if p := item.Place; p != nil {
		var rating any
		if p.AvgRating != nil {
			rating = *p.AvgRating
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		place = map[string]any{
			"id":         p.PlaceID,
			"name":       p.Name,
			"lat":        p.Lat,
			"lon":        p.Lon,
			"tags":       tags,
			"avg_rating": rating,
			"n_ratings":  p.NumRatings,
		}
	}

	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	features := item.Features
	if features == nil {
		features = map[string]float64{}
	}

	ctx := map[string]any{}
	if rctx != nil {
		ctx = map[string]any{
			"user_id":              rctx.UserID,
			"lat":                  rctx.Lat,
			"lon":                  rctx.Lon,
			"query":                rctx.Query,
			"radius_km":            rctx.RadiusKm,
			"preferred_categories": nonNil(rctx.PreferredCategories()),
		}
	}

	return map[string]any{
		"place": place,
		"item": map[string]any{
			"id":          item.ID,
			"score":       item.Score,
			"distance_km": item.DistanceKm,
			"features":    features,
		},
		"label": labels,
		"rctx":  ctx,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
