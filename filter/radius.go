package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pkg/geo"
)

// Radius 计算候选到请求位置的大圆距离并写入 item.DistanceKm，
// 丢弃距离严格大于半径的候选；恰好在边界上的保留。
// 没有地点记录的候选一律丢弃。
type Radius struct{}

func (f *Radius) Name() string { return "filter.radius" }

func (f *Radius) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item.Place == nil {
		return true, nil
	}

	radius := rctx.RadiusKm
	if radius <= 0 {
		radius = core.DefaultRadiusKm
	}

	item.DistanceKm = geo.DistanceKm(
		geo.Point{Lat: rctx.Lat, Lon: rctx.Lon},
		geo.Point{Lat: item.Place.Lat, Lon: item.Place.Lon},
	)
	return item.DistanceKm > radius, nil
}
