// Package geo 提供球面距离计算。
package geo

import "math"

// EarthRadiusKm 地球平均半径（km）
const EarthRadiusKm = 6371.0

// Point 是 WGS84 经纬度坐标（角度制）
type Point struct {
	Lat float64
	Lon float64
}

// DistanceKm 用 haversine 公式计算两点间的大圆距离（km）。
// 纯函数：DistanceKm(p, p) == 0，且 DistanceKm(a, b) == DistanceKm(b, a)。
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// 浮点误差可能让 h 略微越界
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}
