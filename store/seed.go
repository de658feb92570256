package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/placerec/core"
)

// Seed 是示例数据文件的结构。
//
//	places:
//	  - placeId: p1
//	    name: Blue Tokai
//	    lat: 28.6139
//	    lon: 77.2090
//	    tags: [cafe, coffee]
//	    avg_rating: 4.5
//	reviews:
//	  - userId: u1
//	    placeId: p1
//	    placeName: Blue Tokai
//	    category: cafe
//	    createdAt: 2026-10-01T10:00:00Z
type Seed struct {
	Places  []*core.Place  `yaml:"places"`
	Reviews []*core.Review `yaml:"reviews"`
}

// LoadSeed 从 YAML 文件读取示例数据并装入新的 MemoryCatalog
func LoadSeed(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed 解析 YAML 示例数据
func ParseSeed(data []byte) (*MemoryCatalog, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	for i, p := range seed.Places {
		if p == nil || p.PlaceID == "" {
			return nil, fmt.Errorf("seed place #%d: placeId required", i)
		}
	}

	catalog := NewMemoryCatalog()
	catalog.AddPlaces(seed.Places...)
	catalog.AddReviews(seed.Reviews...)
	return catalog, nil
}
