package core

// Item 是推荐链路中的统一承载结构（RecommendationCandidate）：候选 id、地点记录、距离、分数、标签。
// 只在单次请求内存在，从不持久化。
// Labels 用于解释与观测；Score 用于排序决策；Features 记录各子分数。
type Item struct {
	ID         string
	Place      *Place
	DistanceKm float64
	Score      float64
	Features   map[string]float64
	Labels     map[string]Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
		Labels:   make(map[string]Label),
	}
}

// NewPlaceItem 用已加载的地点记录创建候选
func NewPlaceItem(p *Place) *Item {
	it := NewItem(p.PlaceID)
	it.Place = p
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Label 是推荐链路中的一等公民：可解释、可追踪。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
