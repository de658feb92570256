package core

import "context"

// EmbeddingSearcher 是语义检索服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 只是相关性预筛选，不是事实来源：调用方必须有兜底路径
//   - 实现方永远不向上抛错：未配置/出错/超时都返回空结果
type EmbeddingSearcher interface {
	// Search 用文本检索候选地点，返回至多 topK 个 id（按相似度排序）
	Search(ctx context.Context, text string, topK int) EmbeddingResult
}

// EmbeddingResult 语义检索结果。Dists 与 IDs 一一对应（服务可能不返回距离）。
type EmbeddingResult struct {
	IDs   []string  `json:"ids"`
	Dists []float64 `json:"dists"`
}

// Empty 是否为空结果
func (r EmbeddingResult) Empty() bool { return len(r.IDs) == 0 }

// Dist 返回第 i 个结果的距离；服务未返回时 ok=false
func (r EmbeddingResult) Dist(i int) (float64, bool) {
	if i < 0 || i >= len(r.Dists) {
		return 0, false
	}
	return r.Dists[i], true
}
