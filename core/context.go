package core

// RecommendContext 承载单次请求的用户/位置/查询信息，贯穿整个 Pipeline 透传。
// 由编排层构建，Node 只读。
type RecommendContext struct {
	UserID string

	Lat      float64
	Lon      float64
	Query    string
	RadiusKm float64
	TopK     int

	// User 是从近期评论构建出的用户画像
	User *UserProfile
}

// Reviews 返回画像中的近期评论（无画像时为空）
func (rctx *RecommendContext) Reviews() []*Review {
	if rctx == nil || rctx.User == nil {
		return nil
	}
	return rctx.User.Reviews
}

// PreferredCategories 返回画像中的偏好类目（无画像时为空）
func (rctx *RecommendContext) PreferredCategories() []string {
	if rctx == nil || rctx.User == nil {
		return nil
	}
	return rctx.User.PreferredCategories
}
