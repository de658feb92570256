package core

import "strings"

const (
	// ProfileReviewLimit 画像文本最多使用的近期评论条数
	ProfileReviewLimit = 20

	// profileSeparator 画像文本各片段之间的分隔符
	profileSeparator = " . "

	// defaultProfileText 无任何历史、无查询时的画像文本
	defaultProfileText = "nearby"
)

// UserProfile 是由近期评论构建的用户画像。
//
//	维度                 作用
//	Reviews              评分阶段的用户历史
//	PreferredCategories  类目亲和（Rank）
//	Text                 语义检索（Recall）的输入文本
type UserProfile struct {
	UserID string

	// Reviews 近期评论，按时间降序
	Reviews []*Review

	// PreferredCategories 近期评论中出现过的去重类目（按首次出现顺序，等权）
	PreferredCategories []string

	// Text 语义检索用的画像文本
	Text string
}

// NewUserProfile 根据近期评论（按时间降序）和当前查询构建画像。
//
// 画像文本：当前查询优先，其次是最近 ProfileReviewLimit 条评论的 "地点名 评论"，
// 最后是偏好类目；片段之间用 " . " 连接。全部为空时退化为查询或 "nearby"。
func NewUserProfile(userID string, reviews []*Review, query string) *UserProfile {
	categories := PreferredCategoriesOf(reviews)

	texts := make([]string, 0, ProfileReviewLimit+2)
	if q := strings.TrimSpace(query); q != "" {
		texts = append(texts, q)
	}
	for i, r := range reviews {
		if i >= ProfileReviewLimit {
			break
		}
		if r == nil {
			continue
		}
		if seg := strings.TrimSpace(r.PlaceName + " " + r.Comment); seg != "" {
			texts = append(texts, seg)
		}
	}
	if len(categories) > 0 {
		texts = append(texts, strings.Join(categories, " "))
	}

	text := strings.Join(texts, profileSeparator)
	if text == "" {
		text = defaultProfileText
	}

	return &UserProfile{
		UserID:              userID,
		Reviews:             reviews,
		PreferredCategories: categories,
		Text:                text,
	}
}

// PreferredCategoriesOf 返回评论中的去重非空类目，保持首次出现顺序。
// 类目亲和在整个时间窗口内等权，不做时间衰减。
func PreferredCategoriesOf(reviews []*Review) []string {
	seen := make(map[string]struct{}, len(reviews))
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if r == nil || r.Category == "" {
			continue
		}
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
