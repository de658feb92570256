// Package store 提供 core.Store（推荐结果缓存后端）以及 core.PlaceStore / core.ReviewStore 的实现。
//
// 注意：接口定义在 core 包，此包只包含实现。
//
//	var cache core.Store = NewMemoryStore()
//	var places core.PlaceStore = NewMemoryCatalog()
package store

import "time"

// Clock 返回当前时间，测试中可替换为可控时钟
type Clock func() time.Time
