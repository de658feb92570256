package recall

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
)

// Resolve 是一个 Recall Node：把只有 ID 的候选补全为地点记录。
//
//   - 已带地点记录的候选原样保留
//   - 候选 ID 按 ChunkSize 分批，批次之间并发查询（MaxConcurrent 限流）
//   - placeId 不保证唯一：同一 ID 命中多条记录时全部保留
//   - 存储中找不到的 ID 直接丢弃
//   - 输出顺序跟随候选顺序（即召回排序）
type Resolve struct {
	Store         core.PlaceStore
	ChunkSize     int // 默认 100
	MaxConcurrent int // 默认 4
}

func (n *Resolve) Name() string        { return "recall.resolve" }
func (n *Resolve) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Resolve) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	seen := make(map[string]struct{}, len(items))
	pending := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil || it.Place != nil {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		pending = append(pending, it.ID)
	}
	if len(pending) == 0 {
		return items, nil
	}

	byID, err := n.fetch(ctx, pending)
	if err != nil {
		return nil, core.StorageFailure("places_by_ids", err)
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.Place != nil {
			out = append(out, it)
			continue
		}
		for _, p := range byID[it.ID] {
			resolved := core.NewPlaceItem(p)
			for k, v := range it.Features {
				resolved.Features[k] = v
			}
			for k, v := range it.Labels {
				resolved.PutLabel(k, v)
			}
			out = append(out, resolved)
		}
	}
	return out, nil
}

func (n *Resolve) fetch(ctx context.Context, ids []string) (map[string][]*core.Place, error) {
	size := n.ChunkSize
	if size <= 0 {
		size = 100
	}
	limit := n.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}

	var (
		mu   sync.Mutex
		byID = make(map[string][]*core.Place, len(ids))
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunk := ids[start:end]
		eg.Go(func() error {
			places, err := n.Store.PlacesByIDs(egCtx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, p := range places {
				if p != nil {
					byID[p.PlaceID] = append(byID[p.PlaceID], p)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return byID, nil
}
