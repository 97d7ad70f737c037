package filter

import (
	"context"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/model"
)

// ListenedFilter 过滤用户在训练数据中已收听过的艺人。
// 推荐"已经在听的"没有信息量，默认在个性化召回后启用。
type ListenedFilter struct {
	Model *model.Model

	// UserIndex 目标用户的内部下标；负值表示未知用户，不过滤
	UserIndex int
}

func (f *ListenedFilter) Name() string {
	return "filter.listened"
}

func (f *ListenedFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Model == nil || f.UserIndex < 0 {
		return false, nil
	}

	artistIdx, ok := artistIndex(f.Model, item)
	if !ok {
		return false, nil
	}
	return f.Model.HasListened(f.UserIndex, artistIdx), nil
}

// HistoryFilter 过滤 serving 期间新增、尚未进入模型的收听记录。
// 历史由外层写入 KV 存储的有序集合（member=艺人名, score=时间戳）。
type HistoryFilter struct {
	Store core.KeyValueStore

	// KeyPrefix 历史 key 前缀，实际 key 为 {KeyPrefix}:{UserID}（默认 "history"）
	KeyPrefix string

	// MaxEntries 最多读取的历史条数（默认 500）
	MaxEntries int64
}

func (f *HistoryFilter) Name() string {
	return "filter.history"
}

func (f *HistoryFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Store == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = "history"
	}
	max := f.MaxEntries
	if max <= 0 {
		max = 500
	}

	listened, err := f.Store.ZRange(ctx, prefix+":"+rctx.UserID, 0, max-1)
	if err != nil {
		// 历史读取失败时放行，宁可重复推荐也不丢请求
		return false, nil
	}
	for _, id := range listened {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// artistIndex 取候选的内部下标：优先用召回源写入的 meta，退化为映射查询。
func artistIndex(m *model.Model, item *core.Item) (int, bool) {
	if v, ok := item.Meta["artist_index"]; ok {
		if idx, ok := v.(int); ok {
			return idx, true
		}
	}
	return m.ArtistIndex(item.ID)
}
