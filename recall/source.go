package recall

import (
	"context"
	"sort"

	"github.com/rushteam/melokit/core"
)

// Source 表示一个可复用的召回源（因子/相似/热门/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// scored 是排序前的 (艺人下标, 分数) 对。
type scored struct {
	idx   int
	score float64
}

// selectTop 取分数最高的 k 个，平分时下标小者优先（稳定、确定性）。
// k <= 0 或超过候选数时返回全部排序结果。
func selectTop(candidates []scored, k int) []scored {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].idx < candidates[j].idx
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// sortItems 对合并后的结果做确定性排序：分数降序、ID 升序。
func sortItems(items []*core.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}
