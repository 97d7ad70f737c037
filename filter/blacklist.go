package filter

import (
	"context"

	"github.com/rushteam/melokit/core"
)

// BlacklistFilter 过滤掉名单中的艺人。
// mood 策展用它把种子艺人从扩展结果里剔除（种子是输入，不是推荐）。
type BlacklistFilter struct {
	ids map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(artistIDs []string) *BlacklistFilter {
	ids := make(map[string]struct{}, len(artistIDs))
	for _, id := range artistIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, hit := f.ids[item.ID]
	return hit, nil
}
