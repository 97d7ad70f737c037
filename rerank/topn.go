package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pipeline"
)

// TopN 是截断节点：按分数降序排序后取前 N 个。
// 分数相同时按艺人下标升序（召回节点写入的 artist_index 标记），
// 没有下标标记的 item 退到 ID 升序。
// 通常作为 Pipeline 的最后一个节点，保证返回数量与顺序确定。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        factorRecall,          // 召回
//	        listenedFilter,        // 过滤
//	        &rerank.TopN{N: 10},   // 截取 Top 10
//	    },
//	}
type TopN struct {
	// N 要保留的数量；N <= 0 时只排序不截断
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		ii, iok := artistIndex(items[i])
		ji, jok := artistIndex(items[j])
		if iok && jok && ii != ji {
			return ii < ji
		}
		return items[i].ID < items[j].ID
	})

	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

func artistIndex(it *core.Item) (int, bool) {
	v, ok := it.Meta["artist_index"]
	if !ok {
		return 0, false
	}
	idx, ok := v.(int)
	return idx, ok
}
