// Package builders 注册可从配置构建的内置 Node。
//
// 需要持有模型快照的节点（recall.factor、recall.similar 等）由
// recommender 门面按请求构建，不在此注册。
package builders

import (
	"fmt"

	"github.com/rushteam/melokit/config"
	"github.com/rushteam/melokit/filter"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/pkg/conv"
	"github.com/rushteam/melokit/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.blend", BuildBlendNode)
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["artists"])
			if ids == nil {
				ids = []string{}
			}
			filters = append(filters, filter.NewBlacklistFilter(ids))

		case "rule":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rule filter: expr not found")
			}
			filters = append(filters, &filter.RuleFilter{Expr: expr})

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.Node{Filters: filters}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 10)
	return &rerank.TopN{N: n}, nil
}

func BuildBlendNode(cfg map[string]interface{}) (pipeline.Node, error) {
	// Popularity 查询函数需持有模型，配置驱动时由调用方注入；
	// 未注入时退化为纯相似度排序
	return &rerank.Blend{
		SimilarityWeight: conv.ConfigGetFloat(cfg, "similarity_weight", 0.7),
		PopularityWeight: conv.ConfigGetFloat(cfg, "popularity_weight", 0.3),
	}, nil
}
