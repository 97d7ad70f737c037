package rerank

import (
	"context"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/pkg/utils"
)

// Blend 是分数混合节点：把候选现有分数（因子相似度）与全局热度
// 按权重加权求和，产出 mood 策展的最终排序分。
//
// 两路分数先各自做 max 归一化再混合，避免热度质量（动辄上万）
// 淹没余弦相似度（[-1,1]）。权重是可调配置，不是固定规律；
// 给定权重后结果确定。
type Blend struct {
	// SimilarityWeight 相似度权重（默认 0.7）
	SimilarityWeight float64

	// PopularityWeight 热度权重（默认 0.3）
	PopularityWeight float64

	// Popularity 按艺人 ID 查询热度质量；nil 时退化为纯相似度排序
	Popularity func(artistID string) float64
}

func (n *Blend) Name() string {
	return "rerank.blend"
}

func (n *Blend) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Blend) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	ws, wp := n.SimilarityWeight, n.PopularityWeight
	if ws <= 0 && wp <= 0 {
		ws, wp = 0.7, 0.3
	}

	// max 归一化的分母
	var maxSim, maxPop float64
	pops := make([]float64, len(items))
	for i, it := range items {
		if it.Score > maxSim {
			maxSim = it.Score
		}
		if n.Popularity != nil {
			pops[i] = n.Popularity(it.ID)
			if pops[i] > maxPop {
				maxPop = pops[i]
			}
		}
	}

	for i, it := range items {
		sim := 0.0
		if maxSim > 0 {
			sim = it.Score / maxSim
		}
		pop := 0.0
		if maxPop > 0 {
			pop = pops[i] / maxPop
		}
		it.Score = ws*sim + wp*pop
		it.PutLabel("rerank", utils.Label{Value: "blend", Source: "rerank"})
	}
	return items, nil
}
