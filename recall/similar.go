package recall

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/model"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/pkg/utils"
)

// Similar 是艺人相似召回源：对艺人隐向量做余弦相似度，取 TopK。
//
// 细节：
//   - 查询艺人自身显式排除（否则自相似恒为 1 占住第一名）
//   - 两侧向量先归一化再点积；零范数向量的相似度记 0
//   - 分数相同按艺人下标升序，结果确定
type Similar struct {
	Model *model.Model

	// ArtistIndex 查询艺人的内部下标
	ArtistIndex int

	// TopK 返回 TopK 个相似艺人（默认 10）
	TopK int
}

func (r *Similar) Name() string        { return "recall.similar" }
func (r *Similar) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Similar) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Similar) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	m := r.Model
	if m == nil || r.ArtistIndex < 0 || r.ArtistIndex >= len(m.ItemFactors) {
		return nil, nil
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 10
	}

	qv := m.ItemFactors[r.ArtistIndex]
	qnorm := floats.Norm(qv, 2)

	candidates := make([]scored, 0, len(m.ItemFactors))
	for i, iv := range m.ItemFactors {
		if i == r.ArtistIndex {
			continue
		}
		var sim float64
		norm := floats.Norm(iv, 2)
		if qnorm > 0 && norm > 0 {
			sim = floats.Dot(qv, iv) / (qnorm * norm)
		}
		if math.IsNaN(sim) {
			sim = 0
		}
		candidates = append(candidates, scored{idx: i, score: sim})
	}

	top := selectTop(candidates, topK)
	out := make([]*core.Item, 0, len(top))
	for _, s := range top {
		id, ok := m.ArtistID(s.idx)
		if !ok {
			continue
		}
		it := core.NewItem(id)
		it.Score = s.score
		it.Meta["artist_index"] = s.idx
		it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
