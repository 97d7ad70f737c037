package recall

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/model"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/pkg/utils"
)

// Factor 是基于因子模型的个性化召回源。
//
// 核心思想：用户隐向量与每个艺人隐向量做点积，点积即预测偏好，
// 取 TopK。分数只用于排序，不裁剪到 [0,1]。
//
// 工程特征：
//   - 实时性：好（离线训练，在线点积）
//   - 计算复杂度：O(n_artists × k)
//   - 确定性：分数相同按艺人下标升序
//
// 使用前提：UserIndex 必须来自 Model 自己的映射；未知用户的判定
// 在门面层完成（UNKNOWN_USER），这里不重复校验语义。
type Factor struct {
	Model *model.Model

	// UserIndex 目标用户的内部下标
	UserIndex int

	// TopK 返回 TopK 个艺人（默认 20）
	TopK int

	// ExcludeListened 是否排除用户在训练数据中已收听的艺人
	ExcludeListened bool
}

func (r *Factor) Name() string        { return "recall.factor" }
func (r *Factor) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Factor) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Factor) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	m := r.Model
	if m == nil || r.UserIndex < 0 || r.UserIndex >= len(m.UserFactors) {
		return nil, nil
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}

	uv := m.UserFactors[r.UserIndex]
	candidates := make([]scored, 0, len(m.ItemFactors))
	for i, iv := range m.ItemFactors {
		if r.ExcludeListened && m.HasListened(r.UserIndex, i) {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: floats.Dot(uv, iv)})
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
		it.PutLabel("recall_source", utils.Label{Value: "factor", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
