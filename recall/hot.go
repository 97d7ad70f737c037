package recall

import (
	"context"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/model"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/pkg/utils"
)

// Hot 是热门召回源：按艺人的总置信度质量排榜，与因子模型无关。
// 既是独立的榜单入口，也是冷启动兜底的原料。
//
// 数据来源（优先级从高到低）：
//   - Store + Key：从有序集合读预热好的榜单（例如 redis 的 "charts:artists"）
//   - Model：用训练分区统计的 Popularity 实时排榜
//
// Store 读取失败或为空时静默回落到 Model，榜单永远可用。
type Hot struct {
	Model *model.Model

	// Store 可选的榜单存储（如 RedisStore）
	Store core.KeyValueStore

	// Key 榜单在 Store 中的 key，例如 "charts:artists"
	Key string

	// TopK 返回 TopK 个艺人（默认 20）
	TopK int
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}

	// 优先从 Store 读预热榜单
	if r.Store != nil && r.Key != "" {
		if out := r.fromStore(ctx, topK); len(out) > 0 {
			return out, nil
		}
	}

	return r.fromModel(topK), nil
}

func (r *Hot) fromStore(ctx context.Context, topK int) []*core.Item {
	members, err := r.Store.ZRange(ctx, r.Key, 0, int64(topK-1))
	if err != nil || len(members) == 0 {
		return nil
	}
	out := make([]*core.Item, 0, len(members))
	for _, id := range members {
		it := core.NewItem(id)
		if score, err := r.Store.ZScore(ctx, r.Key, id); err == nil {
			it.Score = score
		}
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out
}

func (r *Hot) fromModel(topK int) []*core.Item {
	m := r.Model
	if m == nil || len(m.Popularity) == 0 {
		return nil
	}

	candidates := make([]scored, 0, len(m.Popularity))
	for i, mass := range m.Popularity {
		candidates = append(candidates, scored{idx: i, score: mass})
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
		if s.idx < len(m.Listeners) {
			it.Meta["listeners"] = m.Listeners[s.idx]
		}
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out
}
