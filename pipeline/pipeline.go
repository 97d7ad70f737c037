package pipeline

import (
	"context"

	"github.com/rushteam/melokit/core"
)

// Pipeline 是 melokit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 一次请求的完整链路通常是 Recall → Filter → ReRank。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if node == nil {
			continue
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
