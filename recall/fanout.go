package recall

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pipeline"
)

// 合并策略常量
const (
	MergeFirst = "first" // 按 ID 去重，保留先出现的（默认）
	MergeSum   = "sum"   // 相同 ID 的分数求和（mood 种子扩展用：被多个种子命中的艺人加权）
	MergeMax   = "max"   // 相同 ID 保留最高分
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并合并结果。
// 支持超时、限流、多种合并策略；单个源失败不中断整体。
//
// mood 策展的种子扩展就是一次 Fanout：每个种子艺人一个 Similar 源，
// MergeSum 让被多个种子同时命中的艺人分数累加。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	Merge         string        // 合并策略：first / sum / max
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Recall(ctx, rctx)
}

// Recall 并发调用所有 Source，合并去重后按（分数降序, ID 升序）排序返回。
// 排序保证输出与 goroutine 调度顺序无关，结果确定。
func (n *Fanout) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		batches = make([][]*core.Item, len(n.Sources))
		eg, _   = errgroup.WithContext(ctx)
	)

	// 限流：使用 semaphore 控制并发数
	sem := make(chan struct{}, n.MaxConcurrent)

	for i, src := range n.Sources {
		i, s := i, src
		eg.Go(func() error {
			if n.MaxConcurrent > 0 {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 超时或错误时跳过该源，不中断其他召回源
				return nil
			}

			mu.Lock()
			batches[i] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按 Sources 顺序展平，保证合并的遍历顺序确定
	var all []*core.Item
	for _, batch := range batches {
		all = append(all, batch...)
	}

	merged := n.merge(all)
	sortItems(merged)
	return merged, nil
}

func (n *Fanout) merge(all []*core.Item) []*core.Item {
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))

	for _, it := range all {
		if it == nil {
			continue
		}
		old, ok := seen[it.ID]
		if !ok {
			seen[it.ID] = it
			out = append(out, it)
			continue
		}
		switch n.Merge {
		case MergeSum:
			old.Score += it.Score
		case MergeMax:
			if it.Score > old.Score {
				old.Score = it.Score
			}
		}
		for k, v := range it.Labels {
			old.PutLabel(k, v)
		}
	}
	return out
}
