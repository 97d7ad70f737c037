package filter

import (
	"context"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pkg/dsl"
)

// RuleFilter 是表达式过滤器：表达式求值为 true 的候选被保留。
// 用于配置驱动的策展规则，例如：
//
//	item.score > 0.1
//	label.recall_source != "hot"
//
// 表达式求值失败时保留候选（规则坏了不应清空结果）。
type RuleFilter struct {
	// Expr CEL 表达式；空表达式恒保留
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}

	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, nil
	}
	return !keep, nil
}
