package core

import "github.com/rushteam/melokit/pkg/utils"

// RecommendContext 承载一次推荐请求的用户/场景信息，贯穿整个 Pipeline 透传。
//
// UserID 为空表示匿名请求（冷启动场景），此时通常由 Mood 驱动召回。
type RecommendContext struct {
	UserID string // 原始用户 ID（训练映射中的 key；空表示匿名）
	Mood   string // 请求指定的 mood（可为空，由上层解析默认值）
	Limit  int    // 期望返回的结果数量上限

	// Labels 是请求级标签，可驱动 Pipeline 行为，也用于 explain / 观测。
	// 例如：cold_start、fallback_reason 等
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 feast 拉到的听歌画像特征）。
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Param 读取请求级参数，缺失时返回 (nil, false)。
func (rctx *RecommendContext) Param(key string) (any, bool) {
	if rctx.Params == nil {
		return nil, false
	}
	v, ok := rctx.Params[key]
	return v, ok
}
