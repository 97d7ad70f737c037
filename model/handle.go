package model

import (
	"sync/atomic"

	"github.com/rushteam/melokit/core"
)

// Handle 是在线服务持有模型的唯一入口：内部只有一个可原子替换的指针。
//
// 状态机：未加载 → 已加载（装载方调用 Swap 一次）→ 热更新（再次 Swap）。
// 任何在途请求都只会看到某个完整的 Model 快照，不会看到半新半旧的
// 因子矩阵组合；旧模型在最后一个引用释放后由 GC 回收。
type Handle struct {
	p atomic.Pointer[Model]
}

// NewHandle 创建一个 Handle；m 可以为 nil（"模型未加载"状态）。
func NewHandle(m *Model) *Handle {
	h := &Handle{}
	if m != nil {
		h.p.Store(m)
	}
	return h
}

// Get 返回当前模型快照；尚未加载时返回 NOT_FOUND 错误。
// 调用方应在一次请求开始时取一次快照，整个请求过程复用同一个指针。
func (h *Handle) Get() (*Model, error) {
	m := h.p.Load()
	if m == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound,
			"model: not loaded")
	}
	return m, nil
}

// Swap 原子地安装新模型，返回被替换的旧模型（可能为 nil）。
func (h *Handle) Swap(m *Model) *Model {
	return h.p.Swap(m)
}

// Loaded 报告是否已有模型加载。
func (h *Handle) Loaded() bool {
	return h.p.Load() != nil
}
