package core

// Mapping 是原始 ID 与稠密内部下标之间的双射映射（用户或艺人各一份）。
//
// 不变量：
//   - 下标从 0 开始连续分配，顺序即加入顺序
//   - 一个训练好的模型只能用自己的 Mapping 查询，跨模型的下标无意义
//   - 训练完成后只读，并发查询无需加锁
type Mapping struct {
	byRaw   map[string]int
	byIndex []string
}

// NewMapping 按给定顺序构建映射。
func NewMapping(ids []string) *Mapping {
	m := &Mapping{
		byRaw:   make(map[string]int, len(ids)),
		byIndex: make([]string, 0, len(ids)),
	}
	for _, id := range ids {
		m.Add(id)
	}
	return m
}

// Add 加入一个原始 ID，重复加入返回已有下标。
func (m *Mapping) Add(raw string) int {
	if idx, ok := m.byRaw[raw]; ok {
		return idx
	}
	idx := len(m.byIndex)
	m.byRaw[raw] = idx
	m.byIndex = append(m.byIndex, raw)
	return idx
}

// Index 查询原始 ID 对应的内部下标。
func (m *Mapping) Index(raw string) (int, bool) {
	idx, ok := m.byRaw[raw]
	return idx, ok
}

// Raw 查询内部下标对应的原始 ID；越界返回 ("", false)。
func (m *Mapping) Raw(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.byIndex) {
		return "", false
	}
	return m.byIndex[idx], true
}

// Len 返回映射规模。
func (m *Mapping) Len() int {
	return len(m.byIndex)
}

// IDs 返回按下标排列的原始 ID 列表（只读视图，调用方不应修改）。
func (m *Mapping) IDs() []string {
	return m.byIndex
}
