// Package store 提供 core.Store / core.KeyValueStore 的具体实现。
//
// 推荐服务用它存放三类数据：
//   - 榜单 zset（key "charts"，score 为总播放量）
//   - 用户近期曝光历史 zset（key "history:{user_id}"）
//   - 模型元信息 hash（key "model"，field 为版本/维度等）
//
// 接口定义在 core 包；此包只包含实现。
//
// 示例：
//
//	var kv core.KeyValueStore = NewMemoryStore()
package store
