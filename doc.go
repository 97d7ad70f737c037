// Package melokit 是一个音乐艺人推荐引擎（Melody Kit）。
//
// 设计要点：
// - 离线训练：隐式反馈 ALS 矩阵分解（dataset 预处理 → als 训练 → model 持久化）
// - 在线服务：不可变模型快照 + 原子热换（model.Handle），请求全程无锁
// - Pipeline-first: 在线链路通过 Node 串联（Recall → Filter → ReRank）
// - 冷启动：mood 策展（种子艺人相似扩展 × 热度混合）兜底未知用户
package melokit

import "github.com/rushteam/melokit/pipeline"

// 轻量 facade：便于用户直接 import "melokit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
