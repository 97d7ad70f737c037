// Package model 定义训练产物的装载形态：因子矩阵、ID 映射、热度统计
// 与元信息合成一个不可变的 Model，通过原子可换的 Handle 暴露给在线服务。
package model

import (
	"fmt"
	"time"

	"github.com/rushteam/melokit/als"
	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/dataset"
	"github.com/rushteam/melokit/pkg/sparse"
)

// TrainingParams 记录产出该模型的超参数，只读暴露给监控。
type TrainingParams struct {
	Factors        int     `json:"factors"`
	Iterations     int     `json:"iterations"`
	Regularization float64 `json:"regularization"`
	Alpha          float64 `json:"alpha"`
}

// Metadata 是模型元信息。
type Metadata struct {
	Version   string         `json:"version"`
	NUsers    int            `json:"n_users"`
	NArtists  int            `json:"n_artists"`
	Params    TrainingParams `json:"params"`
	TrainedAt time.Time      `json:"trained_at"`
}

// Model 是一次训练运行的完整产物，构建完成后不可变；
// 所有在线查询都在同一个 Model 快照上进行，可无锁并发访问。
type Model struct {
	Meta Metadata

	// Users / Artists 原始 ID ↔ 稠密下标映射，与因子矩阵同生命周期
	Users   *core.Mapping
	Artists *core.Mapping

	// UserFactors (n_users×k) / ItemFactors (n_artists×k)，值可为负
	UserFactors [][]float64
	ItemFactors [][]float64

	// Popularity 每个艺人的总置信度质量（训练分区），榜单排序依据
	Popularity []float64

	// Listeners 每个艺人的听众数（训练分区）
	Listeners []int

	// Interactions 训练分区的置信度矩阵，用于排除用户已收听的艺人
	Interactions *sparse.CSR
}

// Build 把预处理结果与训练产物组装为一个 Model。
// version 为空时用训练时间生成。
func Build(res *dataset.Result, factors *als.Factors, params TrainingParams, version string) (*Model, error) {
	if res == nil || factors == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"model: nil preprocessing result or factors")
	}
	if len(factors.User) != res.Users.Len() || len(factors.Item) != res.Artists.Len() {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("model: factor dimensions (%d users, %d artists) do not match mappings (%d, %d)",
				len(factors.User), len(factors.Item), res.Users.Len(), res.Artists.Len()))
	}

	trainedAt := time.Now().UTC()
	if version == "" {
		version = trainedAt.Format("20060102-150405")
	}
	params.Factors = factors.Rank

	return &Model{
		Meta: Metadata{
			Version:   version,
			NUsers:    res.Users.Len(),
			NArtists:  res.Artists.Len(),
			Params:    params,
			TrainedAt: trainedAt,
		},
		Users:        res.Users,
		Artists:      res.Artists,
		UserFactors:  factors.User,
		ItemFactors:  factors.Item,
		Popularity:   res.Popularity,
		Listeners:    res.Listeners,
		Interactions: res.Matrix,
	}, nil
}

// UserIndex 查询用户的内部下标。
func (m *Model) UserIndex(rawID string) (int, bool) {
	return m.Users.Index(rawID)
}

// ArtistIndex 查询艺人的内部下标（调用方需先做 dataset.CleanArtist 规范化）。
func (m *Model) ArtistIndex(artist string) (int, bool) {
	return m.Artists.Index(artist)
}

// ArtistID 查询下标对应的艺人名。
func (m *Model) ArtistID(idx int) (string, bool) {
	return m.Artists.Raw(idx)
}

// HasListened 判断用户是否在训练数据中收听过该艺人。
func (m *Model) HasListened(userIdx, artistIdx int) bool {
	if m.Interactions == nil {
		return false
	}
	return m.Interactions.Has(userIdx, artistIdx)
}

// Rank 返回隐因子维度 k。
func (m *Model) Rank() int {
	return m.Meta.Params.Factors
}
