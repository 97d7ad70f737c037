package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pkg/sparse"
)

// persisted 是落盘结构：只承诺逻辑字段能 round-trip，
// 文件布局本身不是对外契约。
type persisted struct {
	Meta         Metadata    `json:"meta"`
	UserIDs      []string    `json:"user_ids"`
	ArtistIDs    []string    `json:"artist_ids"`
	UserFactors  [][]float64 `json:"user_factors"`
	ItemFactors  [][]float64 `json:"item_factors"`
	Popularity   []float64   `json:"popularity"`
	Listeners    []int       `json:"listeners"`
	Interactions *sparse.CSR `json:"interactions"`
}

// Save 持久化模型：先写同目录临时文件，再原子 rename 发布。
// 失败的写入不会破坏路径上已有的上一个好模型。
func (m *Model) Save(path string) error {
	p := persisted{
		Meta:         m.Meta,
		UserIDs:      m.Users.IDs(),
		ArtistIDs:    m.Artists.IDs(),
		UserFactors:  m.UserFactors,
		ItemFactors:  m.ItemFactors,
		Popularity:   m.Popularity,
		Listeners:    m.Listeners,
		Interactions: m.Interactions,
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("model: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("model: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("model: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("model: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("model: publish: %w", err)
	}
	return nil
}

// Load 从磁盘恢复模型。文件缺失或字段不一致返回错误，不产出半成品。
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound,
				fmt.Sprintf("model: %s not found", path))
		}
		return nil, fmt.Errorf("model: read: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("model: unmarshal: %w", err)
	}

	if len(p.UserFactors) != len(p.UserIDs) || len(p.ItemFactors) != len(p.ArtistIDs) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"model: persisted factor dimensions do not match mappings")
	}

	return &Model{
		Meta:         p.Meta,
		Users:        core.NewMapping(p.UserIDs),
		Artists:      core.NewMapping(p.ArtistIDs),
		UserFactors:  p.UserFactors,
		ItemFactors:  p.ItemFactors,
		Popularity:   p.Popularity,
		Listeners:    p.Listeners,
		Interactions: p.Interactions,
	}, nil
}
