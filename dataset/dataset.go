// Package dataset 负责把原始 (用户, 艺人, 播放次数) 交互三元组清洗成
// 可供 ALS 训练的置信度矩阵：去噪、聚合、迭代稀疏过滤、ID 映射、
// 置信度加权、训练/测试划分。
//
// 整个流程对相同输入和相同配置是确定性的；任何阶段把数据清空都会
// 返回 DATA_QUALITY 错误，不产出部分结果。
package dataset

import (
	"regexp"
	"strings"
)

// Interaction 是一条（聚合前或聚合后的）交互记录。
// PlayCount 非正的记录视为无效，在清洗阶段被丢弃。
type Interaction struct {
	UserID    string
	Artist    string
	PlayCount int64
}

// Config 是预处理配置。零值字段使用默认值。
type Config struct {
	// MinUserInteractions 用户最少交互艺人数，低于此阈值的用户被过滤（默认 5）
	MinUserInteractions int

	// MinArtistListeners 艺人最少听众数，低于此阈值的艺人被过滤（默认 3）
	MinArtistListeners int

	// MaxFilterIterations 稀疏过滤的最大迭代轮数（默认 20）。
	// 过滤一侧会拉低另一侧的计数，需要反复过滤直到稳定或达到上限。
	MaxFilterIterations int

	// Alpha 置信度权重系数：confidence = 1 + Alpha * play_count（默认 40）
	Alpha float64

	// TestFraction 每个用户划入测试分区的交互占比（默认 0.2）
	TestFraction float64

	// Seed 划分用的随机种子（默认 42），相同种子产生相同划分
	Seed int64
}

// DefaultConfig 返回默认预处理配置。
func DefaultConfig() Config {
	return Config{
		MinUserInteractions: 5,
		MinArtistListeners:  3,
		MaxFilterIterations: 20,
		Alpha:               40,
		TestFraction:        0.2,
		Seed:                42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinUserInteractions <= 0 {
		c.MinUserInteractions = d.MinUserInteractions
	}
	if c.MinArtistListeners <= 0 {
		c.MinArtistListeners = d.MinArtistListeners
	}
	if c.MaxFilterIterations <= 0 {
		c.MaxFilterIterations = d.MaxFilterIterations
	}
	if c.Alpha <= 0 {
		c.Alpha = d.Alpha
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		c.TestFraction = d.TestFraction
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// Stats 记录预处理各阶段的数据质量统计，供离线报表使用。
type Stats struct {
	RawRows          int `json:"raw_rows"`
	InvalidRows      int `json:"invalid_rows"`
	DuplicatePairs   int `json:"duplicate_pairs"`
	UsersBefore      int `json:"users_before_filter"`
	ArtistsBefore    int `json:"artists_before_filter"`
	UsersAfter       int `json:"users_after_filter"`
	ArtistsAfter     int `json:"artists_after_filter"`
	RowsAfter        int `json:"rows_after_filter"`
	FilterIterations int `json:"filter_iterations"`
	TrainRows        int `json:"train_rows"`
	TestRows         int `json:"test_rows"`

	Sparsity      float64 `json:"sparsity"`
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
}

// 艺人名清洗：保留字母数字、空白、连字符、撇号，其余字符剔除。
var (
	artistStripRe    = regexp.MustCompile(`[^\w\s\-']`)
	artistCollapseRe = regexp.MustCompile(`\s+`)
)

// CleanArtist 规范化艺人名：小写、去首尾空白、剔除杂字符、压缩空白。
// 在线查询艺人时也用同一函数，保证与训练映射的 key 一致。
func CleanArtist(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = artistStripRe.ReplaceAllString(s, "")
	s = artistCollapseRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
