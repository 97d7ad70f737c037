package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/melokit/als"
	"github.com/rushteam/melokit/dataset"
	"github.com/rushteam/melokit/recommender"
)

// AppConfig 是训练任务与在线服务共用的应用配置。
// 所有字段零值可用，未出现的字段取各模块默认值。
type AppConfig struct {
	Data     DataConfig     `yaml:"data"`
	Training TrainingConfig `yaml:"training"`
	Model    ModelConfig    `yaml:"model"`
	Serving  ServingConfig  `yaml:"serving"`
}

// DataConfig 对应 dataset.Config。
type DataConfig struct {
	Path                string  `yaml:"path"` // TSV 交互数据文件
	MinUserInteractions int     `yaml:"min_user_interactions"`
	MinArtistListeners  int     `yaml:"min_artist_listeners"`
	Alpha               float64 `yaml:"alpha"`
	TestFraction        float64 `yaml:"test_fraction"`
	Seed                int64   `yaml:"seed"`
}

// TrainingConfig 对应 als.Config。
type TrainingConfig struct {
	Factors        int     `yaml:"factors"`
	Iterations     int     `yaml:"iterations"`
	Regularization float64 `yaml:"regularization"`
	Workers        int     `yaml:"workers"`
	Seed           int64   `yaml:"seed"`
}

// ModelConfig 是模型产物位置。
type ModelConfig struct {
	Path string `yaml:"path"` // 模型 JSON 文件
}

// ServingConfig 是在线服务配置。
type ServingConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	SeedFanout       int     `yaml:"seed_fanout"`
	SimilarPerSeed   int     `yaml:"similar_per_seed"`
	SimilarityWeight float64 `yaml:"similarity_weight"`
	PopularityWeight float64 `yaml:"popularity_weight"`
	FanoutTimeoutMS  int     `yaml:"fanout_timeout_ms"`
	ChartsKey        string  `yaml:"charts_key"`
	HistoryPrefix    string  `yaml:"history_prefix"`

	// MoodConfig mood 词表覆盖文件（可选）
	MoodConfig string `yaml:"mood_config"`

	Redis RedisConfig `yaml:"redis"`
	Feast FeastConfig `yaml:"feast"`
}

// RedisConfig 是可选的 Redis 接入配置，Addr 为空表示不启用。
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// FeastConfig 是可选的 Feast 接入配置，Host 为空表示不启用。
type FeastConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
}

// LoadApp 从 YAML 文件加载应用配置。
func LoadApp(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// DatasetConfig 转换为 dataset.Config。
func (c *AppConfig) DatasetConfig() dataset.Config {
	return dataset.Config{
		MinUserInteractions: c.Data.MinUserInteractions,
		MinArtistListeners:  c.Data.MinArtistListeners,
		Alpha:               c.Data.Alpha,
		TestFraction:        c.Data.TestFraction,
		Seed:                c.Data.Seed,
	}
}

// ALSConfig 转换为 als.Config。
func (c *AppConfig) ALSConfig() als.Config {
	return als.Config{
		Factors:        c.Training.Factors,
		Iterations:     c.Training.Iterations,
		Regularization: c.Training.Regularization,
		Workers:        c.Training.Workers,
		Seed:           c.Training.Seed,
	}
}

// RecommenderConfig 转换为 recommender.Config。
func (c *AppConfig) RecommenderConfig() recommender.Config {
	return recommender.Config{
		DefaultLimit:     c.Serving.DefaultLimit,
		SeedFanout:       c.Serving.SeedFanout,
		SimilarPerSeed:   c.Serving.SimilarPerSeed,
		SimilarityWeight: c.Serving.SimilarityWeight,
		PopularityWeight: c.Serving.PopularityWeight,
		FanoutTimeout:    time.Duration(c.Serving.FanoutTimeoutMS) * time.Millisecond,
		ChartsKey:        c.Serving.ChartsKey,
		HistoryPrefix:    c.Serving.HistoryPrefix,
	}
}
