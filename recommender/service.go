// Package recommender 是在线推荐的门面：把召回/过滤/重排节点组装成
// 固定链路，对外暴露四个查询入口与模型管理操作。
//
// 线程模型：每个请求先解析一次模型快照（Handle.Get），之后整条链路
// 都在这个快照上运行；训练侧通过 Swap 原子换入新模型，进行中的请求
// 不受影响。
package recommender

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/feast"
	"github.com/rushteam/melokit/model"
	"github.com/rushteam/melokit/mood"
)

// Config 是门面的全部可调参数，零值可用。
type Config struct {
	// DefaultLimit 未指定 n 时的返回数量（默认 10）
	DefaultLimit int

	// SeedFanout mood 策展使用的种子艺人数量上限（默认 5）
	SeedFanout int

	// SimilarPerSeed 每个种子扩展的相似艺人数量（默认 20）
	SimilarPerSeed int

	// SimilarityWeight / PopularityWeight mood 策展的混合权重（默认 0.7 / 0.3）
	SimilarityWeight float64
	PopularityWeight float64

	// FanoutTimeout 种子扩展中单个召回源的超时（默认 200ms）
	FanoutTimeout time.Duration

	// ChartsKey 榜单在 Store 中的 key（默认 "charts"）
	ChartsKey string

	// HistoryPrefix 曝光历史 zset 的 key 前缀（默认 "history"）
	HistoryPrefix string
}

func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 10
	}
	if c.SeedFanout <= 0 {
		c.SeedFanout = 5
	}
	if c.SimilarPerSeed <= 0 {
		c.SimilarPerSeed = 20
	}
	if c.SimilarityWeight <= 0 && c.PopularityWeight <= 0 {
		c.SimilarityWeight = 0.7
		c.PopularityWeight = 0.3
	}
	if c.FanoutTimeout <= 0 {
		c.FanoutTimeout = 200 * time.Millisecond
	}
	if c.ChartsKey == "" {
		c.ChartsKey = "charts"
	}
	if c.HistoryPrefix == "" {
		c.HistoryPrefix = "history"
	}
	return c
}

// Service 是推荐门面。并发安全；所有依赖在构造时注入。
type Service struct {
	cfg      Config
	handle   *model.Handle
	moods    *mood.Set
	store    core.KeyValueStore
	profiles feast.Client
}

// Option 配置 Service 的可选依赖。
type Option func(*Service)

// WithStore 注入 KeyValueStore（榜单预热、曝光历史）。
func WithStore(kv core.KeyValueStore) Option {
	return func(s *Service) { s.store = kv }
}

// WithProfileClient 注入 Feast 画像客户端（冷启动 mood 提示）。
func WithProfileClient(c feast.Client) Option {
	return func(s *Service) { s.profiles = c }
}

// WithMoods 替换内置 mood 词表。
func WithMoods(set *mood.Set) Option {
	return func(s *Service) { s.moods = set }
}

// New 创建推荐门面。模型通过 LoadModel 或 SwapModel 装入。
func New(cfg Config, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg.withDefaults(),
		handle: model.NewHandle(nil),
		moods:  mood.NewDefaultSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadModel 从磁盘加载模型并原子换入。
func (s *Service) LoadModel(path string) error {
	m, err := model.Load(path)
	if err != nil {
		return err
	}
	s.handle.Swap(m)
	return nil
}

// SwapModel 原子换入新模型，返回旧模型（可能为 nil）。
func (s *Service) SwapModel(m *model.Model) *model.Model {
	return s.handle.Swap(m)
}

// Loaded 报告是否已装入模型。
func (s *Service) Loaded() bool {
	return s.handle.Loaded()
}

// ModelInfo 返回当前模型的元信息；未装入时返回 NOT_FOUND。
func (s *Service) ModelInfo() (model.Metadata, error) {
	m, err := s.handle.Get()
	if err != nil {
		return model.Metadata{}, err
	}
	return m.Meta, nil
}

// Moods 返回可用的 mood 词表（排序）。
func (s *Service) Moods() []mood.Mood {
	return s.moods.Moods()
}

// PublishCharts 把当前模型的热度榜单预热到 Store：
// zset ChartsKey 存 top-n（score 为置信度质量），hash "model" 存元信息。
// 未注入 Store 时返回 NOT_SUPPORTED。
func (s *Service) PublishCharts(ctx context.Context, n int) error {
	if s.store == nil {
		return core.NewDomainError(core.ModuleRecommender, core.ErrorCodeNotSupported,
			"recommender: no store configured")
	}
	m, err := s.handle.Get()
	if err != nil {
		return err
	}
	items, err := s.TopCharts(ctx, n)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := s.store.ZAdd(ctx, s.cfg.ChartsKey, it.Score, it.Artist); err != nil {
			return err
		}
	}

	meta, err := json.Marshal(m.Meta)
	if err != nil {
		return err
	}
	if err := s.store.HSet(ctx, "model", "meta", meta); err != nil {
		return err
	}
	return s.store.HSet(ctx, "model", "version", []byte(m.Meta.Version))
}

// RecordImpressions 记录一次曝光：把曝光的艺人写入用户历史 zset，
// score 为曝光时间戳，后续请求由 HistoryFilter 去重。
// 未注入 Store 时为空操作。
func (s *Service) RecordImpressions(ctx context.Context, userID string, artists []string) error {
	if s.store == nil || userID == "" {
		return nil
	}
	key := s.cfg.HistoryPrefix + ":" + userID
	now := float64(time.Now().UnixMilli())
	for i, a := range artists {
		// 同一批内保持曝光顺序
		if err := s.store.ZAdd(ctx, key, now+float64(i), a); err != nil {
			return err
		}
	}
	return nil
}

// Result 是对外返回的一条推荐。
type Result struct {
	// Artist 规范化后的艺人名（训练映射中的 key）
	Artist string `json:"artist"`

	// Score 排序分。个性化推荐是点积偏好，相似查询是余弦相似度，
	// 榜单是总置信度质量，mood 策展是混合分。只保证同一响应内可比。
	Score float64 `json:"score"`

	// Listeners 听众数（榜单接口返回，其余为 0）
	Listeners int `json:"listeners,omitempty"`
}

// Response 是带兜底说明的推荐响应。
type Response struct {
	Results []Result `json:"results"`

	// ColdStart 是否走了冷启动兜底
	ColdStart bool `json:"cold_start"`

	// Mood 实际生效的 mood（仅冷启动时非空）
	Mood string `json:"mood,omitempty"`

	// Reason 兜底原因说明
	Reason string `json:"reason,omitempty"`
}

func (s *Service) limit(n int) int {
	if n <= 0 {
		return s.cfg.DefaultLimit
	}
	return n
}

func toResults(items []*core.Item) []Result {
	out := make([]Result, 0, len(items))
	for _, it := range items {
		r := Result{Artist: it.ID, Score: it.Score}
		if v, ok := it.Meta["listeners"]; ok {
			switch l := v.(type) {
			case int:
				r.Listeners = l
			case int64:
				r.Listeners = int(l)
			case float64:
				r.Listeners = int(l)
			case string:
				if p, err := strconv.Atoi(l); err == nil {
					r.Listeners = p
				}
			}
		}
		out = append(out, r)
	}
	return out
}
