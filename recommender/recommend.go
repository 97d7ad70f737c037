package recommender

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/dataset"
	"github.com/rushteam/melokit/filter"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/recall"
	"github.com/rushteam/melokit/rerank"
)

// Recommend 为已知用户返回 top-n 个性化推荐。
// 用户不在训练映射中时返回 UNKNOWN_USER，调用方应转冷启动兜底
// （或直接使用 RecommendWithFallback）。
func (s *Service) Recommend(ctx context.Context, userID string, n int) ([]Result, error) {
	m, err := s.handle.Get()
	if err != nil {
		return nil, err
	}
	uidx, ok := m.UserIndex(userID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleRecommender, core.ErrorCodeUnknownUser,
			fmt.Sprintf("recommender: unknown user %q", userID))
	}

	n = s.limit(n)
	rctx := &core.RecommendContext{UserID: userID, Limit: n}

	// 召回多拿一些，给曝光历史过滤留余量
	var filters []filter.Filter
	if s.store != nil {
		filters = append(filters, &filter.HistoryFilter{
			Store:     s.store,
			KeyPrefix: s.cfg.HistoryPrefix,
		})
	}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Factor{Model: m, UserIndex: uidx, TopK: n * 3, ExcludeListened: true},
		&filter.Node{Filters: filters},
		&rerank.TopN{N: n},
	}}

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	return toResults(items), nil
}

// RecommendRandomUser 随机抽取一个训练映射中的用户并返回其个性化推荐，
// 返回被抽中的用户 ID。用于训练完成后的抽样检查与演示请求。
func (s *Service) RecommendRandomUser(ctx context.Context, n int) (string, []Result, error) {
	m, err := s.handle.Get()
	if err != nil {
		return "", nil, err
	}
	if m.Users.Len() == 0 {
		return "", nil, core.NewDomainError(core.ModuleRecommender, core.ErrorCodeNotFound,
			"recommender: model has no users")
	}
	userID, _ := m.Users.Raw(rand.Intn(m.Users.Len()))
	results, err := s.Recommend(ctx, userID, n)
	if err != nil {
		return userID, nil, err
	}
	return userID, results, nil
}

// SimilarArtists 返回与给定艺人最相似的 top-n 艺人（余弦相似度）。
// 艺人名先经过与训练一致的规范化，再查映射；
// 不在映射中时返回 UNKNOWN_ARTIST。
func (s *Service) SimilarArtists(ctx context.Context, artist string, n int) ([]Result, error) {
	m, err := s.handle.Get()
	if err != nil {
		return nil, err
	}
	cleaned := dataset.CleanArtist(artist)
	aidx, ok := m.ArtistIndex(cleaned)
	if !ok {
		return nil, core.NewDomainError(core.ModuleRecommender, core.ErrorCodeUnknownArtist,
			fmt.Sprintf("recommender: unknown artist %q", artist))
	}

	n = s.limit(n)
	rctx := &core.RecommendContext{Limit: n}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Similar{Model: m, ArtistIndex: aidx, TopK: n},
		&rerank.TopN{N: n},
	}}

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	return toResults(items), nil
}

// TopCharts 返回全局热度榜 top-n：按总置信度质量降序，附带听众数。
// 与因子模型无关，任何请求方都可用。
func (s *Service) TopCharts(ctx context.Context, n int) ([]Result, error) {
	m, err := s.handle.Get()
	if err != nil {
		return nil, err
	}

	n = s.limit(n)
	rctx := &core.RecommendContext{Limit: n}
	hot := &recall.Hot{Model: m, Store: s.store, Key: s.cfg.ChartsKey, TopK: n}
	items, err := hot.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return toResults(items), nil
}
