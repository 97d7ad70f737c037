package recommender

import (
	"context"
	"fmt"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/dataset"
	"github.com/rushteam/melokit/filter"
	"github.com/rushteam/melokit/model"
	"github.com/rushteam/melokit/mood"
	"github.com/rushteam/melokit/pipeline"
	"github.com/rushteam/melokit/recall"
	"github.com/rushteam/melokit/rerank"
)

// RecommendByMood 返回 mood 策展结果：种子艺人经相似扩展、去种子、
// 相似度×热度混合后取 top-n。mood 不在词表中返回 UNKNOWN_MOOD。
//
// 结果保证非空（只要模型里有艺人）：
//   - 种子全部不在训练映射中时，整体退化为热度榜
//   - 扩展结果不足 n 时，用热度榜补齐（跳过种子与已有结果）
func (s *Service) RecommendByMood(ctx context.Context, moodName string, n int) ([]Result, error) {
	m, err := s.handle.Get()
	if err != nil {
		return nil, err
	}
	seeds, err := s.moods.Seeds(moodName)
	if err != nil {
		return nil, err
	}

	n = s.limit(n)
	rctx := &core.RecommendContext{Mood: moodName, Limit: n}

	// 种子与训练映射求交，最多取 SeedFanout 个
	var (
		seedIdx []int
		seedIDs []string
	)
	for _, raw := range seeds {
		cleaned := dataset.CleanArtist(raw)
		if idx, ok := m.ArtistIndex(cleaned); ok {
			seedIdx = append(seedIdx, idx)
			seedIDs = append(seedIDs, cleaned)
			if len(seedIdx) >= s.cfg.SeedFanout {
				break
			}
		}
	}

	if len(seedIdx) == 0 {
		return s.chartsFill(ctx, rctx, m, nil, nil, n)
	}

	sources := make([]recall.Source, len(seedIdx))
	for i, idx := range seedIdx {
		sources[i] = &recall.Similar{Model: m, ArtistIndex: idx, TopK: s.cfg.SimilarPerSeed}
	}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Fanout{
			Sources: sources,
			Timeout: s.cfg.FanoutTimeout,
			Merge:   recall.MergeSum,
		},
		&filter.Node{Filters: []filter.Filter{filter.NewBlacklistFilter(seedIDs)}},
		&rerank.Blend{
			SimilarityWeight: s.cfg.SimilarityWeight,
			PopularityWeight: s.cfg.PopularityWeight,
			Popularity:       popularityOf(m),
		},
		&rerank.TopN{N: n},
	}}

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	results := toResults(items)
	if len(results) < n {
		return s.chartsFill(ctx, rctx, m, results, seedIDs, n)
	}
	return results, nil
}

// chartsFill 用热度榜把 results 补到 n 条，跳过已有结果与种子。
func (s *Service) chartsFill(
	ctx context.Context,
	rctx *core.RecommendContext,
	m *model.Model,
	results []Result,
	seedIDs []string,
	n int,
) ([]Result, error) {
	exclude := make(map[string]struct{}, len(results)+len(seedIDs))
	for _, r := range results {
		exclude[r.Artist] = struct{}{}
	}
	for _, id := range seedIDs {
		exclude[id] = struct{}{}
	}

	hot := &recall.Hot{Model: m, Store: s.store, Key: s.cfg.ChartsKey, TopK: n + len(exclude)}
	items, err := hot.Recall(ctx, rctx)
	if err != nil {
		return results, nil
	}
	for _, it := range items {
		if len(results) >= n {
			break
		}
		if _, dup := exclude[it.ID]; dup {
			continue
		}
		exclude[it.ID] = struct{}{}
		results = append(results, Result{Artist: it.ID, Score: it.Score})
	}
	return results, nil
}

func popularityOf(m *model.Model) func(artistID string) float64 {
	return func(artistID string) float64 {
		idx, ok := m.ArtistIndex(artistID)
		if !ok || idx >= len(m.Popularity) {
			return 0
		}
		return m.Popularity[idx]
	}
}

// RecommendWithFallback 是带冷启动兜底的统一入口。
//
// 已知用户走个性化推荐；UNKNOWN_USER 时按以下顺序确定 mood 并转
// mood 策展：
//  1. 请求显式指定的 mood（不在词表中直接报 UNKNOWN_MOOD）
//  2. Feast 画像中的 favorite_mood（拉取失败或不在词表中则跳过）
//  3. 默认 mood（chill）
func (s *Service) RecommendWithFallback(ctx context.Context, userID, moodName string, n int) (*Response, error) {
	results, err := s.Recommend(ctx, userID, n)
	if err == nil {
		return &Response{Results: results}, nil
	}
	if !core.IsUnknownUser(err) {
		return nil, err
	}

	if moodName != "" && !s.moods.Contains(moodName) {
		return nil, core.NewDomainError(core.ModuleRecommender, core.ErrorCodeUnknownMood,
			fmt.Sprintf("recommender: unknown mood %q", moodName))
	}
	resolved, reason := s.resolveMood(ctx, userID, moodName)

	results, err = s.RecommendByMood(ctx, resolved, n)
	if err != nil {
		return nil, err
	}
	return &Response{
		Results:   results,
		ColdStart: true,
		Mood:      resolved,
		Reason:    reason,
	}, nil
}

func (s *Service) resolveMood(ctx context.Context, userID, moodName string) (resolved, reason string) {
	if moodName != "" && s.moods.Contains(moodName) {
		return moodName, "unknown user, requested mood"
	}
	if s.profiles != nil && userID != "" {
		if p, err := s.profiles.ListenerProfile(ctx, userID); err == nil &&
			p.FavoriteMood != "" && s.moods.Contains(p.FavoriteMood) {
			return p.FavoriteMood, "unknown user, profile mood"
		}
	}
	return string(mood.Default), "unknown user, default mood"
}
