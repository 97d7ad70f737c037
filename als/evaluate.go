package als

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pkg/sparse"
)

// Metrics 是离线评估结果。
type Metrics struct {
	// K 每个用户参与计分的推荐数量
	K int `json:"k"`

	// Users 参与评估的用户数（测试分区非空的用户）
	Users int `json:"users"`

	// Precision precision@K：命中总数 / Σ min(K, 相关艺人数)
	Precision float64 `json:"precision"`

	// MAP map@K：逐用户平均精度的均值
	MAP float64 `json:"map"`
}

// Evaluate 在测试分区上评估因子模型的排序质量。
//
// 对每个测试分区非空的用户：对其所有未收听艺人（train 中无观测）
// 按偏好打分，取 top-K，与测试分区的艺人集合比对命中。
// 训练分区的艺人被排除在候选之外，与在线推荐的口径一致。
// 测试分区为空的用户不参与计分。
func Evaluate(ctx context.Context, f *Factors, train, test *sparse.CSR, k int) (*Metrics, error) {
	if f == nil || train == nil || test == nil {
		return nil, core.NewDomainError(core.ModuleALS, core.ErrorCodeInvalidInput,
			"als: nil factors or matrix")
	}
	if len(f.User) != train.Rows() || len(f.Item) != train.Cols() {
		return nil, core.NewDomainError(core.ModuleALS, core.ErrorCodeInvalidInput,
			fmt.Sprintf("als: factor dimensions (%d users, %d items) do not match train matrix (%d, %d)",
				len(f.User), len(f.Item), train.Rows(), train.Cols()))
	}
	if test.Rows() != train.Rows() || test.Cols() != train.Cols() {
		return nil, core.NewDomainError(core.ModuleALS, core.ErrorCodeInvalidInput,
			fmt.Sprintf("als: test matrix (%d, %d) does not match train matrix (%d, %d)",
				test.Rows(), test.Cols(), train.Rows(), train.Cols()))
	}
	if k <= 0 {
		k = 10
	}

	type partial struct {
		users int
		hits  float64
		prDiv float64
		apSum float64
	}

	nUsers := train.Rows()
	workers := runtime.GOMAXPROCS(0)
	chunk := (nUsers + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	nChunks := (nUsers + chunk - 1) / chunk
	partials := make([]partial, nChunks)

	eg, egCtx := errgroup.WithContext(ctx)
	for c := 0; c < nChunks; c++ {
		c, lo := c, c*chunk
		hi := lo + chunk
		if hi > nUsers {
			hi = nUsers
		}
		eg.Go(func() error {
			p := &partials[c]
			for u := lo; u < hi; u++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				likesCols, _ := test.Row(u)
				if len(likesCols) == 0 {
					continue
				}
				top := topUnlistened(f, train, u, k)

				hits, ap := 0, 0.0
				for rank, item := range top {
					if containsCol(likesCols, item) {
						hits++
						ap += float64(hits) / float64(rank+1)
					}
				}
				denom := len(likesCols)
				if denom > k {
					denom = k
				}
				p.users++
				p.hits += float64(hits)
				p.prDiv += float64(denom)
				p.apSum += ap / float64(denom)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按分块顺序聚合，结果与并发度无关
	m := &Metrics{K: k}
	var hits, prDiv, apSum float64
	for _, p := range partials {
		m.Users += p.users
		hits += p.hits
		prDiv += p.prDiv
		apSum += p.apSum
	}
	if prDiv > 0 {
		m.Precision = hits / prDiv
	}
	if m.Users > 0 {
		m.MAP = apSum / float64(m.Users)
	}
	return m, nil
}

// topUnlistened 返回用户 u 偏好分最高的 k 个未收听艺人下标，
// 分数相同时下标小者在前。
func topUnlistened(f *Factors, train *sparse.CSR, u, k int) []int {
	uf := f.User[u]
	listenedCols, _ := train.Row(u)

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(f.Item)-len(listenedCols))
	for i, itf := range f.Item {
		if containsCol(listenedCols, i) {
			continue
		}
		var dot float64
		for j := range uf {
			dot += uf[j] * itf[j]
		}
		candidates = append(candidates, scored{idx: i, score: dot})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].idx < candidates[b].idx
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.idx
	}
	return out
}

// containsCol 在升序列下标切片中二分查找。
func containsCol(cols []int, c int) bool {
	i := sort.SearchInts(cols, c)
	return i < len(cols) && cols[i] == c
}
