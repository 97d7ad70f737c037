// Package als 实现隐式反馈的交替最小二乘（Alternating Least Squares）分解。
//
// 核心思想：把置信度加权的用户-艺人矩阵分解为用户隐向量与艺人隐向量，
// 点积即预测偏好，只用于排序。
//
// 算法流程（每次迭代一个完整 sweep）：
//  1. 固定艺人因子 Y，对每个用户 u 解正规方程
//     (YᵀY + Yᵤᵀ(Cᵤ-I)Yᵤ + λI) xᵤ = Yᵤᵀ Cᵤ pᵤ
//  2. 固定用户因子 X，对每个艺人对称求解
//
// 工程特征：
//   - 终止条件只有固定迭代次数，不做收敛检测（训练时长可预估）
//   - 不落中间 checkpoint，失败整批重跑
//   - 每个 sweep 结束检查 NaN/Inf，数值爆炸立即返回 CONVERGENCE 错误
package als

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pkg/sparse"
)

// Progress 在每次迭代结束后被调用，用于离线任务上报训练进度。
type Progress func(iteration, total int, elapsed time.Duration)

// Config 是训练超参数。零值字段使用默认值。
type Config struct {
	// Factors 隐因子维度 k（默认 100）
	Factors int

	// Iterations 迭代次数，唯一的终止条件（默认 15）
	Iterations int

	// Regularization 正则系数 λ（默认 0.01）
	Regularization float64

	// Workers 行求解的并发数（默认 GOMAXPROCS）
	Workers int

	// Seed 因子初始化种子（默认 42）
	Seed int64

	// Solver 正规方程求解器（默认 CholeskySolver）
	Solver Solver

	// Progress 每次迭代后的进度回调（可选）
	Progress Progress
}

// DefaultConfig 返回默认训练配置。
func DefaultConfig() Config {
	return Config{
		Factors:        100,
		Iterations:     15,
		Regularization: 0.01,
		Seed:           42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Factors <= 0 {
		c.Factors = d.Factors
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.Regularization <= 0 {
		c.Regularization = d.Regularization
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.Solver == nil {
		c.Solver = CholeskySolver{}
	}
	return c
}

// Factors 是训练产物：两个稠密因子矩阵。
// 值可以为负，不做区间裁剪；训练完成后只读。
type Factors struct {
	User [][]float64 // n_users × k
	Item [][]float64 // n_artists × k
	Rank int         // k
}

// Train 在置信度矩阵上跑固定轮数的 ALS。
// 置信度必须非负（预处理保证）；检测到 NaN/Inf 返回 CONVERGENCE 错误。
// ctx 取消会在迭代边界生效，已完成的部分结果被丢弃。
func Train(ctx context.Context, m *sparse.CSR, cfg Config) (*Factors, error) {
	if m == nil || m.Rows() == 0 || m.Cols() == 0 {
		return nil, core.NewDomainError(core.ModuleALS, core.ErrorCodeInvalidInput,
			"als: empty interaction matrix")
	}
	cfg = cfg.withDefaults()

	nUsers, nItems, k := m.Rows(), m.Cols(), cfg.Factors

	// 初始化：小随机值，种子固定保证可复现
	rng := rand.New(rand.NewSource(cfg.Seed))
	userF := randomDense(rng, nUsers, k)
	itemF := randomDense(rng, nItems, k)

	// 物品侧求解需要按列扫描，转置一次换成按行
	mt := m.Transpose()

	start := time.Now()
	for iter := 1; iter <= cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 固定 Y 解 X
		if err := solveSide(ctx, m, userF, itemF, cfg); err != nil {
			return nil, err
		}
		if row, col, ok := findNonFinite(userF); ok {
			return nil, convergenceErr(iter, "user", row, col)
		}

		// 固定 X 解 Y
		if err := solveSide(ctx, mt, itemF, userF, cfg); err != nil {
			return nil, err
		}
		if row, col, ok := findNonFinite(itemF); ok {
			return nil, convergenceErr(iter, "item", row, col)
		}

		if cfg.Progress != nil {
			cfg.Progress(iter, cfg.Iterations, time.Since(start))
		}
	}

	return &Factors{
		User: denseToRows(userF),
		Item: denseToRows(itemF),
		Rank: k,
	}, nil
}

// solveSide 固定 fixed 一侧，对 target 的每一行解正规方程。
// m 的行对应 target 的行，列对应 fixed 的行。
func solveSide(ctx context.Context, m *sparse.CSR, target, fixed *mat.Dense, cfg Config) error {
	k := cfg.Factors

	// 预计算 FᵀF + λI，所有行共享
	var ftf mat.Dense
	ftf.Mul(fixed.T(), fixed)
	base := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			v := ftf.At(i, j)
			if i == j {
				v += cfg.Regularization
			}
			base.SetSym(i, j, v)
		}
	}

	rows := m.Rows()
	eg, egCtx := errgroup.WithContext(ctx)
	chunk := (rows + cfg.Workers - 1) / cfg.Workers
	if chunk < 1 {
		chunk = 1
	}

	for lo := 0; lo < rows; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > rows {
			hi = rows
		}
		eg.Go(func() error {
			a := mat.NewSymDense(k, nil)
			b := make([]float64, k)
			for r := lo; r < hi; r++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				cols, vals := m.Row(r)
				if len(cols) == 0 {
					// 无观测的行因子置零
					zeroRow(target, r, k)
					continue
				}

				a.CopySym(base)
				for i := range b {
					b[i] = 0
				}
				for idx, c := range cols {
					conf := vals[idx]
					fv := fixed.RawRowView(c)
					// a += (conf-1)·f fᵀ；偏好 p=1，b += conf·f
					a.SymRankOne(a, conf-1, mat.NewVecDense(k, fv))
					for i := range b {
						b[i] += conf * fv[i]
					}
				}

				x, err := cfg.Solver.Solve(a, b)
				if err != nil {
					return core.NewDomainError(core.ModuleALS, core.ErrorCodeConvergence,
						fmt.Sprintf("als: row %d solve failed: %v", r, err))
				}
				target.SetRow(r, x)
			}
			return nil
		})
	}
	return eg.Wait()
}

func randomDense(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 0.01 * rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

func zeroRow(d *mat.Dense, r, k int) {
	zero := make([]float64, k)
	d.SetRow(r, zero)
}

func findNonFinite(d *mat.Dense) (row, col int, found bool) {
	rows, cols := d.Dims()
	for i := 0; i < rows; i++ {
		v := d.RawRowView(i)
		for j := 0; j < cols; j++ {
			if math.IsNaN(v[j]) || math.IsInf(v[j], 0) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func convergenceErr(iter int, side string, row, col int) error {
	return core.NewDomainError(core.ModuleALS, core.ErrorCodeConvergence,
		fmt.Sprintf("als: non-finite value in %s factors at iteration %d (row %d, factor %d); retrain with adjusted hyperparameters", side, iter, row, col))
}

func denseToRows(d *mat.Dense) [][]float64 {
	rows, cols := d.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		copy(row, d.RawRowView(i))
		out[i] = row
	}
	return out
}
