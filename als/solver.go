package als

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver 是正规方程求解能力接口：求解 A·x = b，其中 A 是 k×k 的
// 对称正定矩阵（YᵀC_uY + λI），b 是 k 维右端向量。
//
// 把求解抽象成接口后，Trainer 可以在小规模输入上对照参考实现测试，
// 不与具体数值库耦合。
type Solver interface {
	Solve(a *mat.SymDense, b []float64) ([]float64, error)
}

// CholeskySolver 是默认求解器，走 gonum 的 Cholesky 分解。
// 正则项 λI 保证了矩阵正定，分解失败意味着数值已经出问题。
type CholeskySolver struct{}

func (CholeskySolver) Solve(a *mat.SymDense, b []float64) ([]float64, error) {
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, fmt.Errorf("normal equations not positive definite")
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		return nil, fmt.Errorf("cholesky solve: %w", err)
	}
	out := make([]float64, len(b))
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}

// GaussianSolver 是参考实现：带部分主元的高斯消元。
// 只用于测试与极小规模输入，O(k³) 且无数值优化。
type GaussianSolver struct{}

func (GaussianSolver) Solve(a *mat.SymDense, b []float64) ([]float64, error) {
	n := len(b)
	if a.SymmetricDim() != n {
		return nil, fmt.Errorf("dimension mismatch: matrix %d, vector %d", a.SymmetricDim(), n)
	}

	// 拷贝到增广矩阵，避免修改输入
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, n+1)
		for j := 0; j < n; j++ {
			aug[i][j] = a.At(i, j)
		}
		aug[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		// 部分主元
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular matrix at column %d", col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for r := col + 1; r < n; r++ {
			f := aug[r][col] / aug[col][col]
			for c := col; c <= n; c++ {
				aug[r][c] -= f * aug[col][c]
			}
		}
	}

	// 回代
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := aug[i][n]
		for j := i + 1; j < n; j++ {
			sum -= aug[i][j] * x[j]
		}
		x[i] = sum / aug[i][i]
	}
	return x, nil
}
