package als

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// 随机 SPD 矩阵：BᵀB + I
func randomSPD(rng *rand.Rand, n int) *mat.SymDense {
	b := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, rng.NormFloat64())
		}
	}
	var btb mat.Dense
	btb.Mul(b.T(), b)
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := btb.At(i, j)
			if i == j {
				v++
			}
			a.SetSym(i, j, v)
		}
	}
	return a
}

func TestSolversAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 10; trial++ {
		n := 2 + rng.Intn(8)
		a := randomSPD(rng, n)
		b := make([]float64, n)
		for i := range b {
			b[i] = rng.NormFloat64()
		}

		xc, err := CholeskySolver{}.Solve(a, b)
		if err != nil {
			t.Fatalf("cholesky solve: %v", err)
		}
		xg, err := GaussianSolver{}.Solve(a, b)
		if err != nil {
			t.Fatalf("gaussian solve: %v", err)
		}

		for i := range xc {
			if math.Abs(xc[i]-xg[i]) > 1e-8 {
				t.Fatalf("trial %d: 两个求解器结果不一致: x[%d] = %v vs %v", trial, i, xc[i], xg[i])
			}
		}

		// 验证 A·x ≈ b
		x := mat.NewVecDense(n, xc)
		var ax mat.VecDense
		ax.MulVec(a, x)
		for i := 0; i < n; i++ {
			if math.Abs(ax.AtVec(i)-b[i]) > 1e-8 {
				t.Fatalf("trial %d: A·x 与 b 偏差过大: %v vs %v", trial, ax.AtVec(i), b[i])
			}
		}
	}
}

func TestGaussianSolverSingular(t *testing.T) {
	a := mat.NewSymDense(2, []float64{1, 1, 1, 1}) // 秩 1
	if _, err := (GaussianSolver{}).Solve(a, []float64{1, 2}); err == nil {
		t.Error("奇异矩阵应报错")
	}
}

func TestGaussianSolverDimensionMismatch(t *testing.T) {
	a := mat.NewSymDense(3, nil)
	if _, err := (GaussianSolver{}).Solve(a, []float64{1, 2}); err == nil {
		t.Error("维度不匹配应报错")
	}
}
