package sparse

import (
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		cells   []Cell
		wantPtr []int
		wantCol []int
		wantVal []float64
	}{
		{
			name: "unsorted input gets sorted per row",
			rows: 3, cols: 4,
			cells: []Cell{
				{Row: 2, Col: 1, Value: 5},
				{Row: 0, Col: 3, Value: 2},
				{Row: 0, Col: 0, Value: 1},
			},
			wantPtr: []int{0, 2, 2, 3},
			wantCol: []int{0, 3, 1},
			wantVal: []float64{1, 2, 5},
		},
		{
			name: "duplicate cells merge by sum",
			rows: 2, cols: 2,
			cells: []Cell{
				{Row: 0, Col: 1, Value: 3},
				{Row: 0, Col: 1, Value: 4},
			},
			wantPtr: []int{0, 1, 1},
			wantCol: []int{1},
			wantVal: []float64{7},
		},
		{
			name: "out of range cells dropped",
			rows: 2, cols: 2,
			cells: []Cell{
				{Row: 5, Col: 0, Value: 1},
				{Row: 0, Col: -1, Value: 1},
				{Row: 1, Col: 1, Value: 9},
			},
			wantPtr: []int{0, 0, 1},
			wantCol: []int{1},
			wantVal: []float64{9},
		},
		{
			name: "empty matrix",
			rows: 2, cols: 3,
			cells:   nil,
			wantPtr: []int{0, 0, 0},
			wantCol: []int{},
			wantVal: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.rows, tt.cols, tt.cells)
			if !reflect.DeepEqual(m.RowPtr, tt.wantPtr) {
				t.Errorf("RowPtr = %v, want %v", m.RowPtr, tt.wantPtr)
			}
			if len(m.ColIdx) != len(tt.wantCol) || (len(tt.wantCol) > 0 && !reflect.DeepEqual(m.ColIdx, tt.wantCol)) {
				t.Errorf("ColIdx = %v, want %v", m.ColIdx, tt.wantCol)
			}
			if len(m.Values) != len(tt.wantVal) || (len(tt.wantVal) > 0 && !reflect.DeepEqual(m.Values, tt.wantVal)) {
				t.Errorf("Values = %v, want %v", m.Values, tt.wantVal)
			}
		})
	}
}

func TestCSRAccessors(t *testing.T) {
	m := New(3, 3, []Cell{
		{Row: 0, Col: 0, Value: 41},
		{Row: 0, Col: 2, Value: 81},
		{Row: 2, Col: 2, Value: 121},
	})

	if got := m.At(0, 2); got != 81 {
		t.Errorf("At(0,2) = %v, want 81", got)
	}
	if got := m.At(1, 1); got != 0 {
		t.Errorf("At(1,1) = %v, want 0", got)
	}
	if !m.Has(2, 2) || m.Has(2, 0) {
		t.Errorf("Has 判断错误")
	}
	if got := m.RowNNZ(0); got != 2 {
		t.Errorf("RowNNZ(0) = %d, want 2", got)
	}
	if got := m.NNZ(); got != 3 {
		t.Errorf("NNZ = %d, want 3", got)
	}

	wantSparsity := 1 - 3.0/9.0
	if got := m.Sparsity(); got != wantSparsity {
		t.Errorf("Sparsity = %v, want %v", got, wantSparsity)
	}

	if got := m.ColSums(); !reflect.DeepEqual(got, []float64{41, 0, 202}) {
		t.Errorf("ColSums = %v", got)
	}
	if got := m.ColCounts(); !reflect.DeepEqual(got, []int{1, 0, 2}) {
		t.Errorf("ColCounts = %v", got)
	}
}

func TestTranspose(t *testing.T) {
	m := New(2, 3, []Cell{
		{Row: 0, Col: 1, Value: 1},
		{Row: 0, Col: 2, Value: 2},
		{Row: 1, Col: 0, Value: 3},
	})
	mt := m.Transpose()

	if mt.Rows() != 3 || mt.Cols() != 2 {
		t.Fatalf("转置维度 = %d×%d, want 3×2", mt.Rows(), mt.Cols())
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if m.At(i, j) != mt.At(j, i) {
				t.Errorf("At(%d,%d)=%v 与转置 At(%d,%d)=%v 不一致", i, j, m.At(i, j), j, i, mt.At(j, i))
			}
		}
	}
}
