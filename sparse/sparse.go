// Package sparse provides a map-backed square sparse matrix and a set of
// direct and iterative solvers for the linear systems produced by finite
// element assembly.
package sparse

import (
	"sort"

	jbsparse "github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Nonzero is a single stored entry of a sparse matrix.
type Nonzero struct {
	I, J int
	Val  float64
}

// Matrix is a square matrix that can enumerate the nonzero entries of its rows
// and columns.
type Matrix interface {
	mat.Matrix
	Set(i, j int, v float64)
	// SweepRow returns the nonzero entries of row i ordered by column.
	SweepRow(i int) []Nonzero
	// SweepCol returns the nonzero entries of column j ordered by row.
	SweepCol(j int) []Nonzero
}

// Sparse stores nonzero entries indexed both by row and by column so that
// row and column sweeps are equally cheap.
type Sparse struct {
	// nonzeroCol[row] maps col -> val
	nonzeroCol []map[int]float64
	// nonzeroRow[col] maps row -> val
	nonzeroRow []map[int]float64
	size       int
}

// NewSparse returns an all-zero size x size matrix.
func NewSparse(size int) *Sparse {
	return &Sparse{
		nonzeroCol: make([]map[int]float64, size),
		nonzeroRow: make([]map[int]float64, size),
		size:       size,
	}
}

func (m *Sparse) Dims() (int, int)    { return m.size, m.size }
func (m *Sparse) At(i, j int) float64 { return m.nonzeroCol[i][j] }
func (m *Sparse) T() mat.Matrix       { return mat.Transpose{Matrix: m} }

// Set stores v at (i, j). Storing an exact zero removes the entry.
func (m *Sparse) Set(i, j int, v float64) {
	if v == 0 {
		delete(m.nonzeroCol[i], j)
		delete(m.nonzeroRow[j], i)
		return
	}
	if m.nonzeroCol[i] == nil {
		m.nonzeroCol[i] = make(map[int]float64)
	}
	if m.nonzeroRow[j] == nil {
		m.nonzeroRow[j] = make(map[int]float64)
	}
	m.nonzeroCol[i][j] = v
	m.nonzeroRow[j][i] = v
}

// Add adds v to the entry at (i, j).
func (m *Sparse) Add(i, j int, v float64) { m.Set(i, j, m.At(i, j)+v) }

func (m *Sparse) SweepRow(i int) []Nonzero {
	nonzeros := make([]Nonzero, 0, len(m.nonzeroCol[i]))
	for j, v := range m.nonzeroCol[i] {
		nonzeros = append(nonzeros, Nonzero{I: i, J: j, Val: v})
	}
	sort.Slice(nonzeros, func(a, b int) bool { return nonzeros[a].J < nonzeros[b].J })
	return nonzeros
}

func (m *Sparse) SweepCol(j int) []Nonzero {
	nonzeros := make([]Nonzero, 0, len(m.nonzeroRow[j]))
	for i, v := range m.nonzeroRow[j] {
		nonzeros = append(nonzeros, Nonzero{I: i, J: j, Val: v})
	}
	sort.Slice(nonzeros, func(a, b int) bool { return nonzeros[a].I < nonzeros[b].I })
	return nonzeros
}

// ZeroRow removes every entry of row i.
func (m *Sparse) ZeroRow(i int) {
	for j := range m.nonzeroCol[i] {
		delete(m.nonzeroRow[j], i)
	}
	m.nonzeroCol[i] = nil
}

// ZeroCol removes every entry of column j.
func (m *Sparse) ZeroCol(j int) {
	for i := range m.nonzeroRow[j] {
		delete(m.nonzeroCol[i], j)
	}
	m.nonzeroRow[j] = nil
}

// NNZ returns the number of stored entries.
func (m *Sparse) NNZ() int {
	n := 0
	for _, row := range m.nonzeroCol {
		n += len(row)
	}
	return n
}

func (m *Sparse) Clone() *Sparse {
	clone := NewSparse(m.size)
	Copy(clone, m)
	return clone
}

// Copy overwrites dst with the entries of src. Both must have the same size.
func Copy(dst, src Matrix) {
	size, _ := src.Dims()
	for i := 0; i < size; i++ {
		for _, nonzero := range dst.SweepRow(i) {
			dst.Set(nonzero.I, nonzero.J, 0)
		}
	}
	for i := 0; i < size; i++ {
		for _, nonzero := range src.SweepRow(i) {
			dst.Set(nonzero.I, nonzero.J, nonzero.Val)
		}
	}
}

// Permute stores src.At(i,j) into dst.At(mapping[i], mapping[j]).  dst is
// expected to be empty.
func Permute(dst, src Matrix, mapping []int) {
	size, _ := src.Dims()
	for i := 0; i < size; i++ {
		for _, nonzero := range src.SweepRow(i) {
			dst.Set(mapping[i], mapping[nonzero.J], nonzero.Val)
		}
	}
}

// Mul returns the matrix-vector product A*b.
func Mul(A Matrix, b []float64) []float64 {
	size, _ := A.Dims()
	result := make([]float64, size)
	for i := 0; i < size; i++ {
		tot := 0.0
		for _, nonzero := range A.SweepRow(i) {
			tot += b[nonzero.J] * nonzero.Val
		}
		result[i] = tot
	}
	return result
}

// RowCombination adds mult times row pivrow to row dstrow.
func RowCombination(A Matrix, pivrow, dstrow int, mult float64) {
	for _, nonzero := range A.SweepRow(pivrow) {
		col := nonzero.J
		A.Set(dstrow, col, A.At(dstrow, col)+nonzero.Val*mult)
	}
}

// RowMult scales row by mult.
func RowMult(A Matrix, row int, mult float64) {
	for _, nonzero := range A.SweepRow(row) {
		A.Set(row, nonzero.J, nonzero.Val*mult)
	}
}

// RestrictByPattern is a matrix that silently drops writes to off-diagonal
// positions where Pattern is zero.  Factorizing into a RestrictByPattern
// yields an incomplete (no fill-in) factorization.
type RestrictByPattern struct {
	Matrix
	Pattern mat.Matrix
}

func (r RestrictByPattern) Set(i, j int, v float64) {
	if i != j && r.Pattern.At(i, j) == 0 {
		return
	}
	r.Matrix.Set(i, j, v)
}

// ToCSR converts A into compressed sparse row form.
func ToCSR(A Matrix) *jbsparse.CSR {
	r, c := A.Dims()
	dok := jbsparse.NewDOK(r, c)
	for i := 0; i < r; i++ {
		for _, nonzero := range A.SweepRow(i) {
			dok.Set(nonzero.I, nonzero.J, nonzero.Val)
		}
	}
	return dok.ToCSR()
}

// MulCSR computes dst = A*x for a CSR matrix, allocating dst when it is nil.
func MulCSR(dst []float64, A *jbsparse.CSR, x []float64) []float64 {
	r, _ := A.Dims()
	if dst == nil {
		dst = make([]float64, r)
	}
	for i := range dst {
		dst[i] = 0
	}
	A.DoNonZero(func(i, j int, v float64) {
		dst[i] += v * x[j]
	})
	return dst
}
