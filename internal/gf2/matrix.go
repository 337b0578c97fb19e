package gf2

import (
	"errors"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ErrSingular is returned when inverting a matrix which has no inverse.
var ErrSingular = errors.New("gf2: matrix is singular")

// Matrix is a dense matrix over GF(2) stored as packed rows.
type Matrix struct {
	rows, cols int
	r          []*bitset.BitSet
}

// NewMatrix returns the rows×cols zero matrix.
func NewMatrix(rows, cols int) Matrix {
	if rows < 0 || cols < 0 {
		panic("gf2: negative matrix dimension")
	}
	m := Matrix{rows: rows, cols: cols, r: make([]*bitset.BitSet, rows)}
	for i := range m.r {
		m.r[i] = bitset.New(uint(cols))
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := range n {
		m.r[i].Set(uint(i))
	}
	return m
}

// MatrixFromRows returns the matrix with the given rows. Every row must have the same length.
func MatrixFromRows(rows [][]uint8) Matrix {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			panic("gf2: ragged matrix rows")
		}
		for j, x := range row {
			if x&1 != 0 {
				m.r[i].Set(uint(j))
			}
		}
	}
	return m
}

// FromLinearMap returns the n×n matrix of the linear map f, whose column j is f(e_j).
func FromLinearMap(n int, f func(Vector) Vector) Matrix {
	m := NewMatrix(n, n)
	for j := range n {
		e := NewVector(n)
		e.b.Set(uint(j))
		col := f(e)
		if col.n != n {
			panic("gf2: linear map changes dimension")
		}
		for i, ok := col.b.NextSet(0); ok; i, ok = col.b.NextSet(i + 1) {
			m.r[i].Set(uint(j))
		}
	}
	return m
}

// Rows returns the number of rows of m.
func (m Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns of m.
func (m Matrix) Cols() int {
	return m.cols
}

// IsSquare reports whether m has as many rows as columns.
func (m Matrix) IsSquare() bool {
	return m.rows == m.cols
}

// Get returns entry (i, j) of m.
func (m Matrix) Get(i, j int) uint8 {
	m.check(i, j)
	if m.r[i].Test(uint(j)) {
		return 1
	}
	return 0
}

// Set sets entry (i, j) of m to the low bit of x.
func (m Matrix) Set(i, j int, x uint8) {
	m.check(i, j)
	m.r[i].SetTo(uint(j), x&1 != 0)
}

// Row returns a copy of row i of m.
func (m Matrix) Row(i int) Vector {
	m.check(i, 0)
	return Vector{n: m.cols, b: m.r[i].Clone()}
}

// Col returns a copy of column j of m.
func (m Matrix) Col(j int) Vector {
	v := NewVector(m.rows)
	for i := range m.rows {
		if m.r[i].Test(uint(j)) {
			v.b.Set(uint(i))
		}
	}
	return v
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	c := Matrix{rows: m.rows, cols: m.cols, r: make([]*bitset.BitSet, m.rows)}
	for i := range m.r {
		c.r[i] = m.r[i].Clone()
	}
	return c
}

// MulVec returns m·v.
func (m Matrix) MulVec(v Vector) Vector {
	if v.n != m.cols {
		panic("gf2: matrix-vector dimension mismatch")
	}
	out := NewVector(m.rows)
	for i, row := range m.r {
		if row.IntersectionCardinality(v.b)&1 != 0 {
			out.b.Set(uint(i))
		}
	}
	return out
}

// Mul returns m·n.
func (m Matrix) Mul(n Matrix) Matrix {
	if m.cols != n.rows {
		panic("gf2: matrix dimension mismatch")
	}
	out := NewMatrix(m.rows, n.cols)
	for i, row := range m.r {
		for k, ok := row.NextSet(0); ok; k, ok = row.NextSet(k + 1) {
			out.r[i].InPlaceSymmetricDifference(n.r[k])
		}
	}
	return out
}

// Add returns m + n.
func (m Matrix) Add(n Matrix) Matrix {
	if m.rows != n.rows || m.cols != n.cols {
		panic("gf2: matrix dimension mismatch")
	}
	out := m.Clone()
	for i := range out.r {
		out.r[i].InPlaceSymmetricDifference(n.r[i])
	}
	return out
}

// Transpose returns the transpose of m.
func (m Matrix) Transpose() Matrix {
	t := NewMatrix(m.cols, m.rows)
	for i, row := range m.r {
		for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
			t.r[j].Set(uint(i))
		}
	}
	return t
}

// Pow returns m^e for a square matrix m.
func (m Matrix) Pow(e int) Matrix {
	if !m.IsSquare() || e < 0 {
		panic("gf2: invalid matrix power")
	}
	r := Identity(m.rows)
	b := m
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			r = r.Mul(b)
		}
		b = b.Mul(b)
	}
	return r
}

// Inverse returns the inverse of m, or ErrSingular.
func (m Matrix) Inverse() (Matrix, error) {
	if !m.IsSquare() {
		return Matrix{}, ErrSingular
	}
	n := m.rows
	a := m.Clone()
	inv := Identity(n)
	for col := range n {
		pivot := -1
		for i := col; i < n; i++ {
			if a.r[i].Test(uint(col)) {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			return Matrix{}, ErrSingular
		}
		a.r[col], a.r[pivot] = a.r[pivot], a.r[col]
		inv.r[col], inv.r[pivot] = inv.r[pivot], inv.r[col]
		for i := range n {
			if i != col && a.r[i].Test(uint(col)) {
				a.r[i].InPlaceSymmetricDifference(a.r[col])
				inv.r[i].InPlaceSymmetricDifference(inv.r[col])
			}
		}
	}
	return inv, nil
}

// Rank returns the rank of m.
func (m Matrix) Rank() int {
	a := m.Clone()
	rank := 0
	for col := 0; col < m.cols && rank < m.rows; col++ {
		pivot := -1
		for i := rank; i < m.rows; i++ {
			if a.r[i].Test(uint(col)) {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			continue
		}
		a.r[rank], a.r[pivot] = a.r[pivot], a.r[rank]
		for i := rank + 1; i < m.rows; i++ {
			if a.r[i].Test(uint(col)) {
				a.r[i].InPlaceSymmetricDifference(a.r[rank])
			}
		}
		rank++
	}
	return rank
}

// Weight returns the number of non-zero entries of m.
func (m Matrix) Weight() int {
	w := 0
	for _, row := range m.r {
		w += int(row.Count())
	}
	return w
}

// IsPermutation reports whether m is square with exactly one non-zero entry in each row and each column.
func (m Matrix) IsPermutation() bool {
	if !m.IsSquare() {
		return false
	}
	seen := bitset.New(uint(m.cols))
	for _, row := range m.r {
		if row.Count() != 1 {
			return false
		}
		j, _ := row.NextSet(0)
		if seen.Test(j) {
			return false
		}
		seen.Set(j)
	}
	return true
}

// Equal reports whether m and n have the same dimensions and entries.
func (m Matrix) Equal(n Matrix) bool {
	if m.rows != n.rows || m.cols != n.cols {
		return false
	}
	for i := range m.r {
		if !(Vector{n: m.cols, b: m.r[i]}).Equal(Vector{n: n.cols, b: n.r[i]}) {
			return false
		}
	}
	return true
}

// BlockDiagonal returns the block-diagonal matrix with the given blocks on its diagonal.
func BlockDiagonal(blocks ...Matrix) Matrix {
	rows, cols := 0, 0
	for _, b := range blocks {
		rows += b.rows
		cols += b.cols
	}
	out := NewMatrix(rows, cols)
	r0, c0 := 0, 0
	for _, b := range blocks {
		out.setBlock(r0, c0, b)
		r0 += b.rows
		c0 += b.cols
	}
	return out
}

// Block assembles a matrix from a row-major grid of equally-sized blocks.
func Block(gridRows, gridCols int, blocks []Matrix) Matrix {
	if len(blocks) != gridRows*gridCols || len(blocks) == 0 {
		panic("gf2: block grid size mismatch")
	}
	br, bc := blocks[0].rows, blocks[0].cols
	out := NewMatrix(gridRows*br, gridCols*bc)
	for k, b := range blocks {
		if b.rows != br || b.cols != bc {
			panic("gf2: blocks of different sizes")
		}
		out.setBlock((k/gridCols)*br, (k%gridCols)*bc, b)
	}
	return out
}

// String returns m as rows of zeros and ones separated by newlines.
func (m Matrix) String() string {
	var sb strings.Builder
	for i, row := range m.r {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(Vector{n: m.cols, b: row}.String())
	}
	return sb.String()
}

func (m Matrix) setBlock(r0, c0 int, b Matrix) {
	for i, row := range b.r {
		for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
			m.r[r0+i].Set(uint(c0) + j)
		}
	}
}

func (m Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic("gf2: index out of range")
	}
}
