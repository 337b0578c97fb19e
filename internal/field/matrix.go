package field

import (
	"fmt"
	"strings"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
)

// Matrix is a dense matrix over a binary field.
type Matrix struct {
	f          *Field
	rows, cols int
	a          []Element
}

// NewMatrix returns the rows×cols zero matrix over f.
func NewMatrix(f *Field, rows, cols int) Matrix {
	return Matrix{f: f, rows: rows, cols: cols, a: make([]Element, rows*cols)}
}

// MatrixFromInts returns the rows×cols matrix over f with the given row-major entries.
func MatrixFromInts(f *Field, rows, cols int, entries ...int) (Matrix, error) {
	if len(entries) != rows*cols {
		return Matrix{}, fmt.Errorf("field: %d entries for a %d×%d matrix", len(entries), rows, cols)
	}
	m := NewMatrix(f, rows, cols)
	for i, x := range entries {
		e, err := f.Elem(x)
		if err != nil {
			return Matrix{}, err
		}
		m.a[i] = e
	}
	return m, nil
}

// MustMatrix is MatrixFromInts for literal tables.
func MustMatrix(f *Field, rows, cols int, entries ...int) Matrix {
	m, err := MatrixFromInts(f, rows, cols, entries...)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the n×n identity matrix over f.
func Identity(f *Field, n int) Matrix {
	m := NewMatrix(f, n, n)
	for i := range n {
		m.a[i*n+i] = 1
	}
	return m
}

// PermutationMatrix returns the matrix over f gathering cells according to p.
func PermutationMatrix(f *Field, p perm.Permutation) Matrix {
	m := NewMatrix(f, len(p), len(p))
	for i, j := range p {
		m.a[i*len(p)+j] = 1
	}
	return m
}

// FromBinary returns the binary matrix b as a matrix over GF(2).
func FromBinary(b gf2.Matrix) Matrix {
	m := NewMatrix(GF2, b.Rows(), b.Cols())
	for i := range b.Rows() {
		for j := range b.Cols() {
			m.a[i*b.Cols()+j] = Element(b.Get(i, j))
		}
	}
	return m
}

// BlockDiagonal returns the block-diagonal matrix with the given blocks, which must share a field.
func BlockDiagonal(blocks ...Matrix) Matrix {
	if len(blocks) == 0 {
		panic("field: no blocks")
	}
	rows, cols := 0, 0
	for _, b := range blocks {
		if b.f != blocks[0].f {
			panic("field: blocks over different fields")
		}
		rows += b.rows
		cols += b.cols
	}
	m := NewMatrix(blocks[0].f, rows, cols)
	r0, c0 := 0, 0
	for _, b := range blocks {
		for i := range b.rows {
			copy(m.a[(r0+i)*cols+c0:], b.a[i*b.cols:(i+1)*b.cols])
		}
		r0 += b.rows
		c0 += b.cols
	}
	return m
}

// Field returns the field of m.
func (m Matrix) Field() *Field {
	return m.f
}

// Rows returns the number of rows of m.
func (m Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns of m.
func (m Matrix) Cols() int {
	return m.cols
}

// At returns entry (i, j).
func (m Matrix) At(i, j int) Element {
	return m.a[i*m.cols+j]
}

// Set sets entry (i, j) to e.
func (m Matrix) Set(i, j int, e Element) {
	m.a[i*m.cols+j] = e
}

// Row returns a copy of row i.
func (m Matrix) Row(i int) []Element {
	return append([]Element(nil), m.a[i*m.cols:(i+1)*m.cols]...)
}

// MulVec returns m·x.
func (m Matrix) MulVec(x []Element) []Element {
	if len(x) != m.cols {
		panic("field: matrix-vector dimension mismatch")
	}
	y := make([]Element, m.rows)
	for i := range m.rows {
		var acc Element
		for j, e := range m.a[i*m.cols : (i+1)*m.cols] {
			acc ^= m.f.Mul(e, x[j])
		}
		y[i] = acc
	}
	return y
}

// Mul returns m·n.
func (m Matrix) Mul(n Matrix) Matrix {
	if m.cols != n.rows || m.f != n.f {
		panic("field: matrix dimension mismatch")
	}
	out := NewMatrix(m.f, m.rows, n.cols)
	for i := range m.rows {
		for k := range m.cols {
			e := m.a[i*m.cols+k]
			if e == 0 {
				continue
			}
			for j := range n.cols {
				out.a[i*n.cols+j] ^= m.f.Mul(e, n.a[k*n.cols+j])
			}
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m Matrix) Transpose() Matrix {
	t := NewMatrix(m.f, m.cols, m.rows)
	for i := range m.rows {
		for j := range m.cols {
			t.a[j*m.rows+i] = m.a[i*m.cols+j]
		}
	}
	return t
}

// Inverse returns the inverse of m, or ErrNotInvertible.
func (m Matrix) Inverse() (Matrix, error) {
	if m.rows != m.cols {
		return Matrix{}, ErrNotInvertible
	}
	n := m.rows
	a := Matrix{f: m.f, rows: n, cols: n, a: append([]Element(nil), m.a...)}
	inv := Identity(m.f, n)
	for col := range n {
		pivot := -1
		for i := col; i < n; i++ {
			if a.a[i*n+col] != 0 {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			return Matrix{}, ErrNotInvertible
		}
		a.swapRows(col, pivot)
		inv.swapRows(col, pivot)

		s, _ := m.f.Inv(a.a[col*n+col])
		a.scaleRow(col, s)
		inv.scaleRow(col, s)
		for i := range n {
			if c := a.a[i*n+col]; i != col && c != 0 {
				a.addRow(i, col, c)
				inv.addRow(i, col, c)
			}
		}
	}
	return inv, nil
}

// IsPermutation reports whether m is square with exactly one non-zero entry per row and per column, equal to one.
func (m Matrix) IsPermutation() bool {
	if m.rows != m.cols {
		return false
	}
	colSeen := make([]bool, m.cols)
	for i := range m.rows {
		nz := -1
		for j := range m.cols {
			if e := m.a[i*m.cols+j]; e != 0 {
				if nz >= 0 || e != 1 {
					return false
				}
				nz = j
			}
		}
		if nz < 0 || colSeen[nz] {
			return false
		}
		colSeen[nz] = true
	}
	return true
}

// ToBinary lifts m to the binary matrix acting on the concatenated coordinates of its cells, each cell k bits
// wide, by substituting each entry with its k×k multiplication matrix.
func (m Matrix) ToBinary() gf2.Matrix {
	k := m.f.k
	lifts := make(map[Element]gf2.Matrix)
	out := gf2.NewMatrix(m.rows*k, m.cols*k)
	for i := range m.rows {
		for j := range m.cols {
			e := m.a[i*m.cols+j]
			if e == 0 {
				continue
			}
			b, ok := lifts[e]
			if !ok {
				b = m.f.ElementToBinary(e)
				lifts[e] = b
			}
			for r := range k {
				for c := range k {
					if b.Get(r, c) == 1 {
						out.Set(i*k+r, j*k+c, 1)
					}
				}
			}
		}
	}
	return out
}

// Equal reports whether m and n are equal matrices over the same field.
func (m Matrix) Equal(n Matrix) bool {
	if m.f != n.f || m.rows != n.rows || m.cols != n.cols {
		return false
	}
	for i, e := range m.a {
		if n.a[i] != e {
			return false
		}
	}
	return true
}

// String returns m as rows of hexadecimal entries.
func (m Matrix) String() string {
	var sb strings.Builder
	for i := range m.rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteByte('[')
		for j := range m.cols {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%x", m.a[i*m.cols+j])
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

func (m Matrix) swapRows(i, j int) {
	if i == j {
		return
	}
	ri, rj := m.a[i*m.cols:(i+1)*m.cols], m.a[j*m.cols:(j+1)*m.cols]
	for c := range ri {
		ri[c], rj[c] = rj[c], ri[c]
	}
}

func (m Matrix) scaleRow(i int, s Element) {
	for c := range m.cols {
		m.a[i*m.cols+c] = m.f.Mul(m.a[i*m.cols+c], s)
	}
}

// addRow adds c times row j to row i.
func (m Matrix) addRow(i, j int, c Element) {
	for col := range m.cols {
		m.a[i*m.cols+col] ^= m.f.Mul(c, m.a[j*m.cols+col])
	}
}
