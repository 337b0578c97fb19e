// Package sbox implements vectorial Boolean functions given by lookup tables, with the analysis tools used to
// study S-boxes: inverse and composition, coordinate ANFs, and difference distribution tables.
package sbox

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/anf"
)

var (
	// ErrInvalidTable is returned when a lookup table does not describe a map on n-bit words.
	ErrInvalidTable = errors.New("sbox: invalid lookup table")

	// ErrNotPermutation is returned when inverting a map which is not a bijection.
	ErrNotPermutation = errors.New("sbox: not a permutation")
)

// SBox is a map from n-bit words to n-bit words given by its lookup table.
type SBox struct {
	n     int
	table []int
}

// New returns the S-box with the given lookup table, whose length must be a power of two.
func New(table ...int) (SBox, error) {
	n := 0
	for 1<<n < len(table) {
		n++
	}
	if len(table) == 0 || 1<<n != len(table) {
		return SBox{}, fmt.Errorf("%w: length %d is not a power of two", ErrInvalidTable, len(table))
	}
	for x, y := range table {
		if y < 0 || y >= len(table) {
			return SBox{}, fmt.Errorf("%w: S(%d) = %d", ErrInvalidTable, x, y)
		}
	}
	return SBox{n: n, table: slices.Clone(table)}, nil
}

// MustNew is New for literal tables.
func MustNew(table ...int) SBox {
	s, err := New(table...)
	if err != nil {
		panic(err)
	}
	return s
}

// Bits returns the word size n.
func (s SBox) Bits() int {
	return s.n
}

// Len returns 2^n.
func (s SBox) Len() int {
	return len(s.table)
}

// Apply returns S(x).
func (s SBox) Apply(x int) int {
	return s.table[x]
}

// Table returns a copy of the lookup table.
func (s SBox) Table() []int {
	return slices.Clone(s.table)
}

// IsPermutation reports whether S is a bijection.
func (s SBox) IsPermutation() bool {
	seen := make([]bool, len(s.table))
	for _, y := range s.table {
		if seen[y] {
			return false
		}
		seen[y] = true
	}
	return true
}

// Inverse returns S⁻¹, or ErrNotPermutation.
func (s SBox) Inverse() (SBox, error) {
	if !s.IsPermutation() {
		return SBox{}, ErrNotPermutation
	}
	inv := make([]int, len(s.table))
	for x, y := range s.table {
		inv[y] = x
	}
	return SBox{n: s.n, table: inv}, nil
}

// MustInverse is Inverse for S-boxes known to be bijective.
func (s SBox) MustInverse() SBox {
	inv, err := s.Inverse()
	if err != nil {
		panic(err)
	}
	return inv
}

// Compose returns f∘g, the map x ↦ f(g(x)).
func Compose(f, g SBox, more ...SBox) SBox {
	fs := append([]SBox{f, g}, more...)
	out := slices.Clone(fs[len(fs)-1].table)
	for i := len(fs) - 2; i >= 0; i-- {
		if fs[i].n != fs[i+1].n {
			panic("sbox: composing maps of different sizes")
		}
		for x, y := range out {
			out[x] = fs[i].table[y]
		}
	}
	return SBox{n: f.n, table: out}
}

// XOR returns the map x ↦ f(x) ⊕ g(x).
func XOR(f, g SBox) SBox {
	if f.n != g.n {
		panic("sbox: adding maps of different sizes")
	}
	out := make([]int, len(f.table))
	for x := range out {
		out[x] = f.table[x] ^ g.table[x]
	}
	return SBox{n: f.n, table: out}
}

// Parallel returns the map applying S independently to each of k consecutive n-bit words of a kn-bit input,
// word 0 being the least significant.
func (s SBox) Parallel(k int) SBox {
	if s.n*k > 24 {
		panic("sbox: parallel map too large to tabulate")
	}
	mask := len(s.table) - 1
	out := make([]int, 1<<(s.n*k))
	for x := range out {
		y := 0
		for j := range k {
			y |= s.table[(x>>(s.n*j))&mask] << (s.n * j)
		}
		out[x] = y
	}
	return SBox{n: s.n * k, table: out}
}

// LinearPart returns the map x ↦ S(x) ⊕ S(0), the linear part of S when S is affine.
func (s SBox) LinearPart() SBox {
	out := make([]int, len(s.table))
	for x := range out {
		out[x] = s.table[x] ^ s.table[0]
	}
	return SBox{n: s.n, table: out}
}

// FixedPoints returns the x with S(x) = x in increasing order.
func (s SBox) FixedPoints() []int {
	var fp []int
	for x, y := range s.table {
		if x == y {
			fp = append(fp, x)
		}
	}
	return fp
}

// Count returns the number of inputs mapped to v.
func (s SBox) Count(v int) int {
	c := 0
	for _, y := range s.table {
		if y == v {
			c++
		}
	}
	return c
}

// Equal reports whether s and t have the same lookup table.
func (s SBox) Equal(t SBox) bool {
	return s.n == t.n && slices.Equal(s.table, t.table)
}

// DDTRow returns row a of the difference distribution table: entry b counts the x with S(x) ⊕ S(x ⊕ a) = b.
func (s SBox) DDTRow(a int) []int {
	row := make([]int, len(s.table))
	for x, y := range s.table {
		row[y^s.table[x^a]]++
	}
	return row
}

// DDT returns the difference distribution table of S.
func (s SBox) DDT() [][]int {
	t := make([][]int, len(s.table))
	for a := range t {
		t[a] = s.DDTRow(a)
	}
	return t
}

// DifferentialsWithCount returns the output differences b such that a → b holds for exactly count inputs.
func (s SBox) DifferentialsWithCount(a, count int) []int {
	var bs []int
	for b, c := range s.DDTRow(a) {
		if c == count {
			bs = append(bs, b)
		}
	}
	return bs
}

// ANF returns the coordinate functions of S in the ring x0, ..., x{n-1}: output bit i, as a polynomial of the
// input bits, bit j of the input being x_j.
func (s SBox) ANF() []anf.Poly {
	return s.ANFIn(anf.NewIndexedRing("x", s.n))
}

// ANFIn is ANF over the first n variables of r.
func (s SBox) ANFIn(r *anf.Ring) []anf.Poly {
	ps := make([]anf.Poly, s.n)
	for i := range ps {
		ps[i] = anf.FromTruthTable(r, s.n, func(u int) uint8 {
			return uint8(s.table[u]>>i) & 1
		})
	}
	return ps
}

// String returns the lookup table as a list, in the form used by the verification programs.
func (s SBox) String() string {
	return FormatList(s.table)
}

// FormatList formats integers as a bracketed, comma-separated list.
func FormatList(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
