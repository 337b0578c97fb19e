// Package perm implements permutations of state cells.
//
// A Permutation p is a gather table: applying p to a state x gives y with y[i] = x[p[i]]. This is the way cell
// shuffles are usually tabulated in cipher specifications (AES ShiftRows, Midori ShuffleCell). Tables given the
// other way around, where cell i moves to position p[i], are converted with FromScatter.
package perm

import (
	"errors"
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
)

// ErrNotPermutation is returned when a table does not describe a permutation.
var ErrNotPermutation = errors.New("perm: not a permutation")

// Permutation is a gather table over {0, ..., len-1}.
type Permutation []int

// New validates p and returns it as a Permutation.
func New(p ...int) (Permutation, error) {
	seen := make([]bool, len(p))
	for i, x := range p {
		if x < 0 || x >= len(p) || seen[x] {
			return nil, fmt.Errorf("%w: entry %d = %d", ErrNotPermutation, i, x)
		}
		seen[x] = true
	}
	return append(Permutation(nil), p...), nil
}

// MustNew is New for tables known to be valid.
func MustNew(p ...int) Permutation {
	q, err := New(p...)
	if err != nil {
		panic(err)
	}
	return q
}

// FromScatter returns the permutation which moves cell i to position p[i].
func FromScatter(p ...int) (Permutation, error) {
	q, err := New(p...)
	if err != nil {
		return nil, err
	}
	return q.Inverse(), nil
}

// Identity returns the identity permutation on n cells.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Inverse returns the inverse permutation.
func (p Permutation) Inverse() Permutation {
	q := make(Permutation, len(p))
	for i, x := range p {
		q[x] = i
	}
	return q
}

// Then returns the permutation applying p first and q second.
func (p Permutation) Then(q Permutation) Permutation {
	if len(p) != len(q) {
		panic("perm: length mismatch")
	}
	r := make(Permutation, len(p))
	for i := range r {
		r[i] = p[q[i]]
	}
	return r
}

// Matrix returns the binary matrix moving cells of cellBits bits according to p.
func (p Permutation) Matrix(cellBits int) gf2.Matrix {
	m := gf2.NewMatrix(len(p)*cellBits, len(p)*cellBits)
	for i, x := range p {
		for k := range cellBits {
			m.Set(i*cellBits+k, x*cellBits+k, 1)
		}
	}
	return m
}

// Apply returns the cells of x shuffled by p.
func Apply[T any](p Permutation, x []T) []T {
	if len(x) != len(p) {
		panic("perm: length mismatch")
	}
	y := make([]T, len(x))
	for i, j := range p {
		y[i] = x[j]
	}
	return y
}
