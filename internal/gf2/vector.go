// Package gf2 implements bit-packed vectors and matrices over GF(2).
package gf2

import (
	"math/big"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Vector is a fixed-length vector over GF(2). Bit i is coordinate i.
//
// Vectors share their backing storage when copied by value; use Clone before mutating a vector obtained from
// somewhere else.
type Vector struct {
	n int
	b *bitset.BitSet
}

// NewVector returns the zero vector of length n.
func NewVector(n int) Vector {
	if n < 0 {
		panic("gf2: negative vector length")
	}
	return Vector{n: n, b: bitset.New(uint(n))}
}

// VectorFromBits returns a vector whose coordinates are the given bits (non-zero means one).
func VectorFromBits(bits ...uint8) Vector {
	v := NewVector(len(bits))
	for i, x := range bits {
		if x&1 != 0 {
			v.b.Set(uint(i))
		}
	}
	return v
}

// VectorFromUint64 returns the n-bit vector holding x, least significant bit first.
func VectorFromUint64(x uint64, n int) Vector {
	v := NewVector(n)
	v.SetUint64(0, min(n, 64), x)
	return v
}

// VectorFromBytes returns the n-bit vector holding data, least significant bit of data[0] first.
func VectorFromBytes(data []byte, n int) Vector {
	v := NewVector(n)
	for i := range n {
		if i/8 < len(data) && (data[i/8]>>(i%8))&1 != 0 {
			v.b.Set(uint(i))
		}
	}
	return v
}

// VectorFromBigInt returns the n-bit vector holding the low n bits of x, least significant bit first.
func VectorFromBigInt(x *big.Int, n int) Vector {
	v := NewVector(n)
	for i := range n {
		if x.Bit(i) != 0 {
			v.b.Set(uint(i))
		}
	}
	return v
}

// Len returns the number of coordinates of v.
func (v Vector) Len() int {
	return v.n
}

// Bit returns coordinate i of v.
func (v Vector) Bit(i int) uint8 {
	v.check(i)
	if v.b.Test(uint(i)) {
		return 1
	}
	return 0
}

// Test reports whether coordinate i of v is one.
func (v Vector) Test(i int) bool {
	v.check(i)
	return v.b.Test(uint(i))
}

// Set sets coordinate i of v to the low bit of x.
func (v Vector) Set(i int, x uint8) {
	v.check(i)
	v.b.SetTo(uint(i), x&1 != 0)
}

// Flip adds one to coordinate i of v.
func (v Vector) Flip(i int) {
	v.check(i)
	v.b.Flip(uint(i))
}

// Clone returns a copy of v that does not share storage with it.
func (v Vector) Clone() Vector {
	return Vector{n: v.n, b: v.b.Clone()}
}

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	v.sameLen(w)
	r := v.Clone()
	r.b.InPlaceSymmetricDifference(w.b)
	return r
}

// AddInPlace sets v to v + w.
func (v Vector) AddInPlace(w Vector) {
	v.sameLen(w)
	v.b.InPlaceSymmetricDifference(w.b)
}

// Dot returns the inner product of v and w.
func (v Vector) Dot(w Vector) uint8 {
	v.sameLen(w)
	return uint8(v.b.IntersectionCardinality(w.b) & 1)
}

// Weight returns the Hamming weight of v.
func (v Vector) Weight() int {
	return int(v.b.Count())
}

// IsZero reports whether v is the zero vector.
func (v Vector) IsZero() bool {
	return v.b.None()
}

// Equal reports whether v and w have the same length and coordinates.
func (v Vector) Equal(w Vector) bool {
	if v.n != w.n {
		return false
	}
	for i, ok := v.b.NextSet(0); ok && int(i) < v.n; i, ok = v.b.NextSet(i + 1) {
		if !w.b.Test(i) {
			return false
		}
	}
	return v.b.Count() == w.b.Count()
}

// Slice returns a copy of coordinates [from, to) of v.
func (v Vector) Slice(from, to int) Vector {
	if from < 0 || to > v.n || from > to {
		panic("gf2: slice out of range")
	}
	r := NewVector(to - from)
	for i, ok := v.b.NextSet(uint(from)); ok && int(i) < to; i, ok = v.b.NextSet(i + 1) {
		r.b.Set(i - uint(from))
	}
	return r
}

// SetSlice copies w into coordinates [from, from+w.Len()) of v.
func (v Vector) SetSlice(from int, w Vector) {
	if from < 0 || from+w.n > v.n {
		panic("gf2: slice out of range")
	}
	for i := range w.n {
		v.b.SetTo(uint(from+i), w.b.Test(uint(i)))
	}
}

// Uint64 returns coordinates [from, from+n) of v as an integer, least significant bit first. n must be at most 64.
func (v Vector) Uint64(from, n int) uint64 {
	if n > 64 || from < 0 || from+n > v.n {
		panic("gf2: word out of range")
	}
	var x uint64
	for i := range n {
		if v.b.Test(uint(from + i)) {
			x |= 1 << i
		}
	}
	return x
}

// SetUint64 writes the low n bits of x into coordinates [from, from+n) of v.
func (v Vector) SetUint64(from, n int, x uint64) {
	if n > 64 || from < 0 || from+n > v.n {
		panic("gf2: word out of range")
	}
	for i := range n {
		v.b.SetTo(uint(from+i), (x>>i)&1 != 0)
	}
}

// BigInt returns v as a non-negative integer, coordinate i being bit i.
func (v Vector) BigInt() *big.Int {
	x := new(big.Int)
	for i, ok := v.b.NextSet(0); ok && int(i) < v.n; i, ok = v.b.NextSet(i + 1) {
		x.SetBit(x, int(i), 1)
	}
	return x
}

// Support returns the indices of the non-zero coordinates of v in increasing order.
func (v Vector) Support() []int {
	s := make([]int, 0, v.Weight())
	for i, ok := v.b.NextSet(0); ok && int(i) < v.n; i, ok = v.b.NextSet(i + 1) {
		s = append(s, int(i))
	}
	return s
}

// String returns the coordinates of v as a string of zeros and ones, coordinate 0 first.
func (v Vector) String() string {
	var sb strings.Builder
	sb.Grow(v.n)
	for i := range v.n {
		if v.b.Test(uint(i)) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (v Vector) check(i int) {
	if i < 0 || i >= v.n {
		panic("gf2: index out of range")
	}
}

func (v Vector) sameLen(w Vector) {
	if v.n != w.n {
		panic("gf2: vector length mismatch")
	}
}
