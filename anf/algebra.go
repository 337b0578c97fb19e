package anf

import (
	"github.com/bits-and-blooms/bitset"
)

// Algebra is a Boolean algebra in which polynomials can be evaluated: concrete bits, or polynomials over some
// ring. Cipher layers written against it run both on concrete states and on symbolic ones.
type Algebra[T any] interface {
	Zero() T
	One() T
	Add(a, b T) T
	Mul(a, b T) T
}

// Bits is the algebra of concrete bits, represented by the low bit of a uint8.
type Bits struct{}

func (Bits) Zero() uint8 { return 0 }
func (Bits) One() uint8 { return 1 }
func (Bits) Add(a, b uint8) uint8 { return (a ^ b) & 1 }
func (Bits) Mul(a, b uint8) uint8 { return a & b & 1 }

// Polys is the algebra of polynomials over Ring.
type Polys struct {
	Ring *Ring
}

func (a Polys) Zero() Poly { return a.Ring.Zero() }
func (a Polys) One() Poly { return a.Ring.One() }
func (Polys) Add(p, q Poly) Poly { return p.Add(q) }
func (Polys) Mul(p, q Poly) Poly { return p.Mul(q) }

// Eval evaluates p in alg, substituting args[i] for variable i.
func Eval[T any](alg Algebra[T], p Poly, args []T) T {
	if len(args) != p.ring.Len() {
		panic("anf: wrong number of arguments")
	}
	acc := alg.Zero()
	for _, m := range p.terms {
		v := alg.One()
		for i, ok := m.NextSet(0); ok; i, ok = m.NextSet(i + 1) {
			v = alg.Mul(v, args[i])
		}
		acc = alg.Add(acc, v)
	}
	return acc
}

// FromTruthTable returns the polynomial over the first n variables of r whose value at the point with
// coordinates x_i = bit i of u is f(u), computed with the binary Möbius transform.
func FromTruthTable(r *Ring, n int, f func(u int) uint8) Poly {
	if n > r.Len() {
		panic("anf: ring has too few variables")
	}
	c := make([]uint8, 1<<n)
	for u := range c {
		c[u] = f(u) & 1
	}
	for i := range n {
		for u := range c {
			if u&(1<<i) != 0 {
				c[u] ^= c[u^(1<<i)]
			}
		}
	}

	p := r.Zero()
	for u, coef := range c {
		if coef == 0 {
			continue
		}
		m := bitset.New(uint(r.Len()))
		for i := range n {
			if u&(1<<i) != 0 {
				m.Set(uint(i))
			}
		}
		p.toggle(m)
	}
	return p
}
