// Package anf implements Boolean polynomials in algebraic normal form.
//
// A Poly is an XOR of monomials over the variables of a Ring. Polynomials support addition, multiplication,
// substitution, and evaluation, which is enough to push symbolic inputs through an S-box given by its
// coordinate functions.
package anf

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Ring is a Boolean polynomial ring over named variables. Variable i is x_i in monomial bitsets.
type Ring struct {
	names []string
	index map[string]int
}

// NewRing returns the ring with the given variable names.
func NewRing(names ...string) *Ring {
	r := &Ring{names: append([]string(nil), names...), index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := r.index[n]; dup {
			panic(fmt.Sprintf("anf: duplicate variable %q", n))
		}
		r.index[n] = i
	}
	return r
}

// NewIndexedRing returns the ring with variables prefix0, ..., prefix{n-1}.
func NewIndexedRing(prefix string, n int) *Ring {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return NewRing(names...)
}

// Len returns the number of variables.
func (r *Ring) Len() int {
	return len(r.names)
}

// Name returns the name of variable i.
func (r *Ring) Name(i int) string {
	return r.names[i]
}

// Var returns variable i as a polynomial.
func (r *Ring) Var(i int) Poly {
	if i < 0 || i >= len(r.names) {
		panic("anf: variable out of range")
	}
	m := bitset.New(uint(len(r.names)))
	m.Set(uint(i))
	return r.fromMonomials(m)
}

// Gen returns the variable with the given name.
func (r *Ring) Gen(name string) Poly {
	i, ok := r.index[name]
	if !ok {
		panic(fmt.Sprintf("anf: unknown variable %q", name))
	}
	return r.Var(i)
}

// Vars returns variables [from, to) as polynomials.
func (r *Ring) Vars(from, to int) []Poly {
	vs := make([]Poly, 0, to-from)
	for i := from; i < to; i++ {
		vs = append(vs, r.Var(i))
	}
	return vs
}

// Zero returns the zero polynomial.
func (r *Ring) Zero() Poly {
	return Poly{ring: r, terms: map[string]*bitset.BitSet{}}
}

// One returns the constant polynomial 1.
func (r *Ring) One() Poly {
	return r.fromMonomials(bitset.New(uint(len(r.names))))
}

// Constant returns 0 or 1 depending on the low bit of b.
func (r *Ring) Constant(b uint8) Poly {
	if b&1 == 1 {
		return r.One()
	}
	return r.Zero()
}

func (r *Ring) fromMonomials(ms ...*bitset.BitSet) Poly {
	p := r.Zero()
	for _, m := range ms {
		p.toggle(m)
	}
	return p
}

// Poly is a Boolean polynomial. The zero value is not usable; obtain polynomials from a Ring.
//
// Polys are immutable: every operation returns a new polynomial.
type Poly struct {
	ring  *Ring
	terms map[string]*bitset.BitSet
}

// Ring returns the ring of p.
func (p Poly) Ring() *Ring {
	return p.ring
}

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool {
	return len(p.terms) == 0
}

// IsOne reports whether p is the constant 1.
func (p Poly) IsOne() bool {
	if len(p.terms) != 1 {
		return false
	}
	for _, m := range p.terms {
		return m.None()
	}
	return false
}

// Len returns the number of monomials of p.
func (p Poly) Len() int {
	return len(p.terms)
}

// Degree returns the algebraic degree of p, or -1 for the zero polynomial.
func (p Poly) Degree() int {
	d := -1
	for _, m := range p.terms {
		d = max(d, int(m.Count()))
	}
	return d
}

// Add returns p + q.
func (p Poly) Add(q Poly) Poly {
	p.sameRing(q)
	r := p.clone()
	for _, m := range q.terms {
		r.toggle(m)
	}
	return r
}

// Mul returns p·q.
func (p Poly) Mul(q Poly) Poly {
	p.sameRing(q)
	r := p.ring.Zero()
	for _, a := range p.terms {
		for _, b := range q.terms {
			r.toggle(a.Union(b))
		}
	}
	return r
}

// Eval evaluates p at the point whose coordinate i is the low bit of x[i].
func (p Poly) Eval(x []uint8) uint8 {
	if len(x) != p.ring.Len() {
		panic("anf: wrong number of arguments")
	}
	var acc uint8
	for _, m := range p.terms {
		v := uint8(1)
		for i, ok := m.NextSet(0); ok; i, ok = m.NextSet(i + 1) {
			v &= x[i]
		}
		acc ^= v & 1
	}
	return acc
}

// Substitute replaces every variable i present in subs with subs[i]. All substitutes must belong to the same
// ring, which becomes the ring of the result; unreplaced variables are carried over by name.
func (p Poly) Substitute(subs map[int]Poly) Poly {
	var target *Ring
	for _, s := range subs {
		target = s.ring
		break
	}
	if target == nil {
		return p.clone()
	}

	args := make([]Poly, p.ring.Len())
	for i := range args {
		if s, ok := subs[i]; ok {
			if s.ring != target {
				panic("anf: substitutes from different rings")
			}
			args[i] = s
		} else {
			args[i] = target.Gen(p.ring.Name(i))
		}
	}
	return Eval[Poly](Polys{Ring: target}, p, args)
}

// Equal reports whether p and q have the same monomials. Polynomials over different rings are compared by
// variable name.
func (p Poly) Equal(q Poly) bool {
	if len(p.terms) != len(q.terms) {
		return false
	}
	if p.ring != q.ring {
		return p.String() == q.String()
	}
	for k := range p.terms {
		if _, ok := q.terms[k]; !ok {
			return false
		}
	}
	return true
}

// String formats p the way computer algebra systems print Boolean polynomials in lexicographic order, for
// example "x0*x1 + x2 + 1".
func (p Poly) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	ms := make([]*bitset.BitSet, 0, len(p.terms))
	for _, m := range p.terms {
		ms = append(ms, m)
	}
	slices.SortFunc(ms, func(a, b *bitset.BitSet) int { return -lexCompare(a, b) })

	parts := make([]string, len(ms))
	for k, m := range ms {
		if m.None() {
			parts[k] = "1"
			continue
		}
		var vars []string
		for i, ok := m.NextSet(0); ok; i, ok = m.NextSet(i + 1) {
			vars = append(vars, p.ring.names[i])
		}
		parts[k] = strings.Join(vars, "*")
	}
	return strings.Join(parts, " + ")
}

// lexCompare orders monomials with x0 > x1 > ... > 1.
func lexCompare(a, b *bitset.BitSet) int {
	d := a.SymmetricDifference(b)
	i, ok := d.NextSet(0)
	if !ok {
		return 0
	}
	if a.Test(i) {
		return 1
	}
	return -1
}

func (p Poly) clone() Poly {
	r := Poly{ring: p.ring, terms: make(map[string]*bitset.BitSet, len(p.terms))}
	for k, m := range p.terms {
		r.terms[k] = m
	}
	return r
}

func (p Poly) toggle(m *bitset.BitSet) {
	k := key(m)
	if _, ok := p.terms[k]; ok {
		delete(p.terms, k)
	} else {
		p.terms[k] = m
	}
}

func (p Poly) sameRing(q Poly) {
	if p.ring != q.ring {
		panic("anf: polynomials from different rings")
	}
}

func key(m *bitset.BitSet) string {
	b := make([]byte, 0, 2*m.Count())
	for i, ok := m.NextSet(0); ok; i, ok = m.NextSet(i + 1) {
		b = binary.AppendUvarint(b, uint64(i))
	}
	return string(b)
}
