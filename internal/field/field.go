// Package field implements arithmetic in the binary fields GF(2^k) and lifts field elements and matrices to
// binary matrices.
package field

import (
	"errors"
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
)

var (
	// ErrReducible is returned when a modulus is not an irreducible polynomial of the requested degree.
	ErrReducible = errors.New("field: modulus is not irreducible")

	// ErrNotInvertible is returned when inverting zero or a singular matrix.
	ErrNotInvertible = errors.New("field: not invertible")

	// ErrElementRange is returned when an integer does not represent an element of the field.
	ErrElementRange = errors.New("field: element out of range")
)

// MaxDegree is the largest supported extension degree.
const MaxDegree = 15

// Element is a field element in polynomial basis: bit i is the coefficient of x^i.
type Element uint16

// Field is GF(2^k) defined by an irreducible modulus of degree k.
type Field struct {
	k       int
	modulus uint32
	log     []int
	exp     []Element
}

//nolint:gochecknoglobals // shared read-only fields
var (
	// GF2 is the prime field GF(2).
	GF2 = MustNew(1, 0b11)

	// GF16 is GF(2^4) defined by x^4 + x + 1, the modulus used by LED and by default for 4-bit cells.
	GF16 = MustNew(4, 0x13)

	// GF256 is GF(2^8) defined by x^8 + x^4 + x^3 + x^2 + 1, the default modulus for 8-bit cells.
	GF256 = MustNew(8, 0x11d)

	// AES is GF(2^8) defined by x^8 + x^4 + x^3 + x + 1.
	AES = MustNew(8, 0x11b)
)

// New returns GF(2^k) defined by modulus, whose bit i is the coefficient of x^i.
func New(k int, modulus uint32) (*Field, error) {
	if k < 1 || k > MaxDegree || modulus>>k != 1 {
		return nil, fmt.Errorf("%w: degree %d, modulus %#x", ErrReducible, k, modulus)
	}
	for d := 1; 2*d <= k; d++ {
		for q := uint32(1) << d; q < uint32(1)<<(d+1); q++ {
			if polyMod(modulus, q) == 0 {
				return nil, fmt.Errorf("%w: %#x is divisible by %#x", ErrReducible, modulus, q)
			}
		}
	}

	f := &Field{k: k, modulus: modulus}
	f.buildTables()
	return f, nil
}

// MustNew is New for moduli known to be irreducible.
func MustNew(k int, modulus uint32) *Field {
	f, err := New(k, modulus)
	if err != nil {
		panic(err)
	}
	return f
}

// Degree returns k.
func (f *Field) Degree() int {
	return f.k
}

// Modulus returns the defining polynomial.
func (f *Field) Modulus() uint32 {
	return f.modulus
}

// Order returns 2^k.
func (f *Field) Order() int {
	return 1 << f.k
}

// Elem returns x as a field element, or ErrElementRange.
func (f *Field) Elem(x int) (Element, error) {
	if x < 0 || x >= f.Order() {
		return 0, fmt.Errorf("%w: %d not in GF(2^%d)", ErrElementRange, x, f.k)
	}
	return Element(x), nil
}

// Add returns a + b.
func (f *Field) Add(a, b Element) Element {
	return a ^ b
}

// Mul returns a·b.
func (f *Field) Mul(a, b Element) Element {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

// Inv returns the multiplicative inverse of a.
func (f *Field) Inv(a Element) (Element, error) {
	if a == 0 {
		return 0, ErrNotInvertible
	}
	n := len(f.exp) / 2
	return f.exp[(n-f.log[a])%n], nil
}

// Companion returns the k×k binary matrix of multiplication by x, acting on column vectors of coefficients.
func (f *Field) Companion() gf2.Matrix {
	r := gf2.NewMatrix(f.k, f.k)
	for j := range f.k {
		col := mulSlow(Element(1)<<j, 2, f.modulus, f.k)
		for i := range f.k {
			r.Set(i, j, uint8(col>>i))
		}
	}
	return r
}

// ElementToBinary returns the k×k binary matrix M_e with M_e·bits(x) = bits(e·x), computed as the sum of the
// powers R^i of the companion matrix R selected by the bits of e.
func (f *Field) ElementToBinary(e Element) gf2.Matrix {
	r := f.Companion()
	t := gf2.Identity(f.k)
	m := gf2.NewMatrix(f.k, f.k)
	for i := range f.k {
		if (e>>i)&1 == 1 {
			m = m.Add(t)
		}
		t = t.Mul(r)
	}
	return m
}

// Bits returns the coordinates of e, least significant first.
func (f *Field) Bits(e Element) gf2.Vector {
	return gf2.VectorFromUint64(uint64(e), f.k)
}

// String returns a description of the field.
func (f *Field) String() string {
	return fmt.Sprintf("GF(2^%d) mod %#x", f.k, f.modulus)
}

func (f *Field) buildTables() {
	n := f.Order() - 1
	f.log = make([]int, f.Order())
	f.exp = make([]Element, 2*n)

	// Find a primitive element by trying candidates in order.
	for g := Element(1); int(g) <= n; g++ {
		x := Element(1)
		period := 0
		for {
			f.exp[period] = x
			f.log[x] = period
			x = mulSlow(x, g, f.modulus, f.k)
			period++
			if x == 1 {
				break
			}
		}
		if period == n {
			break
		}
	}
	for i := n; i < 2*n; i++ {
		f.exp[i] = f.exp[i-n]
	}
}

func mulSlow(a, b Element, modulus uint32, k int) Element {
	var p uint32
	aa, bb := uint32(a), uint32(b)
	for bb != 0 {
		if bb&1 == 1 {
			p ^= aa
		}
		bb >>= 1
		aa <<= 1
		if aa>>k&1 == 1 {
			aa ^= modulus
		}
	}
	return Element(p)
}

func polyMod(a, b uint32) uint32 {
	db := degree(b)
	for da := degree(a); da >= db; da = degree(a) {
		a ^= b << (da - db)
	}
	return a
}

func degree(a uint32) int {
	d := -1
	for a != 0 {
		a >>= 1
		d++
	}
	return d
}
