// Package spn models keyless substitution-permutation networks: a layer of parallel S-boxes followed by a
// linear layer.
//
// Concrete states are gf2.Vector values; S-box j of a state with b-bit cells reads bits b·j to b·j+b−1, bit
// b·j+i being bit i of the cell value. The same layers can be evaluated over any anf.Algebra, for example on
// polynomials carrying key variables, through the Eval functions.
package spn

import (
	"errors"
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/anf"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

var (
	// ErrInvalidConfig is returned when the parts of a cipher do not fit together.
	ErrInvalidConfig = errors.New("spn: invalid configuration")

	// ErrDimensionMismatch is returned when a state does not have the length a layer expects.
	ErrDimensionMismatch = errors.New("spn: dimension mismatch")
)

// SPN is implemented by Cipher and AESLike.
type SPN interface {
	Name() string
	Bits() int
	SBoxLayer(state gf2.Vector) (gf2.Vector, error)
	SBoxLayerInverse(state gf2.Vector) (gf2.Vector, error)
	LinearLayer(state gf2.Vector) (gf2.Vector, error)
	LinearLayerInverse(state gf2.Vector) (gf2.Vector, error)
	Round(state gf2.Vector) (gf2.Vector, error)
	Core() *Cipher
}

// Cipher is one round of an SPN without key addition.
type Cipher struct {
	name      string
	s, sInv   sbox.SBox
	anf       []anf.Poly
	anfInv    []anf.Poly
	l, lInv   *linearlayer.LinearLayer
	nbrSBoxes int
}

// New returns the SPN applying nbrSBoxes copies of s, then l. The S-box must be a permutation and l an
// invertible square layer on nbrSBoxes·s.Bits() bits.
func New(name string, s sbox.SBox, l *linearlayer.LinearLayer, nbrSBoxes int) (*Cipher, error) {
	if nbrSBoxes < 1 {
		return nil, fmt.Errorf("%w: %s: %d S-boxes", ErrInvalidConfig, name, nbrSBoxes)
	}
	sInv, err := s.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	bits := nbrSBoxes * s.Bits()
	if m := l.BinaryMatrix(); m.Rows() != bits || m.Cols() != bits {
		return nil, fmt.Errorf("%w: %s: %d×%d linear layer for a %d-bit state", ErrInvalidConfig, name, m.Rows(), m.Cols(), bits)
	}
	lInv, err := l.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}

	return &Cipher{
		name:      name,
		s:         s,
		sInv:      sInv,
		anf:       s.ANF(),
		anfInv:    sInv.ANF(),
		l:         l,
		lInv:      lInv,
		nbrSBoxes: nbrSBoxes,
	}, nil
}

// Name returns the name of the cipher.
func (c *Cipher) Name() string {
	return c.name
}

// Bits returns the state size in bits.
func (c *Cipher) Bits() int {
	return c.nbrSBoxes * c.s.Bits()
}

// CellBits returns the S-box width.
func (c *Cipher) CellBits() int {
	return c.s.Bits()
}

// NbrSBoxes returns the number of S-boxes per layer.
func (c *Cipher) NbrSBoxes() int {
	return c.nbrSBoxes
}

// SBox returns the S-box.
func (c *Cipher) SBox() sbox.SBox {
	return c.s
}

// SBoxInverse returns the inverse S-box.
func (c *Cipher) SBoxInverse() sbox.SBox {
	return c.sInv
}

// SBoxANF returns the coordinate functions of the S-box, output bit i being SBoxANF()[i].
func (c *Cipher) SBoxANF() []anf.Poly {
	return append([]anf.Poly(nil), c.anf...)
}

// SBoxInverseANF returns the coordinate functions of the inverse S-box.
func (c *Cipher) SBoxInverseANF() []anf.Poly {
	return append([]anf.Poly(nil), c.anfInv...)
}

// L returns the linear layer.
func (c *Cipher) L() *linearlayer.LinearLayer {
	return c.l
}

// LInverse returns the inverse linear layer.
func (c *Cipher) LInverse() *linearlayer.LinearLayer {
	return c.lInv
}

// Core returns c.
func (c *Cipher) Core() *Cipher {
	return c
}

// SBoxLayer applies the S-box to every cell of state.
func (c *Cipher) SBoxLayer(state gf2.Vector) (gf2.Vector, error) {
	if err := c.checkLen(state.Len()); err != nil {
		return gf2.Vector{}, err
	}
	return substitute(c.s, state, c.nbrSBoxes)
}

// PartialSBoxLayer applies the S-box to the first n cells of state, copying the remaining bits. The state may be
// shorter than the cipher state.
func (c *Cipher) PartialSBoxLayer(state gf2.Vector, n int) (gf2.Vector, error) {
	if err := c.checkPartial(state.Len(), n); err != nil {
		return gf2.Vector{}, err
	}
	return substitute(c.s, state, n)
}

// SBoxLayerInverse undoes SBoxLayer.
func (c *Cipher) SBoxLayerInverse(state gf2.Vector) (gf2.Vector, error) {
	if err := c.checkLen(state.Len()); err != nil {
		return gf2.Vector{}, err
	}
	return substitute(c.sInv, state, c.nbrSBoxes)
}

// PartialSBoxLayerInverse applies the inverse S-box to the first n cells of state.
func (c *Cipher) PartialSBoxLayerInverse(state gf2.Vector, n int) (gf2.Vector, error) {
	if err := c.checkPartial(state.Len(), n); err != nil {
		return gf2.Vector{}, err
	}
	return substitute(c.sInv, state, n)
}

// LinearLayer applies the linear layer.
func (c *Cipher) LinearLayer(state gf2.Vector) (gf2.Vector, error) {
	return applyLayer(c.l, state)
}

// LinearLayerInverse undoes LinearLayer.
func (c *Cipher) LinearLayerInverse(state gf2.Vector) (gf2.Vector, error) {
	return applyLayer(c.lInv, state)
}

// Round applies the S-box layer, then the linear layer.
func (c *Cipher) Round(state gf2.Vector) (gf2.Vector, error) {
	y, err := c.SBoxLayer(state)
	if err != nil {
		return gf2.Vector{}, err
	}
	return c.LinearLayer(y)
}

// RoundInverse undoes Round.
func (c *Cipher) RoundInverse(state gf2.Vector) (gf2.Vector, error) {
	y, err := c.LinearLayerInverse(state)
	if err != nil {
		return gf2.Vector{}, err
	}
	return c.SBoxLayerInverse(y)
}

// Inverse returns the SPN with the inverse S-box and the inverse linear layer.
func (c *Cipher) Inverse() *Cipher {
	return &Cipher{
		name:      c.name + " (inverse)",
		s:         c.sInv,
		sInv:      c.s,
		anf:       c.anfInv,
		anfInv:    c.anf,
		l:         c.lInv,
		lInv:      c.l,
		nbrSBoxes: c.nbrSBoxes,
	}
}

func (c *Cipher) String() string {
	return fmt.Sprintf("%s: %d %d-bit S-boxes %v", c.name, c.nbrSBoxes, c.s.Bits(), c.s)
}

func (c *Cipher) checkLen(n int) error {
	if n != c.Bits() {
		return fmt.Errorf("%w: %d bits for a %d-bit state", ErrDimensionMismatch, n, c.Bits())
	}
	return nil
}

// checkPartial accepts states no longer than the cipher state, such as superboxes, and at most NbrSBoxes cells.
func (c *Cipher) checkPartial(bits, n int) error {
	if bits > c.Bits() {
		return fmt.Errorf("%w: %d bits for a %d-bit state", ErrDimensionMismatch, bits, c.Bits())
	}
	if n < 0 || n > c.nbrSBoxes {
		return fmt.Errorf("%w: %d S-boxes out of %d", ErrDimensionMismatch, n, c.nbrSBoxes)
	}
	return nil
}

func substitute(s sbox.SBox, state gf2.Vector, n int) (gf2.Vector, error) {
	b := s.Bits()
	if n < 0 || state.Len() < n*b {
		return gf2.Vector{}, fmt.Errorf("%w: %d S-boxes on %d bits", ErrDimensionMismatch, n, state.Len())
	}
	out := state.Clone()
	for j := range n {
		x := state.Uint64(b*j, b)
		out.SetUint64(b*j, b, uint64(s.Apply(int(x))))
	}
	return out, nil
}

func applyLayer(l *linearlayer.LinearLayer, state gf2.Vector) (gf2.Vector, error) {
	y, err := l.ApplyVector(state)
	if err != nil {
		return gf2.Vector{}, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}
	return y, nil
}

// FromCells returns the state whose cell j, of b bits, holds cells[j].
func FromCells(b int, cells ...uint64) gf2.Vector {
	v := gf2.NewVector(b * len(cells))
	for j, x := range cells {
		v.SetUint64(b*j, b, x)
	}
	return v
}

// Cells splits state into b-bit cells.
func Cells(state gf2.Vector, b int) []uint64 {
	cells := make([]uint64, state.Len()/b)
	for j := range cells {
		cells[j] = state.Uint64(b*j, b)
	}
	return cells
}
