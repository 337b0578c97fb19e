// Package linearlayer implements the linear layers of substitution-permutation networks: matrices over GF(2) or
// GF(2^k) applied to cipher states, with their branch numbers, and the AES-like layers factoring into a cell
// shuffle followed by a column-wise mixing matrix.
package linearlayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
)

var (
	// ErrDimensionMismatch is returned when an input does not have the number of coordinates a layer expects.
	ErrDimensionMismatch = errors.New("linearlayer: dimension mismatch")

	// ErrInvalidLayer is returned when building a layer from inconsistent parts.
	ErrInvalidLayer = errors.New("linearlayer: invalid layer")
)

// Kind is the base ring of a linear layer.
type Kind int

const (
	// KindBinary layers are matrices over GF(2).
	KindBinary Kind = iota

	// KindField layers are matrices over GF(2^k) with k ≥ 2.
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "GF(2)"
	case KindField:
		return "GF(2^k)"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// LinearLayer is an immutable linear map given by a matrix. Field matrices are also kept in their binary form,
// acting on the concatenated bits of their cells.
type LinearLayer struct {
	kind Kind
	m    field.Matrix
	bin  gf2.Matrix

	diff, lin memo
}

// New returns the linear layer with binary matrix m.
func New(m gf2.Matrix) *LinearLayer {
	return &LinearLayer{kind: KindBinary, bin: m}
}

// NewField returns the linear layer with matrix m. Matrices over GF(2) give a binary layer.
func NewField(m field.Matrix) *LinearLayer {
	if m.Field().Degree() == 1 {
		return &LinearLayer{kind: KindBinary, m: m, bin: m.ToBinary()}
	}
	return &LinearLayer{kind: KindField, m: m, bin: m.ToBinary()}
}

// Kind returns the base ring of l.
func (l *LinearLayer) Kind() Kind {
	return l.kind
}

// Field returns the field of the cells l acts on.
func (l *LinearLayer) Field() *field.Field {
	if l.kind == KindBinary {
		return field.GF2
	}
	return l.m.Field()
}

// Rows returns the number of output cells.
func (l *LinearLayer) Rows() int {
	return l.bin.Rows() / l.Field().Degree()
}

// Cols returns the number of input cells.
func (l *LinearLayer) Cols() int {
	return l.bin.Cols() / l.Field().Degree()
}

// Matrix returns the matrix of l over its base ring.
func (l *LinearLayer) Matrix() field.Matrix {
	if l.kind == KindBinary && l.m.Rows() == 0 {
		return field.FromBinary(l.bin)
	}
	return l.m
}

// BinaryMatrix returns the binary form of l.
func (l *LinearLayer) BinaryMatrix() gf2.Matrix {
	return l.bin
}

// ApplyInt applies l to the integer whose bit i is input bit i, and returns the output bits as an integer.
func (l *LinearLayer) ApplyInt(x *big.Int) (*big.Int, error) {
	if x.Sign() < 0 || x.BitLen() > l.bin.Cols() {
		return nil, fmt.Errorf("%w: %d-bit integer for a %d-bit layer", ErrDimensionMismatch, x.BitLen(), l.bin.Cols())
	}
	return l.bin.MulVec(gf2.VectorFromBigInt(x, l.bin.Cols())).BigInt(), nil
}

// ApplyElements applies l to a sequence of cells.
func (l *LinearLayer) ApplyElements(x []field.Element) ([]field.Element, error) {
	if len(x) != l.Cols() {
		return nil, fmt.Errorf("%w: %d cells for %d columns", ErrDimensionMismatch, len(x), l.Cols())
	}
	if l.kind == KindBinary {
		v := gf2.NewVector(len(x))
		for i, e := range x {
			v.Set(i, uint8(e))
		}
		y := l.bin.MulVec(v)
		out := make([]field.Element, y.Len())
		for i := range out {
			out[i] = field.Element(y.Bit(i))
		}
		return out, nil
	}
	return l.m.MulVec(x), nil
}

// ApplyVector applies l to a binary state.
func (l *LinearLayer) ApplyVector(v gf2.Vector) (gf2.Vector, error) {
	if v.Len() != l.bin.Cols() {
		return gf2.Vector{}, fmt.Errorf("%w: %d bits for a %d-bit layer", ErrDimensionMismatch, v.Len(), l.bin.Cols())
	}
	return l.bin.MulVec(v), nil
}

// Inverse returns the inverse layer.
func (l *LinearLayer) Inverse() (*LinearLayer, error) {
	if l.kind == KindBinary {
		inv, err := l.bin.Inverse()
		if err != nil {
			return nil, fmt.Errorf("linearlayer: %w", err)
		}
		return New(inv), nil
	}
	inv, err := l.m.Inverse()
	if err != nil {
		return nil, fmt.Errorf("linearlayer: %w", err)
	}
	return NewField(inv), nil
}

// IsPermutation reports whether the matrix of l is a permutation matrix.
func (l *LinearLayer) IsPermutation() bool {
	if l.kind == KindBinary {
		return l.bin.IsPermutation()
	}
	return l.m.IsPermutation()
}

// XORCount returns the number of XOR gates of a naive implementation of the binary form of l.
func (l *LinearLayer) XORCount() int {
	return l.bin.Weight() - l.bin.Rows()
}

// DifferentialBranchNumber returns the minimum number of active cells over the input and output of l for a
// non-zero input difference. Permutations have branch number 2.
func (l *LinearLayer) DifferentialBranchNumber() int {
	b, _ := l.DifferentialBranchNumberContext(context.Background())
	return b
}

// DifferentialBranchNumberContext is DifferentialBranchNumber with cancellation.
func (l *LinearLayer) DifferentialBranchNumberContext(ctx context.Context) (int, error) {
	return l.diff.get(ctx, func(ctx context.Context) (int, error) {
		if l.IsPermutation() {
			return 2, nil
		}
		return l.branchNumber(ctx, false)
	})
}

// LinearBranchNumber is the branch number of the transposed matrix, which bounds linear trails.
func (l *LinearLayer) LinearBranchNumber() int {
	b, _ := l.LinearBranchNumberContext(context.Background())
	return b
}

// LinearBranchNumberContext is LinearBranchNumber with cancellation.
func (l *LinearLayer) LinearBranchNumberContext(ctx context.Context) (int, error) {
	return l.lin.get(ctx, func(ctx context.Context) (int, error) {
		if l.IsPermutation() {
			return 2, nil
		}
		return l.branchNumber(ctx, true)
	})
}

func (l *LinearLayer) branchNumber(ctx context.Context, transpose bool) (int, error) {
	if l.kind == KindBinary {
		m := l.bin
		if transpose {
			m = m.Transpose()
		}
		return BinaryBranchNumber(ctx, m)
	}
	m := l.m
	if transpose {
		m = m.Transpose()
	}
	return BranchNumber(ctx, m)
}

func (l *LinearLayer) String() string {
	m := l.Matrix()
	return fmt.Sprintf("LinearLayer of dimension %d x %d over %v represented as\n%v", m.Rows(), m.Cols(), l.Field(), m)
}
