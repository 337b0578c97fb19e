package linearlayer

import (
	"context"
	"fmt"
	"slices"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
)

// Layer is the behavior shared by plain and AES-like layers.
type Layer interface {
	fmt.Stringer

	BinaryMatrix() gf2.Matrix
	IsPermutation() bool
	XORCount() int
	DifferentialBranchNumberContext(ctx context.Context) (int, error)
	LinearBranchNumberContext(ctx context.Context) (int, error)
}

//nolint:gochecknoglobals // constant tables
var (
	// AESShiftRows rotates row r of the AES state left by r cells.
	AESShiftRows = perm.MustNew(0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12, 1, 6, 11)

	// SkinnyShiftRows rotates row r of the SKINNY state right by r cells.
	SkinnyShiftRows = perm.MustNew(0, 13, 10, 7, 4, 1, 14, 11, 8, 5, 2, 15, 12, 9, 6, 3)

	// MidoriShuffleCells is the cell permutation of Midori and Mantis.
	MidoriShuffleCells = perm.MustNew(0, 10, 5, 15, 14, 4, 11, 1, 9, 3, 12, 6, 7, 13, 2, 8)

	// AESMixColumns is the AES circulant matrix over GF(2^8) with modulus x^8 + x^4 + x^3 + x + 1.
	AESMixColumns = field.MustMatrix(field.AES, 4, 4,
		2, 3, 1, 1,
		1, 2, 3, 1,
		1, 1, 2, 3,
		3, 1, 1, 2)

	// MidoriMixColumns is the almost-MDS involution of Midori.
	MidoriMixColumns = field.MustMatrix(field.GF16, 4, 4,
		0, 1, 1, 1,
		1, 0, 1, 1,
		1, 1, 0, 1,
		1, 1, 1, 0)

	// Skinny4MixColumns is the SKINNY-64 MixColumns matrix.
	Skinny4MixColumns = skinnyMixColumns(field.GF16)

	// Skinny8MixColumns is the SKINNY-128 MixColumns matrix.
	Skinny8MixColumns = skinnyMixColumns(field.GF256)
)

func skinnyMixColumns(f *field.Field) field.Matrix {
	return field.MustMatrix(f, 4, 4,
		1, 0, 1, 1,
		1, 0, 0, 0,
		0, 1, 1, 0,
		1, 0, 1, 0)
}

// AES returns the AES linear layer, ShiftRows then MixColumns.
func AES() *AESLike {
	return mustAESLike(AESShiftRows, AESMixColumns)
}

// Midori returns the Midori linear layer, ShuffleCell then MixColumn.
func Midori() *AESLike {
	return mustAESLike(MidoriShuffleCells, MidoriMixColumns)
}

// Skinny4 returns the SKINNY-64 linear layer, ShiftRows then MixColumns.
func Skinny4() *AESLike {
	return mustAESLike(SkinnyShiftRows, Skinny4MixColumns)
}

// Skinny8 returns the SKINNY-128 linear layer, ShiftRows then MixColumns.
func Skinny8() *AESLike {
	return mustAESLike(SkinnyShiftRows, Skinny8MixColumns)
}

func mustAESLike(sc perm.Permutation, mc field.Matrix) *AESLike {
	l, err := NewAESLike(sc, mc)
	if err != nil {
		panic(err)
	}
	return l
}

// SmallPresent returns the PRESENT bit permutation generalized to n S-boxes: bit i of the 4n-bit state moves to
// position n·i mod (4n−1), the last bit being fixed.
func SmallPresent(n int) (*LinearLayer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d S-boxes", ErrInvalidLayer, n)
	}
	dim := 4 * n
	p := make([]int, dim)
	for i := range dim - 1 {
		p[i] = (n * i) % (dim - 1)
	}
	p[dim-1] = dim - 1
	sc, err := perm.FromScatter(p...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayer, err)
	}
	return New(sc.Matrix(1)), nil
}

// PRESENT returns the 64-bit PRESENT permutation layer.
func PRESENT() *LinearLayer {
	l, err := SmallPresent(16)
	if err != nil {
		panic(err)
	}
	return l
}

// GIFTPermutation returns the GIFT bit permutation on n ∈ {64, 128} bits, as a gather table.
func GIFTPermutation(n int) (perm.Permutation, error) {
	if n != 64 && n != 128 {
		return nil, fmt.Errorf("%w: GIFT has no %d-bit variant", ErrInvalidLayer, n)
	}
	q := n / 4
	p := make([]int, n)
	for i := range p {
		p[i] = 4*(i/16) + q*((3*((i%16)/4)+i%4)%4) + i%4
	}
	return perm.FromScatter(p...)
}

// GIFT64 returns the GIFT-64 bit permutation layer.
func GIFT64() *LinearLayer {
	return gift(64)
}

// GIFT128 returns the GIFT-128 bit permutation layer.
func GIFT128() *LinearLayer {
	return gift(128)
}

func gift(n int) *LinearLayer {
	p, err := GIFTPermutation(n)
	if err != nil {
		panic(err)
	}
	return New(p.Matrix(1))
}

//nolint:gochecknoglobals // static registry
var registry = map[string]func() Layer{
	"AES":      func() Layer { return AES() },
	"Midori":   func() Layer { return Midori() },
	"SKINNY_4": func() Layer { return Skinny4() },
	"SKINNY_8": func() Layer { return Skinny8() },
	"PRESENT":  func() Layer { return PRESENT() },
	"GIFT64":   func() Layer { return GIFT64() },
	"GIFT128":  func() Layer { return GIFT128() },
}

// Lookup returns a fresh instance of the named predefined layer.
func Lookup(name string) (Layer, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Names returns the names of the predefined layers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
