package spn

import (
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

// AESLikeConfig describes an SPN whose linear layer is a ShuffleCells permutation of the S-box cells and a
// MixColumns layer made of one matrix per superbox.
type AESLikeConfig struct {
	Name string
	SBox sbox.SBox

	// MixColumns acts on the bits of one superbox, NbrSBoxes/NbrSuperboxes cells. It may be over GF(2) or over a
	// field whose degree is the S-box width. It is always required.
	MixColumns field.Matrix

	// MixColumnsPerSuperbox, when set, gives the matrix of each superbox in the linear layer; MixColumns is then
	// only used by Superbox.
	MixColumnsPerSuperbox []field.Matrix

	// ShuffleCells permutes the NbrSBoxes cells.
	ShuffleCells perm.Permutation

	NbrSBoxes     int
	NbrSuperboxes int

	// SCFirst selects L = MC∘SC; otherwise L = SC∘MC.
	SCFirst bool
}

// AESLike is an SPN with an AES-like linear layer, exposing its superboxes.
type AESLike struct {
	*Cipher

	nbrSuperboxes int
	scFirst       bool

	mc, mcInv           field.Matrix
	mcBin, mcInvBin     gf2.Matrix
	perSuperbox         []gf2.Matrix
	perSuperboxInv      []gf2.Matrix
	layer, layerInv     gf2.Matrix
	shuffle, shuffleInv gf2.Matrix
	sc                  perm.Permutation
}

// NewAESLike validates cfg and builds the cipher.
func NewAESLike(cfg AESLikeConfig) (*AESLike, error) {
	if cfg.NbrSuperboxes < 1 || cfg.NbrSBoxes < 1 || cfg.NbrSBoxes%cfg.NbrSuperboxes != 0 {
		return nil, fmt.Errorf("%w: %s: %d S-boxes in %d superboxes", ErrInvalidConfig, cfg.Name, cfg.NbrSBoxes, cfg.NbrSuperboxes)
	}
	if len(cfg.ShuffleCells) != cfg.NbrSBoxes {
		return nil, fmt.Errorf("%w: %s: ShuffleCells on %d cells, want %d", ErrInvalidConfig, cfg.Name, len(cfg.ShuffleCells), cfg.NbrSBoxes)
	}
	mcs := cfg.MixColumnsPerSuperbox
	if mcs == nil {
		mcs = make([]field.Matrix, cfg.NbrSuperboxes)
		for i := range mcs {
			mcs[i] = cfg.MixColumns
		}
	}
	if len(mcs) != cfg.NbrSuperboxes {
		return nil, fmt.Errorf("%w: %s: %d MixColumns matrices for %d superboxes", ErrInvalidConfig, cfg.Name, len(mcs), cfg.NbrSuperboxes)
	}

	b := cfg.SBox.Bits()
	sbBits := b * cfg.NbrSBoxes / cfg.NbrSuperboxes
	a := &AESLike{nbrSuperboxes: cfg.NbrSuperboxes, scFirst: cfg.SCFirst, mc: cfg.MixColumns, sc: cfg.ShuffleCells}

	var err error
	if a.mcBin, a.mcInv, a.mcInvBin, err = liftSuperbox(cfg.Name, cfg.MixColumns, b, sbBits); err != nil {
		return nil, err
	}
	for _, m := range mcs {
		bin, _, inv, err := liftSuperbox(cfg.Name, m, b, sbBits)
		if err != nil {
			return nil, err
		}
		a.perSuperbox = append(a.perSuperbox, bin)
		a.perSuperboxInv = append(a.perSuperboxInv, inv)
	}
	a.layer = gf2.BlockDiagonal(a.perSuperbox...)
	a.layerInv = gf2.BlockDiagonal(a.perSuperboxInv...)
	a.shuffle = cfg.ShuffleCells.Matrix(b)
	a.shuffleInv = cfg.ShuffleCells.Inverse().Matrix(b)

	l := a.shuffle.Mul(a.layer)
	if cfg.SCFirst {
		l = a.layer.Mul(a.shuffle)
	}
	if a.Cipher, err = New(cfg.Name, cfg.SBox, linearlayer.New(l), cfg.NbrSBoxes); err != nil {
		return nil, err
	}
	return a, nil
}

// liftSuperbox returns the binary form of m on a superbox of sbBits bits, its inverse, and the binary inverse.
func liftSuperbox(name string, m field.Matrix, b, sbBits int) (gf2.Matrix, field.Matrix, gf2.Matrix, error) {
	if m.Field() == nil {
		return gf2.Matrix{}, field.Matrix{}, gf2.Matrix{}, fmt.Errorf("%w: %s: missing MixColumns", ErrInvalidConfig, name)
	}
	if d := m.Field().Degree(); d != 1 && d != b {
		return gf2.Matrix{}, field.Matrix{}, gf2.Matrix{}, fmt.Errorf("%w: %s: MixColumns over %v for %d-bit cells", ErrInvalidConfig, name, m.Field(), b)
	}
	bin := m.ToBinary()
	if bin.Rows() != sbBits || bin.Cols() != sbBits {
		return gf2.Matrix{}, field.Matrix{}, gf2.Matrix{}, fmt.Errorf("%w: %s: %d×%d MixColumns for %d-bit superboxes", ErrInvalidConfig, name, m.Rows(), m.Cols(), sbBits)
	}
	inv, err := m.Inverse()
	if err != nil {
		return gf2.Matrix{}, field.Matrix{}, gf2.Matrix{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	return bin, inv, inv.ToBinary(), nil
}

// NbrSuperboxes returns the number of superboxes.
func (a *AESLike) NbrSuperboxes() int {
	return a.nbrSuperboxes
}

// SBoxesPerSuperbox returns the number of S-boxes in a superbox.
func (a *AESLike) SBoxesPerSuperbox() int {
	return a.nbrSBoxes / a.nbrSuperboxes
}

// SuperboxBits returns the width of a superbox in bits.
func (a *AESLike) SuperboxBits() int {
	return a.SBoxesPerSuperbox() * a.CellBits()
}

// SCFirst reports whether ShuffleCells is applied before MixColumns in the linear layer.
func (a *AESLike) SCFirst() bool {
	return a.scFirst
}

// MixColumns returns the MixColumns matrix used by Superbox.
func (a *AESLike) MixColumns() field.Matrix {
	return a.mc
}

// ShuffleCells returns the cell permutation.
func (a *AESLike) ShuffleCells() perm.Permutation {
	return append(perm.Permutation(nil), a.sc...)
}

// Superbox applies the S-box to every cell of a superbox-sized state, then MixColumns, then the S-boxes again.
func (a *AESLike) Superbox(state gf2.Vector) (gf2.Vector, error) {
	return a.superbox(a.mcBin, state)
}

// SuperboxAt is Superbox with the MixColumns matrix of superbox i.
func (a *AESLike) SuperboxAt(i int, state gf2.Vector) (gf2.Vector, error) {
	mc, err := a.superboxMatrix(i)
	if err != nil {
		return gf2.Vector{}, err
	}
	return a.superbox(mc, state)
}

func (a *AESLike) superboxMatrix(i int) (gf2.Matrix, error) {
	if i < 0 || i >= a.nbrSuperboxes {
		return gf2.Matrix{}, fmt.Errorf("%w: superbox %d of %d", ErrDimensionMismatch, i, a.nbrSuperboxes)
	}
	return a.perSuperbox[i], nil
}

func (a *AESLike) superbox(mc gf2.Matrix, state gf2.Vector) (gf2.Vector, error) {
	if state.Len() != a.SuperboxBits() {
		return gf2.Vector{}, fmt.Errorf("%w: %d bits for a %d-bit superbox", ErrDimensionMismatch, state.Len(), a.SuperboxBits())
	}
	n := a.SBoxesPerSuperbox()
	y, err := a.PartialSBoxLayer(state, n)
	if err != nil {
		return gf2.Vector{}, err
	}
	return a.PartialSBoxLayer(mc.MulVec(y), n)
}

// MC applies the MixColumns layer to the whole state.
func (a *AESLike) MC(state gf2.Vector) (gf2.Vector, error) {
	return a.mulState(a.layer, state)
}

// MCInverse undoes MC.
func (a *AESLike) MCInverse(state gf2.Vector) (gf2.Vector, error) {
	return a.mulState(a.layerInv, state)
}

// SC applies ShuffleCells to the whole state.
func (a *AESLike) SC(state gf2.Vector) (gf2.Vector, error) {
	return a.mulState(a.shuffle, state)
}

// SCInverse undoes SC.
func (a *AESLike) SCInverse(state gf2.Vector) (gf2.Vector, error) {
	return a.mulState(a.shuffleInv, state)
}

func (a *AESLike) mulState(m gf2.Matrix, state gf2.Vector) (gf2.Vector, error) {
	if err := a.checkLen(state.Len()); err != nil {
		return gf2.Vector{}, err
	}
	return m.MulVec(state), nil
}

// Inverse returns the AES-like cipher with inverted S-box, MixColumns and ShuffleCells, in the opposite order.
func (a *AESLike) Inverse() *AESLike {
	return &AESLike{
		Cipher:         a.Cipher.Inverse(),
		nbrSuperboxes:  a.nbrSuperboxes,
		scFirst:        !a.scFirst,
		mc:             a.mcInv,
		mcInv:          a.mc,
		mcBin:          a.mcInvBin,
		mcInvBin:       a.mcBin,
		perSuperbox:    a.perSuperboxInv,
		perSuperboxInv: a.perSuperbox,
		layer:          a.layerInv,
		layerInv:       a.layer,
		shuffle:        a.shuffleInv,
		shuffleInv:     a.shuffle,
		sc:             a.sc.Inverse(),
	}
}
