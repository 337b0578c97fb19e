package ciphers

import (
	"fmt"
	"slices"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/ascon"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/spn"
)

// Ascon returns the Ascon round without constant addition. S-box z reads bit z of the words x4, x3, x2, x1, x0,
// so that state bit 5z+4−i is bit z of x_i.
func Ascon() (*spn.Cipher, error) {
	l := gf2.FromLinearMap(320, func(v gf2.Vector) gf2.Vector {
		s := AsconState(v)
		s.Diffuse()
		return AsconVector(s)
	})
	return spn.New("Ascon", sbox.MustNew(ascon.SBox()...), linearlayer.New(l), 64)
}

// AsconState converts a 320-bit model state to Ascon words.
func AsconState(v gf2.Vector) ascon.State {
	var s ascon.State
	for z := range 64 {
		for i := range s {
			s[i] |= uint64(v.Bit(5*z+4-i)) << z
		}
	}
	return s
}

// AsconVector converts Ascon words to a 320-bit model state.
func AsconVector(s ascon.State) gf2.Vector {
	v := gf2.NewVector(320)
	for z := range 64 {
		for i, x := range s {
			v.Set(5*z+4-i, uint8(x>>z))
		}
	}
	return v
}

// KeccakWidths lists the supported Keccak-f permutation widths.
//
//nolint:gochecknoglobals // constant table
var KeccakWidths = []int{25, 50, 100, 200, 400, 800, 1600}

// Keccak returns the Keccak-f[b] round without ι, as χ followed by θ, ρ and π. S-box 5z+y is χ on row y of
// slice z, and state bit 25z+5y+x is bit z of lane (x, y).
func Keccak(b int) (*spn.Cipher, error) {
	if !slices.Contains(KeccakWidths, b) {
		return nil, fmt.Errorf("%w: Keccak width %d", spn.ErrInvalidConfig, b)
	}
	w := b / 25
	l := gf2.FromLinearMap(b, func(v gf2.Vector) gf2.Vector {
		a := KeccakLanes(v, w)
		keccakThetaRhoPi(&a, w)
		return KeccakVector(a, w)
	})
	return spn.New(fmt.Sprintf("Keccak[%d]", b), keccakChi(), linearlayer.New(l), 5*w)
}

// KeccakLanes converts a model state of 25w bits to lanes indexed [x][y].
func KeccakLanes(v gf2.Vector, w int) [5][5]uint64 {
	var a [5][5]uint64
	for z := range w {
		for y := range 5 {
			for x := range 5 {
				a[x][y] |= uint64(v.Bit(25*z+5*y+x)) << z
			}
		}
	}
	return a
}

// KeccakVector converts lanes back to a model state.
func KeccakVector(a [5][5]uint64, w int) gf2.Vector {
	v := gf2.NewVector(25 * w)
	for z := range w {
		for y := range 5 {
			for x := range 5 {
				v.Set(25*z+5*y+x, uint8(a[x][y]>>z))
			}
		}
	}
	return v
}

//nolint:gochecknoglobals // constant table
var keccakRho = [5][5]int{
	{0, 36, 3, 41, 18},
	{1, 44, 10, 45, 2},
	{62, 6, 43, 15, 61},
	{28, 55, 25, 21, 56},
	{27, 20, 39, 8, 14},
}

func keccakThetaRhoPi(a *[5][5]uint64, w int) {
	var c, d [5]uint64
	for x := range 5 {
		c[x] = a[x][0] ^ a[x][1] ^ a[x][2] ^ a[x][3] ^ a[x][4]
	}
	for x := range 5 {
		d[x] = c[(x+4)%5] ^ rol(c[(x+1)%5], 1, w)
	}

	var out [5][5]uint64
	for x := range 5 {
		for y := range 5 {
			out[y][(2*x+3*y)%5] = rol(a[x][y]^d[x], keccakRho[x][y], w)
		}
	}
	*a = out
}

// rol rotates the w-bit lane a left by n.
func rol(a uint64, n, w int) uint64 {
	n %= w
	mask := uint64(1)<<w - 1
	return ((a << n) | (a >> (w - n))) & mask
}

// keccakChi returns χ on five bits, bit i being lane x = i.
func keccakChi() sbox.SBox {
	t := make([]int, 32)
	for v := range t {
		for i := range 5 {
			a, b, c := v>>i&1, v>>((i+1)%5)&1, v>>((i+2)%5)&1
			t[v] |= (a ^ ((b ^ 1) & c)) << i
		}
	}
	return sbox.MustNew(t...)
}

// Rectangle returns the RECTANGLE round. S-box j reads column j of the 4×16 state, and the row rotations by 0,
// 1, 12 and 13 act on the row-major layout.
func Rectangle() (*spn.Cipher, error) {
	var cols []int
	for i := range 16 {
		for j := i; j < 64; j += 16 {
			cols = append(cols, j)
		}
	}
	p, err := perm.FromScatter(cols...)
	if err != nil {
		return nil, err
	}

	var rows []int
	for i := range 16 {
		rows = append(rows, i)
	}
	rows = append(rows, 31)
	for i := 16; i < 31; i++ {
		rows = append(rows, i)
	}
	for i := 36; i < 48; i++ {
		rows = append(rows, i)
	}
	for i := 32; i < 36; i++ {
		rows = append(rows, i)
	}
	for i := 51; i < 64; i++ {
		rows = append(rows, i)
	}
	for i := 48; i < 51; i++ {
		rows = append(rows, i)
	}
	sr, err := perm.FromScatter(rows...)
	if err != nil {
		return nil, err
	}

	pm := p.Matrix(1)
	pInv, err := pm.Inverse()
	if err != nil {
		return nil, err
	}
	l := pInv.Mul(sr.Matrix(1)).Mul(pm)
	return spn.New("RECTANGLE", sbox.Rectangle(), linearlayer.New(l), 16)
}

// screamL holds the rows of the Scream L-box.
//
//nolint:gochecknoglobals // constant table
var screamL = [][]uint8{
	{0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0, 0},
	{1, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 1, 0, 1, 0},
	{1, 1, 0, 0, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 1, 0},
	{1, 0, 0, 0, 0, 0, 1, 1, 0, 1, 1, 0, 1, 0, 0, 1},
	{1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 1, 0, 1, 0, 1, 1},
	{0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 1, 1, 1, 0, 0},
	{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 1, 1},
	{1, 0, 1, 0, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 0, 1, 0, 0, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0},
	{1, 1, 1, 1, 0, 1, 0, 1, 1, 0, 0, 0, 1, 1, 1, 1},
	{1, 1, 0, 0, 1, 1, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1},
	{0, 0, 1, 0, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 0, 0, 1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 0},
	{1, 1, 1, 1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 1, 0},
	{1, 1, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0},
	{1, 0, 0, 0, 1, 1, 0, 1, 0, 1, 0, 1, 0, 0, 0, 1},
}

// Scream returns the Scream round with the given 8-bit S-box. The L-box is applied to bits i, i+8, ..., i+120
// for each i < 8.
func Scream(s sbox.SBox) (*spn.Cipher, error) {
	if s.Bits() != 8 {
		return nil, fmt.Errorf("%w: Scream needs an 8-bit S-box, got %d bits", spn.ErrInvalidConfig, s.Bits())
	}
	lbox := gf2.MatrixFromRows(screamL)
	l := gf2.FromLinearMap(128, func(v gf2.Vector) gf2.Vector {
		out := gf2.NewVector(128)
		for i := range 8 {
			x := gf2.NewVector(16)
			for k := range 16 {
				x.Set(k, v.Bit(i+8*k))
			}
			y := lbox.MulVec(x)
			for k := range 16 {
				out.Set(i+8*k, y.Bit(k))
			}
		}
		return out
	})
	return spn.New("Scream", s, linearlayer.New(l), 16)
}
