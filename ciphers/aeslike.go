package ciphers

import (
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/aesref"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/spn"
)

// AES returns the AES round without AddRoundKey. Cells are bytes in FIPS 197 order, column-major.
func AES() (*spn.AESLike, error) {
	return spn.NewAESLike(spn.AESLikeConfig{
		Name:          "AES",
		SBox:          sbox.MustNew(aesref.SBox()...),
		MixColumns:    linearlayer.AESMixColumns,
		ShuffleCells:  linearlayer.AESShiftRows,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
	})
}

// Midori returns the Midori64 round without key addition.
func Midori() (*spn.AESLike, error) {
	return midori("Midori64")
}

// Mantis returns the MANTIS round, which shares the S-box and linear layer of Midori64.
func Mantis() (*spn.AESLike, error) {
	return midori("Mantis")
}

func midori(name string) (*spn.AESLike, error) {
	return spn.NewAESLike(spn.AESLikeConfig{
		Name:          name,
		SBox:          sbox.Midori0(),
		MixColumns:    linearlayer.MidoriMixColumns,
		ShuffleCells:  linearlayer.MidoriShuffleCells,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
	})
}

// LED returns the LED round: the PRESENT S-box, ShiftRows, and MixColumnsSerial over GF(2^4) with modulus
// x^4 + x + 1.
func LED() (*spn.AESLike, error) {
	return spn.NewAESLike(spn.AESLikeConfig{
		Name: "LED",
		SBox: sbox.PRESENT(),
		MixColumns: field.MustMatrix(field.GF16, 4, 4,
			0x4, 0x1, 0x2, 0x2,
			0x8, 0x6, 0x5, 0x6,
			0xb, 0xe, 0xa, 0x9,
			0x2, 0x2, 0xf, 0xb),
		ShuffleCells:  linearlayer.AESShiftRows,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
	})
}

// Craft returns the CRAFT round without tweakey addition.
func Craft() (*spn.AESLike, error) {
	sc, err := perm.FromScatter(15, 10, 9, 4, 3, 6, 5, 8, 7, 2, 1, 12, 11, 14, 13, 0)
	if err != nil {
		return nil, err
	}
	return spn.NewAESLike(spn.AESLikeConfig{
		Name: "Craft",
		SBox: sbox.Craft(),
		MixColumns: field.MustMatrix(field.GF16, 4, 4,
			1, 0, 1, 1,
			0, 1, 0, 1,
			0, 0, 1, 0,
			0, 0, 0, 1),
		ShuffleCells:  sc,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
	})
}

// Skinny returns the SKINNY-64 or SKINNY-128 round, n being the block size. SKINNY shifts rows before mixing
// columns.
func Skinny(n int) (*spn.AESLike, error) {
	cfg := spn.AESLikeConfig{
		Name:          fmt.Sprintf("SKINNY-%d", n),
		ShuffleCells:  linearlayer.SkinnyShiftRows,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
		SCFirst:       true,
	}
	switch n {
	case 64:
		cfg.SBox = sbox.Skinny4()
		cfg.MixColumns = linearlayer.Skinny4MixColumns
	case 128:
		cfg.SBox = sbox.Skinny8()
		cfg.MixColumns = linearlayer.Skinny8MixColumns
	default:
		return nil, fmt.Errorf("%w: SKINNY block size %d, want 64 or 128", spn.ErrInvalidConfig, n)
	}
	return spn.NewAESLike(cfg)
}

// Gift returns the GIFT-64 or GIFT-128 round, n being the block size. The GIFT bit permutation factors into a
// 16-bit permutation of each group of four S-boxes followed by a permutation of the S-boxes.
func Gift(n int) (*spn.AESLike, error) {
	if n != 64 && n != 128 {
		return nil, fmt.Errorf("%w: GIFT block size %d, want 64 or 128", spn.ErrInvalidConfig, n)
	}
	mc, err := perm.FromScatter(0, 5, 10, 15, 12, 1, 6, 11, 8, 13, 2, 7, 4, 9, 14, 3)
	if err != nil {
		return nil, err
	}
	nbr := n / 4
	p := make([]int, nbr)
	for i := range p {
		p[i] = i/4 + (i*(n/16))%nbr
	}
	sc, err := perm.FromScatter(p...)
	if err != nil {
		return nil, err
	}

	c, err := spn.NewAESLike(spn.AESLikeConfig{
		Name:          fmt.Sprintf("GIFT-%d", n),
		SBox:          sbox.GIFT(),
		MixColumns:    field.FromBinary(mc.Matrix(1)),
		ShuffleCells:  sc,
		NbrSBoxes:     nbr,
		NbrSuperboxes: nbr / 4,
	})
	if err != nil {
		return nil, err
	}

	want, err := linearlayer.GIFTPermutation(n)
	if err != nil {
		return nil, err
	}
	if !c.L().BinaryMatrix().Equal(want.Matrix(1)) {
		return nil, fmt.Errorf("%w: %s linear layer differs from the GIFT permutation", spn.ErrInvalidConfig, c.Name())
	}
	return c, nil
}

// Prince returns the PRINCE forward round. The four superboxes use M̂0, M̂1, M̂1, M̂0; useM0Hat selects which of
// the two Superbox applies.
func Prince(useM0Hat bool) (*spn.AESLike, error) {
	m := [4]gf2.Matrix{}
	for k := range m {
		m[k] = gf2.Identity(4)
		m[k].Set(k, k, 0)
	}
	m0Hat := gf2.Block(4, 4, []gf2.Matrix{
		m[0], m[1], m[2], m[3],
		m[1], m[2], m[3], m[0],
		m[2], m[3], m[0], m[1],
		m[3], m[0], m[1], m[2],
	})
	m1Hat := gf2.Block(4, 4, []gf2.Matrix{
		m[1], m[2], m[3], m[0],
		m[2], m[3], m[0], m[1],
		m[3], m[0], m[1], m[2],
		m[0], m[1], m[2], m[3],
	})
	hat0, hat1 := field.FromBinary(m0Hat), field.FromBinary(m1Hat)

	name, mc := "Prince", hat0
	if !useM0Hat {
		name, mc = "Prince (M1)", hat1
	}
	return spn.NewAESLike(spn.AESLikeConfig{
		Name:                  name,
		SBox:                  sbox.PRINCE(),
		MixColumns:            mc,
		MixColumnsPerSuperbox: []field.Matrix{hat0, hat1, hat1, hat0},
		ShuffleCells:          linearlayer.AESShiftRows,
		NbrSBoxes:             16,
		NbrSuperboxes:         4,
	})
}

// Boomslang returns the Boomslang round.
func Boomslang() (*spn.AESLike, error) {
	i := gf2.Identity(4)
	x := gf2.MatrixFromRows([][]uint8{
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
	})
	x2 := x.Mul(x)
	o := gf2.NewMatrix(4, 4)
	mc := gf2.Block(4, 4, []gf2.Matrix{
		o, i, x, x2,
		x2, o, i, x,
		x, x2, o, i,
		i, x, x2, o,
	})

	sc, err := perm.FromScatter(0, 29, 26, 23, 4, 1, 30, 27, 8, 5, 2, 31, 12, 9, 6, 3,
		16, 13, 10, 7, 20, 17, 14, 11, 24, 21, 18, 15, 28, 25, 22, 19)
	if err != nil {
		return nil, err
	}
	return spn.NewAESLike(spn.AESLikeConfig{
		Name:          "Boomslang",
		SBox:          sbox.MustNew(0x8, 0x2, 0x4, 0xa, 0x5, 0xf, 0x7, 0x6, 0x0, 0xc, 0xb, 0x9, 0xe, 0xd, 0x1, 0x3),
		MixColumns:    field.FromBinary(mc),
		ShuffleCells:  sc,
		NbrSBoxes:     32,
		NbrSuperboxes: 8,
	})
}

// streebogA holds the rows of the Streebog linear transformation l, RFC 6986 section 6.4.
//
//nolint:gochecknoglobals // constant table
var streebogA = [64]uint64{
	0x8e20faa72ba0b470, 0x47107ddd9b505a38, 0xad08b0e0c3282d1c, 0xd8045870ef14980e,
	0x6c022c38f90a4c07, 0x3601161cf205268d, 0x1b8e0b0e798c13c8, 0x83478b07b2468764,
	0xa011d380818e8f40, 0x5086e740ce47c920, 0x2843fd2067adea10, 0x14aff010bdd87508,
	0x0ad97808d06cb404, 0x05e23c0468365a02, 0x8c711e02341b2d01, 0x46b60f011a83988e,
	0x90dab52a387ae76f, 0x486dd4151c3dfdb9, 0x24b86a840e90f0d2, 0x125c354207487869,
	0x092e94218d243cba, 0x8a174a9ec8121e5d, 0x4585254f64090fa0, 0xaccc9ca9328a8950,
	0x9d4df05d5f661451, 0xc0a878a0a1330aa6, 0x60543c50de970553, 0x302a1e286fc58ca7,
	0x18150f14b9ec46dd, 0x0c84890ad27623e0, 0x0642ca05693b9f70, 0x0321658cba93c138,
	0x86275df09ce8aaa8, 0x439da0784e745554, 0xafc0503c273aa42a, 0xd960281e9d1d5215,
	0xe230140fc0802984, 0x71180a8960409a42, 0xb60c05ca30204d21, 0x5b068c651810a89e,
	0x456c34887a3805b9, 0xac361a443d1c8cd2, 0x561b0d22900e4669, 0x2b838811480723ba,
	0x9bcf4486248d9f5d, 0xc3e9224312c8c1a0, 0xeffa11af0964ee50, 0xf97d86d98a327728,
	0xe4fa2054a80b329c, 0x727d102a548b194e, 0x39b008152acb8227, 0x9258048415eb419d,
	0x492c024284fbaec0, 0xaa16012142f35760, 0x550b8e9e21f7a530, 0xa48b474f9ef5dc18,
	0x70a6a56e2440598e, 0x3853dc371220a247, 0x1ca76e95091051ad, 0x0edd37c48a08a6d8,
	0x07e095624504536c, 0x8d70c431ac02a736, 0xc83862965601dd1b, 0x641c314b2b8ee083,
}

// Streebog returns the LPS round of the Streebog compression function: π on each byte, the transposition of
// the 8×8 byte matrix, and l on each row.
func Streebog() (*spn.AESLike, error) {
	mc := gf2.NewMatrix(64, 64)
	for i, a := range streebogA {
		for j := range 64 {
			mc.Set(i, j, uint8(a>>(63-j)))
		}
	}

	p := make([]int, 64)
	for k := range p {
		p[k] = 8*(k%8) + k/8
	}
	sc, err := perm.New(p...)
	if err != nil {
		return nil, err
	}
	return spn.NewAESLike(spn.AESLikeConfig{
		Name:          "Streebog",
		SBox:          sbox.Streebog(),
		MixColumns:    field.FromBinary(mc),
		ShuffleCells:  sc,
		NbrSBoxes:     64,
		NbrSuperboxes: 8,
	})
}
