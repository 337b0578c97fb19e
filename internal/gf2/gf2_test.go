package gf2

import (
	"errors"
	"math/big"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/testdata"
	fuzz "github.com/trailofbits/go-fuzz-utils"
)

func randomVector(drbg *testdata.DRBG, n int) Vector {
	return VectorFromBytes(drbg.Data((n+7)/8), n)
}

func randomMatrix(drbg *testdata.DRBG, rows, cols int) Matrix {
	m := NewMatrix(rows, cols)
	for i := range rows {
		m.r[i] = randomVector(drbg, cols).b
	}
	return m
}

func TestVectorWords(t *testing.T) {
	v := VectorFromUint64(0xb, 8)
	if got, want := v.String(), "11010000"; got != want {
		t.Errorf("String() = %s, want = %s", got, want)
	}

	if got, want := v.Uint64(0, 4), uint64(0xb); got != want {
		t.Errorf("Uint64(0, 4) = %x, want = %x", got, want)
	}

	v.SetUint64(4, 4, 0x5)
	if got, want := v.Uint64(0, 8), uint64(0x5b); got != want {
		t.Errorf("Uint64(0, 8) = %x, want = %x", got, want)
	}

	if got, want := v.BigInt(), big.NewInt(0x5b); got.Cmp(want) != 0 {
		t.Errorf("BigInt() = %v, want = %v", got, want)
	}

	if got, want := v.Slice(2, 6), VectorFromBits(0, 1, 1, 0); !got.Equal(want) {
		t.Errorf("Slice(2, 6) = %v, want = %v", got, want)
	}
}

func TestMulVec(t *testing.T) {
	m := MatrixFromRows([][]uint8{
		{1, 1, 0},
		{0, 1, 1},
		{1, 1, 1},
	})
	v := VectorFromBits(1, 0, 1)

	if got, want := m.MulVec(v), VectorFromBits(1, 1, 0); !got.Equal(want) {
		t.Errorf("MulVec(%v) = %v, want = %v", v, got, want)
	}
}

func TestInverse(t *testing.T) {
	drbg := testdata.New("gf2 inverse")

	for i := range 50 {
		m := randomMatrix(drbg, 40, 40)
		inv, err := m.Inverse()
		if errors.Is(err, ErrSingular) {
			if m.Rank() == 40 {
				t.Errorf("iteration %d: full-rank matrix reported singular", i)
			}
			continue
		}

		if !m.Mul(inv).Equal(Identity(40)) || !inv.Mul(m).Equal(Identity(40)) {
			t.Errorf("iteration %d: m·m⁻¹ != I", i)
		}
	}
}

func TestSingular(t *testing.T) {
	m := MatrixFromRows([][]uint8{
		{1, 1},
		{1, 1},
	})
	if _, err := m.Inverse(); !errors.Is(err, ErrSingular) {
		t.Errorf("Inverse() err = %v, want = %v", err, ErrSingular)
	}

	if got, want := m.Rank(), 1; got != want {
		t.Errorf("Rank() = %d, want = %d", got, want)
	}
}

func TestTranspose(t *testing.T) {
	drbg := testdata.New("gf2 transpose")
	m := randomMatrix(drbg, 13, 29)
	u, v := randomVector(drbg, 13), randomVector(drbg, 29)

	// <u, m·v> == <mᵀ·u, v>
	if got, want := u.Dot(m.MulVec(v)), m.Transpose().MulVec(u).Dot(v); got != want {
		t.Errorf("<u, m·v> = %d, <mᵀ·u, v> = %d", got, want)
	}
}

func TestBlocks(t *testing.T) {
	a := MatrixFromRows([][]uint8{{0, 1}, {1, 0}})
	z := NewMatrix(2, 2)

	if got, want := BlockDiagonal(a, a), Block(2, 2, []Matrix{a, z, z, a}); !got.Equal(want) {
		t.Errorf("BlockDiagonal(a, a) = \n%v\nwant = \n%v", got, want)
	}

	if !BlockDiagonal(a, Identity(3)).IsPermutation() {
		t.Error("BlockDiagonal of permutations is not a permutation")
	}

	if Block(1, 2, []Matrix{a, a}).IsPermutation() {
		t.Error("non-square matrix reported as a permutation")
	}
}

func TestPow(t *testing.T) {
	rot := FromLinearMap(7, func(v Vector) Vector {
		w := NewVector(7)
		for i := range 7 {
			w.Set((i+1)%7, v.Bit(i))
		}
		return w
	})

	if !rot.Pow(7).Equal(Identity(7)) {
		t.Error("rotation^7 != I")
	}

	if rot.Pow(3).Equal(Identity(7)) {
		t.Error("rotation^3 == I")
	}
}

func FuzzInverse(f *testing.F) {
	drbg := testdata.New("gf2 inverse fuzz")
	for range 10 {
		f.Add(drbg.Data(512))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tp, err := fuzz.NewTypeProvider(data)
		if err != nil {
			t.Skip(err)
		}

		n, err := tp.GetByte()
		if err != nil || n == 0 {
			t.Skip(err)
		}

		rows, err := tp.GetNBytes(int(n) * int(n))
		if err != nil {
			t.Skip(err)
		}

		m := NewMatrix(int(n), int(n))
		for i, b := range rows {
			m.Set(i/int(n), i%int(n), b)
		}

		inv, err := m.Inverse()
		if err != nil {
			if m.Rank() == int(n) {
				t.Fatalf("full-rank matrix reported singular")
			}
			return
		}

		if !m.Mul(inv).Equal(Identity(int(n))) {
			t.Fatalf("m·m⁻¹ != I for\n%v", m)
		}
	})
}

func BenchmarkMulVec(b *testing.B) {
	drbg := testdata.New("gf2 benchmark")
	m := randomMatrix(drbg, 1600, 1600)
	v := randomVector(drbg, 1600)

	b.ReportAllocs()
	for b.Loop() {
		v = m.MulVec(v)
	}
}
