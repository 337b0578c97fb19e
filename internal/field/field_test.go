package field

import (
	"errors"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/testdata"
)

func TestNewReducible(t *testing.T) {
	// x^4 + x^2 + 1 = (x^2 + x + 1)^2
	if _, err := New(4, 0x15); !errors.Is(err, ErrReducible) {
		t.Errorf("New(4, 0x15) err = %v, want = %v", err, ErrReducible)
	}

	// degree mismatch
	if _, err := New(4, 0x11b); !errors.Is(err, ErrReducible) {
		t.Errorf("New(4, 0x11b) err = %v, want = %v", err, ErrReducible)
	}
}

func TestAESMul(t *testing.T) {
	// FIPS 197, section 4.2
	tests := []struct{ a, b, want Element }{
		{0x57, 0x83, 0xc1},
		{0x57, 0x13, 0xfe},
		{0x57, 0x02, 0xae},
	}
	for _, tt := range tests {
		if got := AES.Mul(tt.a, tt.b); got != tt.want {
			t.Errorf("Mul(%#x, %#x) = %#x, want = %#x", tt.a, tt.b, got, tt.want)
		}
	}

	inv, err := AES.Inv(0x53)
	if err != nil {
		t.Fatal(err)
	}
	if inv != 0xca {
		t.Errorf("Inv(0x53) = %#x, want = 0xca", inv)
	}

	if _, err := AES.Inv(0); !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Inv(0) err = %v, want = %v", err, ErrNotInvertible)
	}
}

func TestElementToBinary(t *testing.T) {
	for _, f := range []*Field{GF2, GF16, GF256, AES} {
		for a := range f.Order() {
			m := f.ElementToBinary(Element(a))
			for x := range f.Order() {
				got := m.MulVec(f.Bits(Element(x)))
				want := f.Bits(f.Mul(Element(a), Element(x)))
				if !got.Equal(want) {
					t.Fatalf("%v: M_%#x·bits(%#x) = %v, want = %v", f, a, x, got, want)
				}
			}
		}
	}
}

func TestMatrixToBinary(t *testing.T) {
	drbg := testdata.New("field lifting")

	for _, f := range []*Field{GF16, AES} {
		for range 20 {
			m := NewMatrix(f, 4, 6)
			for i := range m.a {
				m.a[i] = Element(drbg.IntN(f.Order()))
			}
			x := make([]Element, 6)
			for i := range x {
				x[i] = Element(drbg.IntN(f.Order()))
			}

			got := m.ToBinary().MulVec(cellsToBits(f, x))
			want := cellsToBits(f, m.MulVec(x))
			if !got.Equal(want) {
				t.Errorf("%v: ToBinary(M)·bits(x) = %v, want = %v", f, got, want)
			}
		}
	}
}

func TestMatrixInverse(t *testing.T) {
	mc := MustMatrix(AES, 4, 4,
		2, 3, 1, 1,
		1, 2, 3, 1,
		1, 1, 2, 3,
		3, 1, 1, 2)
	inv, err := mc.Inverse()
	if err != nil {
		t.Fatal(err)
	}

	want := MustMatrix(AES, 4, 4,
		14, 11, 13, 9,
		9, 14, 11, 13,
		13, 9, 14, 11,
		11, 13, 9, 14)
	if !inv.Equal(want) {
		t.Errorf("Inverse(MixColumns) = \n%v\nwant = \n%v", inv, want)
	}

	midori := MustMatrix(GF16, 4, 4,
		0, 1, 1, 1,
		1, 0, 1, 1,
		1, 1, 0, 1,
		1, 1, 1, 0)
	inv, err = midori.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	if !inv.Equal(midori) {
		t.Error("Midori MixColumns is not an involution")
	}

	singular := MustMatrix(GF16, 2, 2, 1, 1, 1, 1)
	if _, err := singular.Inverse(); !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Inverse() err = %v, want = %v", err, ErrNotInvertible)
	}
}

func TestPermutationMatrix(t *testing.T) {
	p := perm.MustNew(0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12, 1, 6, 11)
	m := PermutationMatrix(AES, p)

	if !m.IsPermutation() {
		t.Error("PermutationMatrix is not a permutation")
	}
	if !m.ToBinary().Equal(p.Matrix(8)) {
		t.Error("lifted permutation matrix differs from the cell permutation")
	}

	m.Set(0, 0, 2)
	if m.IsPermutation() {
		t.Error("matrix with a non-unit entry reported as a permutation")
	}
}

func cellsToBits(f *Field, x []Element) gf2.Vector {
	v := gf2.NewVector(len(x) * f.Degree())
	for i, e := range x {
		v.SetUint64(i*f.Degree(), f.Degree(), uint64(e))
	}
	return v
}
