package spn

import (
	"errors"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/anf"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/testdata"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

func midoriLike(t *testing.T) *AESLike {
	t.Helper()
	a, err := NewAESLike(AESLikeConfig{
		Name:          "Midori",
		SBox:          sbox.Midori0(),
		MixColumns:    linearlayer.MidoriMixColumns,
		ShuffleCells:  linearlayer.MidoriShuffleCells,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func present(t *testing.T) *Cipher {
	t.Helper()
	c, err := New("PRESENT", sbox.PRESENT(), linearlayer.PRESENT(), 16)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func randomState(drbg *testdata.DRBG, n int) gf2.Vector {
	return gf2.VectorFromBytes(drbg.Data((n+7)/8), n)
}

func bits(v gf2.Vector) []uint8 {
	b := make([]uint8, v.Len())
	for i := range b {
		b[i] = v.Bit(i)
	}
	return b
}

func TestRoundTrips(t *testing.T) {
	drbg := testdata.New("spn round trips")

	for _, c := range []SPN{present(t), midoriLike(t)} {
		for range 50 {
			x := randomState(drbg, c.Bits())

			y, err := c.SBoxLayer(x)
			if err != nil {
				t.Fatal(err)
			}
			if back, err := c.SBoxLayerInverse(y); err != nil || !back.Equal(x) {
				t.Fatalf("%s: S⁻¹(S(%v)) = %v (err = %v)", c.Name(), x, back, err)
			}

			y, err = c.LinearLayer(x)
			if err != nil {
				t.Fatal(err)
			}
			if back, err := c.LinearLayerInverse(y); err != nil || !back.Equal(x) {
				t.Fatalf("%s: L⁻¹(L(%v)) = %v (err = %v)", c.Name(), x, back, err)
			}

			y, err = c.Round(x)
			if err != nil {
				t.Fatal(err)
			}
			if back, err := c.Core().RoundInverse(y); err != nil || !back.Equal(x) {
				t.Fatalf("%s: R⁻¹(R(%v)) = %v (err = %v)", c.Name(), x, back, err)
			}
		}
	}
}

func TestInverse(t *testing.T) {
	drbg := testdata.New("spn inverse")
	a := midoriLike(t)
	inv := a.Inverse()

	if inv.SCFirst() == a.SCFirst() {
		t.Error("Inverse() did not flip the layer order")
	}
	if got, want := inv.Name(), "Midori (inverse)"; got != want {
		t.Errorf("Name() = %q, want = %q", got, want)
	}

	for range 50 {
		x := randomState(drbg, a.Bits())

		l1, _ := inv.LinearLayer(x)
		l2, _ := a.LinearLayerInverse(x)
		if !l1.Equal(l2) {
			t.Fatalf("inverse().L(%v) = %v, want = %v", x, l1, l2)
		}

		s1, _ := inv.SBoxLayer(x)
		s2, _ := a.SBoxLayerInverse(x)
		if !s1.Equal(s2) {
			t.Fatalf("inverse().S(%v) = %v, want = %v", x, s1, s2)
		}

		// The inverse's linear layer factors through its own MC and SC.
		mc, _ := inv.MC(x)
		want, _ := inv.SC(mc)
		if inv.SCFirst() {
			sc, _ := inv.SC(x)
			want, _ = inv.MC(sc)
		}
		if !l1.Equal(want) {
			t.Fatalf("inverse().L(%v) = %v, want MC/SC composition %v", x, l1, want)
		}

		r1, _ := inv.Inverse().Round(x)
		r2, _ := a.Round(x)
		if !r1.Equal(r2) {
			t.Fatalf("inverse().inverse().Round(%v) = %v, want = %v", x, r1, r2)
		}

		mcx, _ := a.MC(x)
		if back, _ := a.MCInverse(mcx); !back.Equal(x) {
			t.Fatalf("MC⁻¹(MC(%v)) = %v", x, back)
		}
		scx, _ := a.SC(x)
		if back, _ := a.SCInverse(scx); !back.Equal(x) {
			t.Fatalf("SC⁻¹(SC(%v)) = %v", x, back)
		}
	}
}

func TestTableAndANFAgree(t *testing.T) {
	drbg := testdata.New("spn table anf")

	for _, c := range []*Cipher{present(t), midoriLike(t).Cipher} {
		for range 50 {
			x := randomState(drbg, c.Bits())

			want, err := c.SBoxLayer(x)
			if err != nil {
				t.Fatal(err)
			}
			got, err := EvalSBoxLayer[uint8](c, anf.Bits{}, bits(x))
			if err != nil {
				t.Fatal(err)
			}
			if !gf2.VectorFromBits(got...).Equal(want) {
				t.Fatalf("%s: ANF path %v, table path %v", c.Name(), got, want)
			}

			want, _ = c.SBoxLayerInverse(x)
			got, _ = EvalSBoxLayerInverse[uint8](c, anf.Bits{}, bits(x))
			if !gf2.VectorFromBits(got...).Equal(want) {
				t.Fatalf("%s: inverse ANF path %v, table path %v", c.Name(), got, want)
			}

			want, _ = c.Round(x)
			got, _ = EvalRound[uint8](c, anf.Bits{}, bits(x))
			if !gf2.VectorFromBits(got...).Equal(want) {
				t.Fatalf("%s: symbolic round %v, concrete round %v", c.Name(), got, want)
			}

			want, _ = c.LinearLayerInverse(x)
			got, _ = EvalLinearLayerInverse[uint8](c, anf.Bits{}, bits(x))
			if !gf2.VectorFromBits(got...).Equal(want) {
				t.Fatalf("%s: symbolic L⁻¹ %v, concrete L⁻¹ %v", c.Name(), got, want)
			}
		}
	}
}

func TestPartialSBoxLayer(t *testing.T) {
	c := present(t)
	x := FromCells(4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	y, err := c.PartialSBoxLayer(x, 2)
	if err != nil {
		t.Fatal(err)
	}
	cells := Cells(y, 4)
	if cells[0] != 0xc || cells[1] != 0xc || cells[2] != 0 {
		t.Errorf("PartialSBoxLayer(0, 2) = %x", cells)
	}

	if _, err := c.PartialSBoxLayer(gf2.NewVector(4), 2); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want = %v", err, ErrDimensionMismatch)
	}

	r := anf.NewIndexedRing("x", 8)
	got, err := EvalPartialSBoxLayer(c, anf.Polys{Ring: r}, r.Vars(0, 8), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got[4].Equal(r.Var(4)) {
		t.Errorf("untouched coordinate = %v, want = x4", got[4])
	}
}

func TestSuperbox(t *testing.T) {
	drbg := testdata.New("spn superbox")
	a := midoriLike(t)

	if got, want := a.SuperboxBits(), 16; got != want {
		t.Fatalf("SuperboxBits() = %d, want = %d", got, want)
	}

	for range 20 {
		x := randomState(drbg, a.Bits())

		// S∘MC∘S on the whole state acts on each superbox separately.
		y, _ := a.SBoxLayer(x)
		y, _ = a.MC(y)
		y, _ = a.SBoxLayer(y)

		for i := range a.NbrSuperboxes() {
			in := x.Slice(16*i, 16*i+16)
			got, err := a.SuperboxAt(i, in)
			if err != nil {
				t.Fatal(err)
			}
			if want := y.Slice(16*i, 16*i+16); !got.Equal(want) {
				t.Fatalf("SuperboxAt(%d, %v) = %v, want = %v", i, in, got, want)
			}
		}
	}

	// The symbolic superbox evaluates to the concrete one.
	r := anf.NewIndexedRing("x", 16)
	sym, err := EvalSuperbox(a, anf.Polys{Ring: r}, r.Vars(0, 16))
	if err != nil {
		t.Fatal(err)
	}
	for range 20 {
		x := randomState(drbg, 16)
		want, err := a.Superbox(x)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range sym {
			if p.Eval(bits(x)) != want.Bit(i) {
				t.Fatalf("symbolic superbox bit %d differs at %v", i, x)
			}
		}
		got, err := EvalSuperboxAt[uint8](a, 3, anf.Bits{}, bits(x))
		if err != nil {
			t.Fatal(err)
		}
		if !gf2.VectorFromBits(got...).Equal(want) {
			t.Fatalf("EvalSuperboxAt(3, %v) = %v, want = %v", x, got, want)
		}
	}

	if _, err := a.SuperboxAt(4, gf2.NewVector(16)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("SuperboxAt(4) err = %v, want = %v", err, ErrDimensionMismatch)
	}
	if _, err := a.Superbox(gf2.NewVector(64)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Superbox(64 bits) err = %v, want = %v", err, ErrDimensionMismatch)
	}
}

func TestInvalidConfig(t *testing.T) {
	base := AESLikeConfig{
		Name:          "toy",
		SBox:          sbox.Midori0(),
		MixColumns:    linearlayer.MidoriMixColumns,
		ShuffleCells:  linearlayer.MidoriShuffleCells,
		NbrSBoxes:     16,
		NbrSuperboxes: 4,
	}

	tests := []struct {
		name string
		edit func(*AESLikeConfig)
	}{
		{"superboxes do not divide S-boxes", func(c *AESLikeConfig) { c.NbrSuperboxes = 3 }},
		{"short ShuffleCells", func(c *AESLikeConfig) { c.ShuffleCells = perm.Identity(8) }},
		{"MixColumns field", func(c *AESLikeConfig) { c.MixColumns = linearlayer.AESMixColumns }},
		{"singular MixColumns", func(c *AESLikeConfig) { c.MixColumns = field.NewMatrix(field.GF16, 4, 4) }},
		{"per-superbox count", func(c *AESLikeConfig) {
			c.MixColumnsPerSuperbox = []field.Matrix{linearlayer.MidoriMixColumns}
		}},
		{"per-superbox without MixColumns", func(c *AESLikeConfig) {
			c.MixColumnsPerSuperbox = []field.Matrix{c.MixColumns, c.MixColumns, c.MixColumns, c.MixColumns}
			c.MixColumns = field.Matrix{}
		}},
		{"zero per-superbox matrix", func(c *AESLikeConfig) {
			c.MixColumnsPerSuperbox = []field.Matrix{c.MixColumns, {}, c.MixColumns, c.MixColumns}
		}},
		{"missing MixColumns", func(c *AESLikeConfig) { c.MixColumns = field.Matrix{} }},
		{"non-bijective S-box", func(c *AESLikeConfig) { c.SBox = sbox.MustNew(0, 0, 1, 1, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15) }},
	}
	for _, tt := range tests {
		cfg := base
		tt.edit(&cfg)
		if _, err := NewAESLike(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want = %v", tt.name, err, ErrInvalidConfig)
		}
	}

	if _, err := New("short", sbox.PRESENT(), linearlayer.PRESENT(), 8); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New err = %v, want = %v", err, ErrInvalidConfig)
	}
	if _, err := present(t).SBoxLayer(gf2.NewVector(63)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("SBoxLayer err = %v, want = %v", err, ErrDimensionMismatch)
	}
	if _, err := present(t).PartialSBoxLayer(gf2.NewVector(68), 16); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("PartialSBoxLayer(68 bits) err = %v, want = %v", err, ErrDimensionMismatch)
	}
	if _, err := present(t).PartialSBoxLayer(gf2.NewVector(8), 2); err != nil {
		t.Errorf("PartialSBoxLayer(8 bits) err = %v", err)
	}
	if _, err := EvalPartialSBoxLayer(present(t), anf.Bits{}, make([]uint8, 68), 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("EvalPartialSBoxLayer(68 bits) err = %v, want = %v", err, ErrDimensionMismatch)
	}
	if _, err := present(t).PartialSBoxLayerInverse(gf2.NewVector(64), 17); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("PartialSBoxLayerInverse(17) err = %v, want = %v", err, ErrDimensionMismatch)
	}
	if _, err := present(t).PartialSBoxLayer(gf2.NewVector(64), -1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("PartialSBoxLayer(-1) err = %v, want = %v", err, ErrDimensionMismatch)
	}
	if _, err := present(t).LinearLayer(gf2.NewVector(65)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("LinearLayer err = %v, want = %v", err, ErrDimensionMismatch)
	}
}

func BenchmarkRound(b *testing.B) {
	c, err := New("PRESENT", sbox.PRESENT(), linearlayer.PRESENT(), 16)
	if err != nil {
		b.Fatal(err)
	}
	x := gf2.NewVector(64)
	b.ReportAllocs()
	for b.Loop() {
		x, _ = c.Round(x)
	}
}
