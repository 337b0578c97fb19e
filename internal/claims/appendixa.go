package claims

import (
	"fmt"
	"io"
	"slices"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/anf"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/midori"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

//nolint:gochecknoglobals // constant maps
var (
	// gG is the quadratic part G_g of the conjugator.
	gG = sbox.MustNew(0, 1, 3, 2, 4, 5, 7, 6, 8, 9, 10, 11, 12, 13, 14, 15)

	// lA is its linear part L_a.
	lA = sbox.MustNew(0, 5, 1, 4, 2, 7, 3, 6, 8, 13, 9, 12, 10, 15, 11, 14)
)

// Conjugator returns G = G_g∘L_a⁻¹, the map conjugating Sb0 into an S-box with a probability-one differential.
func Conjugator() sbox.SBox {
	return sbox.Compose(gG, lA.MustInverse())
}

// MixColumn returns the lookup table of the Midori MixColumn on one 16-bit column, nibble j being bits 4j to
// 4j+3.
func MixColumn() (sbox.SBox, error) {
	l := linearlayer.NewField(linearlayer.MidoriMixColumns)
	t := make([]int, 1<<16)
	x := make([]field.Element, 4)
	for v := range t {
		for j := range x {
			x[j] = field.Element((v >> (4 * j)) & 0xf)
		}
		y, err := l.ApplyElements(x)
		if err != nil {
			return sbox.SBox{}, err
		}
		for j, e := range y {
			t[v] |= int(e) << (4 * j)
		}
	}
	return sbox.New(t...)
}

// conjugatedKeyAddition returns the ANF of x ↦ g(g⁻¹(x) ⊕ k) in the ring x0..x3, k0..k3.
func conjugatedKeyAddition(r *anf.Ring, g sbox.SBox) []anf.Poly {
	subs := make(map[int]anf.Poly, 4)
	for i, p := range g.MustInverse().ANFIn(r) {
		subs[i] = p.Add(r.Var(4 + i))
	}
	out := g.ANFIn(r)
	for i, p := range out {
		out[i] = p.Substitute(subs)
	}
	return out
}

// AppendixA checks the claims of Appendix A: conjugating Sb0 by G gives the probability-one differential
// 0xd → 0xd, which extends to 0xdddd → 0xdddd through the conjugated MixColumn, and G⁻¹∘T_0xd∘G = A1, where T_c
// adds c.
func AppendixA(w io.Writer) error {
	s := sbox.Midori0()

	// A.3.3
	writeANF(w, gG, "ANF G_g")
	writeANF(w, lA, "ANF L_a")

	g := Conjugator()
	gInv := g.MustInverse()
	fmt.Fprintf(w, "Look up table of G_ag %v \n\n", g)
	writeANF(w, g, "ANF G_ag")

	conj := sbox.Compose(g, s, gInv)
	fmt.Fprintf(w, "Look up table of S_conjugate %v \n\n", conj)
	for _, row := range conj.DDT() {
		fmt.Fprintln(w, sbox.FormatList(row))
	}

	if b := conj.DifferentialsWithCount(0xd, conj.Len()); !slices.Equal(b, []int{0xd}) {
		return check(false, "0xd → %v with probability one through G∘S∘G⁻¹, want 0xd", b)
	}
	mc, err := MixColumn()
	if err != nil {
		return err
	}
	g4 := g.Parallel(4)
	conjMC := sbox.Compose(g4, mc, g4.MustInverse())
	if b := conjMC.DifferentialsWithCount(0xdddd, conjMC.Len()); !slices.Equal(b, []int{0xdddd}) {
		return check(false, "0xdddd → %v with probability one through G∘MC∘G⁻¹, want 0xdddd", b)
	}

	// A.3.4
	const diff = 0xd
	r := anf.NewRing("x0", "x1", "x2", "x3", "k0", "k1", "k2", "k3")
	shift := make(map[int]anf.Poly, 4)
	for i := range 4 {
		shift[i] = r.Var(i).Add(r.Constant(diff >> i))
	}
	fmt.Fprintln(w, "\nDerivative of G_Tk_Gi toward 0xd")
	for _, p := range conjugatedKeyAddition(r, g) {
		fmt.Fprintln(w, p.Substitute(shift).Add(p))
	}
	fmt.Fprintln(w)

	writeANF(w, midori.A1, "ANF A_1 and Gi o T_0xd o G")
	want := midori.A1.ANF()

	key := make(map[int]anf.Poly, 4)
	for i := range 4 {
		key[4+i] = r.Constant(diff >> i)
	}
	for i, p := range conjugatedKeyAddition(r, gInv) {
		if got := p.Substitute(key); !got.Equal(want[i]) {
			return check(false, "coordinate %d of G⁻¹∘T_0xd∘G is %v, want %v", i, got, want[i])
		}
	}
	return nil
}
