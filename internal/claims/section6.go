package claims

import (
	"io"
	"slices"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/midori"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

// Section6 checks the claims of Section 6: the maps A1, A2, A3 commute with Sb0 up to exchanging A2 and A3, their
// linear parts fix the same space V = ⟨0x2, 0x5, 0x8⟩, the internal differences of A1 lie in {0xa, 0xf}, and
// A6, A7, A8 commute with Sb0 on 12, 12, and 10 inputs.
func Section6(w io.Writer) error {
	s := sbox.Midori0()
	a1, a2, a3 := midori.A1, midori.A2, midori.A3

	writeANF(w, a1, "ANF A1")
	writeANF(w, a2, "ANF A2")
	writeANF(w, a3, "ANF A3")

	// 6.1.1
	checks := []struct {
		ok   bool
		what string
	}{
		{sbox.Compose(a1, s).Equal(sbox.Compose(s, a1)), "A1∘S = S∘A1"},
		{sbox.Compose(a2, s).Equal(sbox.Compose(s, a3)), "A2∘S = S∘A3"},
		{sbox.Compose(a3, s).Equal(sbox.Compose(s, a2)), "A3∘S = S∘A2"},
		{sbox.Compose(a2, a3).Equal(a1), "A2∘A3 = A1"},
		{sbox.Compose(a3, a2).Equal(a1), "A3∘A2 = A1"},
	}
	for _, c := range checks {
		if err := check(c.ok, "%s", c.what); err != nil {
			return err
		}
	}

	fix1 := a1.LinearPart().FixedPoints()
	fix2 := a2.LinearPart().FixedPoints()
	fix3 := a3.LinearPart().FixedPoints()
	if err := check(slices.Equal(fix1, []int{0, 2, 5, 7, 8, 10, 13, 15}), "fixed points of L(A1) = %v", fix1); err != nil {
		return err
	}
	if err := check(slices.Equal(fix1, fix2) && slices.Equal(fix1, fix3), "L(A1), L(A2), L(A3) fix different spaces"); err != nil {
		return err
	}

	// 6.1.3
	u := internalDifferences(a1)
	if err := check(allIn(u, 0xa, 0xf), "internal differences of A1 %v outside {0xa, 0xf}", u); err != nil {
		return err
	}
	if err := check(count(u, 0xa) == 8 && count(u, 0xf) == 8, "internal differences of A1 %v are not balanced", u); err != nil {
		return err
	}

	// 6.3
	a6, a7, a8 := midori.A6, midori.A7, midori.A8
	if n := sbox.XOR(sbox.Compose(a6, s), sbox.Compose(s, a7)).Count(0); n != 12 {
		return check(false, "A6∘S = S∘A7 on %d inputs, want 12", n)
	}
	if n := sbox.XOR(sbox.Compose(a7, s), sbox.Compose(s, a6)).Count(0); n != 12 {
		return check(false, "A7∘S = S∘A6 on %d inputs, want 12", n)
	}
	if n := len(a6.LinearPart().FixedPoints()); n != 8 {
		return check(false, "L(A6) has %d fixed points, want 8", n)
	}
	if n := len(a7.LinearPart().FixedPoints()); n != 4 {
		return check(false, "L(A7) has %d fixed points, want 4", n)
	}

	if n := sbox.XOR(sbox.Compose(a8, s), sbox.Compose(s, a8)).Count(0); n != 10 {
		return check(false, "A8∘S = S∘A8 on %d inputs, want 10", n)
	}
	fix8 := a8.LinearPart().FixedPoints()
	return check(len(fix8) == 8 && slices.Contains(fix8, 1), "fixed points of L(A8) = %v", fix8)
}
