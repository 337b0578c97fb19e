package perm

import (
	"errors"
	"slices"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
)

func TestNew(t *testing.T) {
	if _, err := New(0, 1, 1); !errors.Is(err, ErrNotPermutation) {
		t.Errorf("New(0, 1, 1) err = %v, want = %v", err, ErrNotPermutation)
	}

	if _, err := New(0, 3, 1); !errors.Is(err, ErrNotPermutation) {
		t.Errorf("New(0, 3, 1) err = %v, want = %v", err, ErrNotPermutation)
	}
}

func TestScatterGather(t *testing.T) {
	// AES ShiftRows on column-major cells, written both ways.
	gather := MustNew(0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12, 1, 6, 11)
	scatter, err := FromScatter(0, 13, 10, 7, 4, 1, 14, 11, 8, 5, 2, 15, 12, 9, 6, 3)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(gather, scatter) {
		t.Errorf("FromScatter = %v, want = %v", scatter, gather)
	}
}

func TestThen(t *testing.T) {
	p := MustNew(1, 2, 3, 0)
	q := MustNew(3, 1, 0, 2)
	x := []string{"a", "b", "c", "d"}

	if got, want := Apply(p.Then(q), x), Apply(q, Apply(p, x)); !slices.Equal(got, want) {
		t.Errorf("Apply(p.Then(q)) = %v, want = %v", got, want)
	}

	if got, want := p.Then(p.Inverse()), Identity(4); !slices.Equal(got, want) {
		t.Errorf("p.Then(p⁻¹) = %v, want = %v", got, want)
	}
}

func TestMatrix(t *testing.T) {
	p := MustNew(2, 0, 1)
	x := gf2.VectorFromUint64(0b11_01_10, 6)

	// cells 0b10, 0b01, 0b11 gathered as cells 2, 0, 1.
	if got, want := p.Matrix(2).MulVec(x), gf2.VectorFromUint64(0b01_10_11, 6); !got.Equal(want) {
		t.Errorf("Matrix(2)·x = %v, want = %v", got, want)
	}

	if !p.Matrix(2).IsPermutation() {
		t.Error("Matrix(2) is not a permutation")
	}
}
