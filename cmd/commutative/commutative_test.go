package main

import (
	"errors"
	"slices"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/midori"
)

func TestKeyCount(t *testing.T) {
	tests := []struct {
		keys uint64
		log2 int
		want uint64
	}{
		{10, -1, 10},
		{10, 0, 1},
		{10, 20, 1 << 20},
		{10, 63, 1 << 63},
	}
	for _, tt := range tests {
		got, err := keyCount(tt.keys, tt.log2)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("keyCount(%d, %d) = %d, want = %d", tt.keys, tt.log2, got, tt.want)
		}
	}

	for _, log2 := range []int{64, 100} {
		if _, err := keyCount(10, log2); !errors.Is(err, midori.ErrInvalidParameters) {
			t.Errorf("keyCount(10, %d) err = %v, want = %v", log2, err, midori.ErrInvalidParameters)
		}
	}
}

func TestPlaintexts(t *testing.T) {
	p := midori.DefaultParameters()
	p.MinRound, p.MaxRound = 2, 4

	if err := plaintexts(&p, -1, "3,5", ""); err != nil {
		t.Fatal(err)
	}
	if want := []uint64{8, 32, 32}; !slices.Equal(p.PlaintextsPerRound, want) {
		t.Errorf("plaintexts = %v, want = %v", p.PlaintextsPerRound, want)
	}

	if err := plaintexts(&p, -1, "", "100"); err != nil {
		t.Fatal(err)
	}
	if want := []uint64{100, 100, 100}; !slices.Equal(p.PlaintextsPerRound, want) {
		t.Errorf("plaintexts = %v, want = %v", p.PlaintextsPerRound, want)
	}

	if err := plaintexts(&p, -1, "64", ""); !errors.Is(err, midori.ErrInvalidParameters) {
		t.Errorf("2^64 plaintexts err = %v, want = %v", err, midori.ErrInvalidParameters)
	}
}

func TestParseHex(t *testing.T) {
	for _, s := range []string{"0xC0FFEE", "c0ffee"} {
		if v, err := parseHex(s); err != nil || v != 0xc0ffee {
			t.Errorf("parseHex(%q) = %#x, %v", s, v, err)
		}
	}
	if _, err := parseHex("zz"); !errors.Is(err, midori.ErrInvalidParameters) {
		t.Errorf("parseHex(zz) err = %v", err)
	}
}
