// Package midori implements the Midori64 block cipher on 64-bit states and the weak-key experiment observing
// the commutative property of its rounds.
//
// Nibble 0 is the most significant nibble of a state. Nibble i sits in row i mod 4 of column i/4.
package midori

import (
	"errors"
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

// State is a 64-bit Midori state.
type State = uint64

// Rounds is the number of rounds of Midori64.
const Rounds = 16

//nolint:gochecknoglobals // constant tables
var (
	// CellPermutation is the ShuffleCell permutation of Midori64.
	CellPermutation = linearlayer.MidoriShuffleCells

	// ShiftRows is the AES ShiftRows permutation, the default ShuffleCells of the experiment.
	ShiftRows = linearlayer.AESShiftRows

	// RoundConstants are the 15 round constants of Midori64, one bit per nibble.
	RoundConstants = [Rounds - 1]State{
		0x0001010110110011, 0x0111100011000000, 0x1010010000110101, 0x0110001000010011,
		0x0001000001001111, 0x1101000101110000, 0x0000001001100110, 0x0000101111001100,
		0x1001010010000001, 0x0100000010111000, 0x0111000110010111, 0x0010001010001110,
		0x0101000100110000, 0x1111100011001010, 0x1101111110010000,
	}

	// WeakRoundConstants move every round constant bit from bit 0 to bit 1 of its nibble.
	WeakRoundConstants = weaken(RoundConstants)
)

func weaken(cs [Rounds - 1]State) [Rounds - 1]State {
	for i := range cs {
		cs[i] <<= 1
	}
	return cs
}

// Nibble returns nibble i of s.
func Nibble(s State, i int) uint64 {
	return (s >> (4 * (15 - i))) & 0xf
}

// WithNibble returns v placed at nibble i.
func WithNibble(v uint64, i int) State {
	return v << (4 * (15 - i))
}

// SBoxLayer applies s to every nibble.
func SBoxLayer(x State, s sbox.SBox) State {
	var y State
	for i := range 16 {
		y |= WithNibble(uint64(s.Apply(int(Nibble(x, i)))), i)
	}
	return y
}

// ShuffleCells moves nibble p[i] of x to nibble i.
func ShuffleCells(x State, p perm.Permutation) State {
	var y State
	for i, j := range p {
		y |= WithNibble(Nibble(x, j), i)
	}
	return y
}

// MixColumns replaces each nibble with the sum of the three other nibbles of its column.
func MixColumns(x State) State {
	var y State
	for i := range 16 {
		col, row := i/4, i%4
		for j := range 4 {
			if j != row {
				y ^= WithNibble(Nibble(x, 4*col+j), i)
			}
		}
	}
	return y
}

// Constants selects the round constants added by the key schedule.
type Constants int

const (
	NoConstants Constants = iota
	WeakConstants
	StandardConstants
)

//nolint:gochecknoglobals // enum names
var constantsNames = []string{"null", "weak", "standard"}

func (c Constants) String() string {
	if c < 0 || int(c) >= len(constantsNames) {
		return fmt.Sprintf("Constants(%d)", int(c))
	}
	return constantsNames[c]
}

// ParseConstants returns the constants named s.
func ParseConstants(s string) (Constants, error) {
	return parseEnum[Constants](constantsNames, s)
}

// KeySchedule returns the 15 round keys k0, k1, k0, ... with the selected constants added.
func KeySchedule(k0, k1 State, c Constants) []State {
	rks := make([]State, Rounds-1)
	for i := range rks {
		rks[i] = k0
		if i%2 == 1 {
			rks[i] = k1
		}
		switch c {
		case WeakConstants:
			rks[i] ^= WeakRoundConstants[i]
		case StandardConstants:
			rks[i] ^= RoundConstants[i]
		case NoConstants:
		}
	}
	return rks
}

// Round applies SubCell, ShuffleCell, MixColumn, and the round key.
func Round(x State, s sbox.SBox, p perm.Permutation, roundKey State) State {
	x = SBoxLayer(x, s)
	x = ShuffleCells(x, p)
	x = MixColumns(x)
	return x ^ roundKey
}

// Encrypt encrypts pt with rounds rounds, the last of which only substitutes, between two additions of the
// whitening key. Midori64 is Encrypt(pt, Rounds, sbox.Midori0(), CellPermutation, KeySchedule(k0, k1,
// StandardConstants), k0^k1).
func Encrypt(pt State, rounds int, s sbox.SBox, p perm.Permutation, roundKeys []State, whitening State) State {
	if rounds < 1 || rounds-1 > len(roundKeys) {
		panic("midori: not enough round keys")
	}
	x := pt ^ whitening
	for _, rk := range roundKeys[:rounds-1] {
		x = Round(x, s, p, rk)
	}
	return SBoxLayer(x, s) ^ whitening
}

// Encrypt64 is Midori64 with the 128-bit key k0 ‖ k1.
func Encrypt64(pt, k0, k1 State) State {
	return Encrypt(pt, Rounds, sbox.Midori0(), CellPermutation, KeySchedule(k0, k1, StandardConstants), k0^k1)
}

func parseEnum[E ~int](names []string, s string) (E, error) {
	for i, n := range names {
		if n == s {
			return E(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q, want one of %v", ErrInvalidParameters, s, names)
}

// ErrTestVector is returned by SelfTest when Encrypt64 disagrees with a published test vector.
var ErrTestVector = errors.New("midori: test vector mismatch")

// SelfTest checks Encrypt64 against the test vectors of the Midori paper.
func SelfTest() error {
	vectors := []struct{ pt, k0, k1, ct State }{
		{0, 0, 0, 0x3c9cceda2bbd449a},
		{0x42c20fd3b586879e, 0x687ded3b3c85b3f3, 0x5b1009863e2a8cbf, 0x66bcdc6270d901cd},
	}
	for i, v := range vectors {
		if got := Encrypt64(v.pt, v.k0, v.k1); got != v.ct {
			return fmt.Errorf("%w: vector %d: got 0x%016x, want 0x%016x", ErrTestVector, i, got, v.ct)
		}
	}
	return nil
}
