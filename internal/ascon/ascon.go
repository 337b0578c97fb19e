// Package ascon implements the Ascon permutation on five 64-bit words, split into its constant addition,
// substitution, and linear diffusion layers so that each can be compared with the Ascon cipher model.
package ascon

import (
	"encoding/binary"
	"math/bits"
)

var constants = [12]uint64{ //nolint:gochecknoglobals // round constants
	0xf0, 0xe1, 0xd2, 0xc3, 0xb4, 0xa5, 0x96, 0x87, 0x78, 0x69, 0x5a, 0x4b,
}

// State is the Ascon state x0, ..., x4.
type State [5]uint64

// Load reads a state from its 40-byte big-endian encoding.
func Load(b *[40]byte) State {
	var s State
	for i := range s {
		s[i] = binary.BigEndian.Uint64(b[8*i:])
	}
	return s
}

// Store writes s in its 40-byte big-endian encoding.
func (s *State) Store(b *[40]byte) {
	for i, x := range s {
		binary.BigEndian.PutUint64(b[8*i:], x)
	}
}

// Permute applies the last rounds rounds of the 12-round Ascon permutation.
func Permute(b *[40]byte, rounds int) {
	if rounds < 1 || rounds > len(constants) {
		panic("ascon: invalid number of rounds")
	}
	s := Load(b)
	for _, c := range constants[len(constants)-rounds:] {
		s.Round(c)
	}
	s.Store(b)
}

// Round applies one round with round constant c.
func (s *State) Round(c uint64) {
	s[2] ^= c
	s.Substitute()
	s.Diffuse()
}

// Substitute applies the 5-bit S-box to each of the 64 bit-slices.
func (s *State) Substitute() {
	s0, s1, s2, s3, s4 := s[0], s[1], s[2], s[3], s[4]

	s0 ^= s4
	s4 ^= s3
	s2 ^= s1

	t0 := ^s0 & s1
	t1 := ^s1 & s2
	t2 := ^s2 & s3
	t3 := ^s3 & s4
	t4 := ^s4 & s0

	s0 ^= t1
	s1 ^= t2
	s2 ^= t3
	s3 ^= t4
	s4 ^= t0

	s1 ^= s0
	s0 ^= s4
	s3 ^= s2
	s2 = ^s2

	*s = State{s0, s1, s2, s3, s4}
}

// Diffuse applies the linear diffusion layer.
func (s *State) Diffuse() {
	s[0] ^= bits.RotateLeft64(s[0], -19) ^ bits.RotateLeft64(s[0], -28)
	s[1] ^= bits.RotateLeft64(s[1], -61) ^ bits.RotateLeft64(s[1], -39)
	s[2] ^= bits.RotateLeft64(s[2], -1) ^ bits.RotateLeft64(s[2], -6)
	s[3] ^= bits.RotateLeft64(s[3], -10) ^ bits.RotateLeft64(s[3], -17)
	s[4] ^= bits.RotateLeft64(s[4], -7) ^ bits.RotateLeft64(s[4], -41)
}

// SBox tabulates the substitution layer on one bit-slice. The input and output values carry x0 in their
// most significant bit.
func SBox() []int {
	t := make([]int, 32)
	for v := range t {
		var s State
		for i := range s {
			s[i] = uint64(v>>(4-i)) & 1
		}
		s.Substitute()
		for i, x := range s {
			t[v] |= int(x&1) << (4 - i)
		}
	}
	return t
}
