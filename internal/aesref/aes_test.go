package aesref

import (
	"encoding/hex"
	"testing"
)

func TestAES128(t *testing.T) {
	tests := []struct {
		key string
		pt  string
		ct  string
	}{
		// NIST FIPS 197 Appendix A.1 & B
		{"2b7e151628aed2a6abf7158809cf4f3c", "3243f6a8885a308d313198a2e0370734", "3925841d02dc09fbdc118597196a0b32"},
		// https://csrc.nist.gov/CSRC/media/Projects/Cryptographic-Standards-and-Guidelines/documents/examples/AES_Core128.pdf
		{"2b7e151628aed2a6abf7158809cf4f3c", "6bc1bee22e409f96e93d7e117393172a", "3ad77bb40d7a3660a89ecaf32466ef97"},
		{"2b7e151628aed2a6abf7158809cf4f3c", "ae2d8a571e03ac9c9eb76fac45af8e51", "f5d3d58503b9699de785895a96fdbaaf"},
		{"2b7e151628aed2a6abf7158809cf4f3c", "30c81c46a35ce411e5fbc1191a0a52ef", "43b1cd7f598ece23881b00e3ed030688"},
		{"2b7e151628aed2a6abf7158809cf4f3c", "f69f2445df4f9b17ad2b417be66c3710", "7b0c785e27e8ad3f8223207104725dd4"},
	}

	for _, tt := range tests {
		var key, pt [16]byte
		_, _ = hex.Decode(key[:], []byte(tt.key))
		_, _ = hex.Decode(pt[:], []byte(tt.pt))

		ct := Encrypt(pt, expandKey128(key))

		if got := hex.EncodeToString(ct[:]); got != tt.ct {
			t.Errorf("AES-128(%s, %s) = %s, want = %s", tt.key, tt.pt, got, tt.ct)
		}
	}
}

func TestSBox(t *testing.T) {
	s := SBox()
	// FIPS 197, figure 7
	tests := []struct{ x, y int }{{0x00, 0x63}, {0x01, 0x7c}, {0x53, 0xed}, {0xff, 0x16}}
	for _, tt := range tests {
		if got := s[tt.x]; got != tt.y {
			t.Errorf("S(%#x) = %#x, want = %#x", tt.x, got, tt.y)
		}
	}
}

func TestShiftRows(t *testing.T) {
	var s [16]byte
	for i := range s {
		s[i] = byte(i)
	}
	want := [16]byte{0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12, 1, 6, 11}
	if got := ShiftRows(s); got != want {
		t.Errorf("ShiftRows = %v, want = %v", got, want)
	}
}

func TestMixColumns(t *testing.T) {
	// https://en.wikipedia.org/wiki/Rijndael_MixColumns#Test_vectors_for_MixColumn()
	in := [16]byte{0xdb, 0x13, 0x53, 0x45, 0xf2, 0x0a, 0x22, 0x5c, 0x01, 0x01, 0x01, 0x01, 0xc6, 0xc6, 0xc6, 0xc6}
	want := [16]byte{0x8e, 0x4d, 0xa1, 0xbc, 0x9f, 0xdc, 0x58, 0x9d, 0x01, 0x01, 0x01, 0x01, 0xc6, 0xc6, 0xc6, 0xc6}
	if got := MixColumns(in); got != want {
		t.Errorf("MixColumns = %x, want = %x", got, want)
	}
}

func BenchmarkRound(b *testing.B) {
	var s [16]byte
	b.ReportAllocs()
	b.SetBytes(16)
	for b.Loop() {
		s = Round(s)
	}
}

func expandKey128(key [16]byte) [][16]byte {
	var w [44][4]byte
	for i := range 4 {
		copy(w[i][:], key[4*i:4*i+4])
	}

	sbox := SBox()
	rcon := [10]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

	for i := 4; i < 44; i++ {
		temp := w[i-1]
		if i%4 == 0 {
			// RotWord
			temp[0], temp[1], temp[2], temp[3] = temp[1], temp[2], temp[3], temp[0]
			// SubWord
			for j := range 4 {
				temp[j] = byte(sbox[temp[j]])
			}
			temp[0] ^= rcon[i/4-1]
		}
		for j := range 4 {
			w[i][j] = w[i-4][j] ^ temp[j]
		}
	}

	roundKeys := make([][16]byte, 11)
	for i := range roundKeys {
		for j := range 4 {
			copy(roundKeys[i][4*j:4*j+4], w[4*i+j][:])
		}
	}
	return roundKeys
}
