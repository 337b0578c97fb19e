// Package aesref is a bitsliced, pure Go implementation of the AES round function, used as an independent
// reference for the AES cipher model.
//
// States are 16 bytes in FIPS 197 order: byte 4c+r is row r of column c.
package aesref

// Round applies SubBytes, ShiftRows, and MixColumns, without a round key.
func Round(state [16]byte) [16]byte {
	q := pack(state)
	q = sbox(q)
	q = shiftRows(q)
	q = mixColumns(q)
	return unpack(q)
}

// Encrypt applies AddRoundKey followed by a full AES round for each round key but the first and last, and a
// final round without MixColumns. With 11 round keys this is AES-128.
func Encrypt(state [16]byte, roundKeys [][16]byte) [16]byte {
	state = xor(state, roundKeys[0])
	for _, rk := range roundKeys[1 : len(roundKeys)-1] {
		state = xor(Round(state), rk)
	}
	state = ShiftRows(SubBytes(state))
	return xor(state, roundKeys[len(roundKeys)-1])
}

// SubBytes applies the AES S-box to each byte.
func SubBytes(state [16]byte) [16]byte {
	return unpack(sbox(pack(state)))
}

// ShiftRows rotates row r left by r positions.
func ShiftRows(state [16]byte) [16]byte {
	return unpack(shiftRows(pack(state)))
}

// MixColumns multiplies each column by the AES circulant matrix.
func MixColumns(state [16]byte) [16]byte {
	return unpack(mixColumns(pack(state)))
}

// SBox returns the lookup table of the AES S-box.
func SBox() []int {
	t := make([]int, 256)
	var s [16]byte
	for x := range 16 {
		for i := range 16 {
			s[i] = byte(16*x + i)
		}
		s = SubBytes(s)
		for i := range 16 {
			t[16*x+i] = int(s[i])
		}
	}
	return t
}

func xor(a, b [16]byte) [16]byte {
	for i := range 16 {
		a[i] ^= b[i]
	}
	return a
}

// pack transposes the state so that q[k] holds bit k of every byte, byte i at bit i.
func pack(s [16]byte) (q [8]uint16) {
	for i := range 16 {
		b := uint16(s[i])
		for k := range 8 {
			q[k] |= ((b >> k) & 1) << i
		}
	}
	return q
}

func unpack(q [8]uint16) (s [16]byte) {
	for i := range 16 {
		var b uint16
		for k := range 8 {
			b |= ((q[k] >> i) & 1) << k
		}
		s[i] = byte(b)
	}
	return s
}

func shiftRows(q [8]uint16) [8]uint16 {
	rot := func(in uint16) uint16 {
		return (in & 0x1111) |
			((in & 0x2220) >> 4) | ((in & 0x0002) << 12) |
			((in & 0x4400) >> 8) | ((in & 0x0044) << 8) |
			((in & 0x0888) << 4) | ((in & 0x8000) >> 12)
	}
	var r [8]uint16
	for k := range 8 {
		r[k] = rot(q[k])
	}
	return r
}

func mixColumns(q [8]uint16) [8]uint16 {
	// xtime
	t := [8]uint16{q[7], q[0] ^ q[7], q[1], q[2] ^ q[7], q[3] ^ q[7], q[4], q[5], q[6]}

	// Rotations of the bytes within each column.
	rot1 := func(x uint16) uint16 { return (x>>1)&0x7777 | (x&0x1111)<<3 }
	rot2 := func(x uint16) uint16 { return (x>>2)&0x3333 | (x&0x3333)<<2 }
	rot3 := func(x uint16) uint16 { return (x>>3)&0x1111 | (x&0x7777)<<1 }

	var r [8]uint16
	for k := range 8 {
		r[k] = t[k] ^ rot1(t[k]^q[k]) ^ rot2(q[k]) ^ rot3(q[k])
	}
	return r
}

func mul(a, b [8]uint16) [8]uint16 {
	var p [15]uint16
	for i := range 8 {
		for j := range 8 {
			p[i+j] ^= a[i] & b[j]
		}
	}
	return reduce(&p)
}

func sq(a [8]uint16) [8]uint16 {
	var p [15]uint16
	for i := range 8 {
		p[2*i] = a[i]
	}
	return reduce(&p)
}

func reduce(p *[15]uint16) [8]uint16 {
	// x^8 + x^4 + x^3 + x + 1
	for i := 14; i >= 8; i-- {
		v := p[i]
		p[i-4] ^= v
		p[i-5] ^= v
		p[i-7] ^= v
		p[i-8] ^= v
	}
	return [8]uint16(p[:8])
}

// inv computes a^254.
func inv(a [8]uint16) [8]uint16 {
	res := sq(a)
	x := res
	for range 6 {
		x = sq(x)
		res = mul(res, x)
	}
	return res
}

func affine(a [8]uint16) [8]uint16 {
	var s [8]uint16
	for i := range 8 {
		s[i] = a[i] ^ a[(i+4)%8] ^ a[(i+5)%8] ^ a[(i+6)%8] ^ a[(i+7)%8]
	}
	// 0x63
	s[0] = ^s[0]
	s[1] = ^s[1]
	s[5] = ^s[5]
	s[6] = ^s[6]
	return s
}

func sbox(u [8]uint16) [8]uint16 {
	return affine(inv(u))
}
