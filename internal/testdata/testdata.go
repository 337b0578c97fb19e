// Package testdata provides a deterministic random source for tests, benchmarks, and fuzz seed corpora.
package testdata

import (
	"crypto/sha3"
	"encoding/binary"
)

// DRBG is a SHAKE128-based deterministic random bit generator.
type DRBG struct {
	h *sha3.SHAKE
}

// New returns a DRBG seeded with the given label.
func New(label string) *DRBG {
	h := sha3.NewSHAKE128()
	_, _ = h.Write([]byte(label))
	return &DRBG{h: h}
}

// Data returns the next n bytes of output.
func (d *DRBG) Data(n int) []byte {
	b := make([]byte, n)
	_, _ = d.h.Read(b)
	return b
}

// Uint64 returns the next 64 bits of output as an integer.
func (d *DRBG) Uint64() uint64 {
	var b [8]byte
	_, _ = d.h.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// IntN returns an integer in [0, n). It panics if n <= 0.
func (d *DRBG) IntN(n int) int {
	if n <= 0 {
		panic("testdata: invalid bound")
	}
	return int(d.Uint64() % uint64(n))
}
