package ascon //nolint:testpackage // testing internals

import (
	"encoding/hex"
	"slices"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/testdata"
)

func TestPermute12(t *testing.T) {
	state := [40]byte{} // All zeros
	Permute(&state, 12)

	expectedHex := "78ea7ae5cfebb1089b9bfb8513b560f76937f83e03d11a503fe53f36f2c1178c045d648e4def12c9"
	gotHex := hex.EncodeToString(state[:])

	if gotHex != expectedHex {
		t.Errorf("Permute(0, 12) = %s, want %s", gotHex, expectedHex)
	}
}

func TestSBox(t *testing.T) {
	want := []int{
		4, 11, 31, 20, 26, 21, 9, 2, 27, 5, 8, 18, 29, 3, 6, 28,
		30, 19, 7, 14, 0, 13, 17, 24, 16, 12, 1, 25, 22, 10, 15, 23,
	}
	if got := SBox(); !slices.Equal(got, want) {
		t.Errorf("SBox() = %v, want = %v", got, want)
	}
}

func TestSubstituteSlices(t *testing.T) {
	drbg := testdata.New("ascon slices")
	table := SBox()

	for range 20 {
		var s State
		for i := range s {
			s[i] = drbg.Uint64()
		}
		in := s
		s.Substitute()

		for z := range 64 {
			v := 0
			for i := range in {
				v |= int(in[i]>>z&1) << (4 - i)
			}
			w := 0
			for i := range s {
				w |= int(s[i]>>z&1) << (4 - i)
			}
			if w != table[v] {
				t.Fatalf("slice %d: S(%#x) = %#x, want = %#x", z, v, w, table[v])
			}
		}
	}
}

func TestLoadStore(t *testing.T) {
	drbg := testdata.New("ascon load store")
	var b [40]byte
	copy(b[:], drbg.Data(40))

	s := Load(&b)
	var out [40]byte
	s.Store(&out)
	if out != b {
		t.Errorf("Store(Load(b)) = %x, want = %x", out, b)
	}
}

func BenchmarkPermute12(b *testing.B) {
	var state [40]byte
	b.ReportAllocs()
	b.SetBytes(40)
	for b.Loop() {
		Permute(&state, 12)
	}
}
