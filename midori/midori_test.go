package midori

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/ciphers"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/testdata"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/spn"
)

func TestEncrypt64(t *testing.T) {
	tests := []struct {
		pt, k0, k1, ct State
	}{
		{0, 0, 0, 0x3c9cceda2bbd449a},
		{0x42c20fd3b586879e, 0x687ded3b3c85b3f3, 0x5b1009863e2a8cbf, 0x66bcdc6270d901cd},
	}
	for _, tt := range tests {
		if got := Encrypt64(tt.pt, tt.k0, tt.k1); got != tt.ct {
			t.Errorf("Encrypt64(%#x, %#x, %#x) = %#x, want = %#x", tt.pt, tt.k0, tt.k1, got, tt.ct)
		}
	}
}

func TestWeakRoundConstants(t *testing.T) {
	for i, c := range WeakRoundConstants {
		if got, want := c>>1, RoundConstants[i]; got != want {
			t.Errorf("WeakRoundConstants[%d] = %#016x", i, c)
		}
	}
	if got, want := WeakRoundConstants[0], State(0x0002020220220022); got != want {
		t.Errorf("WeakRoundConstants[0] = %#016x, want = %#016x", got, want)
	}
}

func TestKeySchedule(t *testing.T) {
	k0, k1 := State(0x1111111111111111), State(0x2222222222222222)
	rks := KeySchedule(k0, k1, NoConstants)
	if len(rks) != Rounds-1 {
		t.Fatalf("%d round keys", len(rks))
	}
	for i, rk := range rks {
		want := k0
		if i%2 == 1 {
			want = k1
		}
		if rk != want {
			t.Errorf("round key %d = %#x, want = %#x", i, rk, want)
		}
	}

	if got, want := KeySchedule(k0, k1, WeakConstants)[3], k1^WeakRoundConstants[3]; got != want {
		t.Errorf("weak round key 3 = %#x, want = %#x", got, want)
	}
}

func TestMixColumnsInvolution(t *testing.T) {
	drbg := testdata.New("midori mix columns")
	for range 100 {
		x := drbg.Uint64()
		if got := MixColumns(MixColumns(x)); got != x {
			t.Fatalf("MC(MC(%#x)) = %#x", x, got)
		}
	}
}

func TestRoundMatchesModel(t *testing.T) {
	c, err := ciphers.Midori()
	if err != nil {
		t.Fatal(err)
	}

	drbg := testdata.New("midori model")
	for range 50 {
		x := drbg.Uint64()
		cells := make([]uint64, 16)
		for i := range cells {
			cells[i] = Nibble(x, i)
		}

		y, err := c.Round(spn.FromCells(4, cells...))
		if err != nil {
			t.Fatal(err)
		}
		var got State
		for i, v := range spn.Cells(y, 4) {
			got |= WithNibble(v, i)
		}

		if want := Round(x, sbox.Midori0(), CellPermutation, 0); got != want {
			t.Errorf("model round(%#x) = %#x, want = %#x", x, got, want)
		}
	}
}

func TestPatterns(t *testing.T) {
	p, err := Pattern("square")
	if err != nil {
		t.Fatal(err)
	}
	for _, wk := range p.WeakKeys {
		if want := []int{0, 2, 5, 7, 8, 10, 13, 15}; !slices.Equal(wk, want) {
			t.Errorf("weak keys = %v, want = %v", wk, want)
		}
	}

	// Nibble 0 is active and mapped through A1; nibble 1 is not.
	if got, want := p.Apply(0x0100000000000000), State(0xf1f00000f0f00000); got != want {
		t.Errorf("Apply = %#016x, want = %#016x", got, want)
	}

	drbg := testdata.New("midori weak keys")
	rng := newTestRand(drbg)
	for range 20 {
		k := p.RandomWeakKey(rng)
		for i, n := range p.Nibbles {
			if !slices.Contains(p.WeakKeys[i], int(Nibble(k, n))) {
				t.Errorf("nibble %d of %#x is not weak", n, k)
			}
		}
	}

	if _, err := Pattern("triangle"); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("Pattern(triangle) err = %v", err)
	}
	if got := len(PatternNames()); got != 10 {
		t.Errorf("%d patterns", got)
	}
}

func TestPatternWriteTo(t *testing.T) {
	var buf bytes.Buffer
	p, _ := Pattern("mixed")
	if _, err := p.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	want := "pattern : mixed\n\tnibble 0 | activity {f b d 9 e a c 8 7 3 5 1 6 2 4 0 } | wk {0 2 5 7 8 a d f }\n"
	if got := buf.String(); !strings.HasPrefix(got, want) {
		t.Errorf("WriteTo = %q, want prefix %q", got, want)
	}
}

func newTestRand(drbg *testdata.DRBG) *rand.Rand {
	return rand.New(rand.NewPCG(drbg.Uint64(), drbg.Uint64()))
}

func params(t *testing.T, label string, minRound, maxRound int, n uint64) *Parameters {
	t.Helper()
	a, err := Pattern(label)
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultParameters()
	p.MinRound, p.MaxRound = minRound, maxRound
	p.Keys = 3
	p.Seed = 0xc0ffee
	p.PrintRes = PrintNoResult
	p.RepeatPatterns(a)
	for range maxRound - minRound + 1 {
		p.PlaintextsPerRound = append(p.PlaintextsPerRound, n)
	}
	return &p
}

func TestObserveOneRound(t *testing.T) {
	// One round is a single S-box layer, which commutes with the square pattern.
	p := params(t, "square", 1, 1, 500)
	counts, err := Observe(context.Background(), p, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Counts{Final0: 1500, All0: 1500, AllEndRound0: 1500}
	if counts[0] != want {
		t.Errorf("counts = %+v, want = %+v", counts[0], want)
	}
}

func TestObserveDeterministic(t *testing.T) {
	base := params(t, "square", 1, 3, 5000)
	want, err := Observe(context.Background(), base, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, mode := range []ParallelMode{ParallelKeys, ParallelPlaintexts} {
		for _, threads := range []int{1, 3, 8} {
			p := params(t, "square", 1, 3, 5000)
			p.Parallel, p.Threads = mode, threads
			got, err := Observe(context.Background(), p, nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("%s with %d threads: %v, want = %v", mode, threads, got, want)
			}
		}
	}
}

func TestObserveOutput(t *testing.T) {
	p := params(t, "square", 1, 2, 64)
	p.PrintRes = PrintFixedKeyResults
	p.Output = OutOverallResults

	var out, results bytes.Buffer
	counts, err := Observe(context.Background(), p, &out, &results)
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Errorf("%d fixed-key lines, want = 3:\n%s", got, out.String())
	}
	wantResults := counts[0].String() + "\n" + counts[1].String() + "\n"
	if got := results.String(); got != wantResults {
		t.Errorf("results = %q, want = %q", got, wantResults)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestObserveWriteError(t *testing.T) {
	for _, pr := range []PrintResults{PrintFixedKeyResults, PrintOverallResults, PrintPlaintextResults} {
		for _, mode := range []ParallelMode{NoParallel, ParallelKeys, ParallelPlaintexts} {
			if pr == PrintPlaintextResults && mode == ParallelKeys {
				continue
			}
			p := params(t, "square", 1, 1, 64)
			p.PrintRes = pr
			p.Parallel, p.Threads = mode, 2
			if _, err := Observe(context.Background(), p, failingWriter{}, nil); !errors.Is(err, errWrite) {
				t.Errorf("%s, %s: err = %v, want = %v", pr, mode, err, errWrite)
			}
		}
	}
}

func TestObserveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Observe(ctx, params(t, "square", 1, 1, 100), nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want = %v", err, context.Canceled)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Parameters)
	}{
		{"round zero", func(p *Parameters) { p.MinRound = 0 }},
		{"too many rounds", func(p *Parameters) { p.MaxRound = Rounds + 1 }},
		{"missing patterns", func(p *Parameters) { p.Patterns = p.Patterns[:1] }},
		{"plaintext counts", func(p *Parameters) { p.PlaintextsPerRound = nil }},
		{"threads", func(p *Parameters) { p.Threads = 0 }},
		{"no keys", func(p *Parameters) { p.Keys = 0 }},
		{"8-bit S-box", func(p *Parameters) { p.SBox = sbox.Streebog() }},
	}
	for _, tt := range tests {
		p := params(t, "square", 1, 2, 1)
		tt.modify(p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("%s: err = %v, want = %v", tt.name, err, ErrInvalidParameters)
		}
	}

	p := params(t, "square", 1, 1, 1)
	p.Output = OutFixedKeyResults
	if _, err := Observe(context.Background(), p, nil, nil); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("missing results writer: err = %v", err)
	}
}

func TestAutoFillPlaintexts(t *testing.T) {
	tests := []struct {
		label string
		want  []uint64
	}{
		{"square", []uint64{1 << 6, 1 << 10}},
		{"mixed", []uint64{1 << 14, 1 << 22}},
		{"square_b", []uint64{1 << 12, 1 << 19}},
		{"tac_proba_075", []uint64{1 << 10, 1 << 16}},
		{"full_b", []uint64{1 << 24, 1 << 35}},
	}
	for _, tt := range tests {
		p := params(t, tt.label, 2, 3, 0)
		if err := p.AutoFillPlaintexts(2); err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(p.PlaintextsPerRound, tt.want) {
			t.Errorf("%s: %v, want = %v", tt.label, p.PlaintextsPerRound, tt.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if c, err := ParseConstants("weak"); err != nil || c != WeakConstants {
		t.Errorf("ParseConstants(weak) = %v, %v", c, err)
	}
	if m, err := ParseParallelMode("parallel_plaintexts"); err != nil || m != ParallelPlaintexts {
		t.Errorf("ParseParallelMode = %v, %v", m, err)
	}
	if o, err := ParseOutputResults("out_overall_results"); err != nil || o != OutOverallResults {
		t.Errorf("ParseOutputResults = %v, %v", o, err)
	}
	if r, err := ParsePrintResults("print_plaintext_results"); err != nil || r != PrintPlaintextResults {
		t.Errorf("ParsePrintResults = %v, %v", r, err)
	}
	if _, err := ParseConstants("strong"); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("ParseConstants(strong) err = %v", err)
	}
}

func TestResultsFile(t *testing.T) {
	dir := t.TempDir()
	p := params(t, "square", 1, 1, 1)

	for version := range 2 {
		f, err := p.CreateResultsFile(dir)
		if err != nil {
			t.Fatal(err)
		}
		_ = f.Close()
		if want := ResultsPath(dir, p.Seed, version); p.Filename != want {
			t.Errorf("Filename = %q, want = %q", p.Filename, want)
		}

		header, err := os.ReadFile(p.Filename)
		if err != nil {
			t.Fatal(err)
		}
		for _, line := range []string{"seed : 0x0000000000c0ffee\n", "parallel_mode : no_parallel\n", "msg_per_round : 0 \n"} {
			if !bytes.Contains(header, []byte(line)) {
				t.Errorf("header lacks %q:\n%s", line, header)
			}
		}
	}

	if seed := NewSeed(dir); seed == 0 {
		t.Error("NewSeed returned 0")
	}
}

func BenchmarkEncrypt64(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		Encrypt64(0x42c20fd3b586879e, 0x687ded3b3c85b3f3, 0x5b1009863e2a8cbf)
	}
}

func TestSelfTest(t *testing.T) {
	if err := SelfTest(); err != nil {
		t.Fatal(err)
	}
}
