package midori

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

// ErrInvalidParameters is returned when experiment parameters are inconsistent.
var ErrInvalidParameters = errors.New("midori: invalid parameters")

// ParallelMode selects the loop run in parallel by Observe.
type ParallelMode int

const (
	NoParallel ParallelMode = iota
	ParallelKeys
	ParallelPlaintexts
)

// OutputResults selects the counts written to the results file.
type OutputResults int

const (
	OutNoResult OutputResults = iota
	OutFixedKeyResults
	OutOverallResults
)

// PrintResults selects the counts printed on the console.
type PrintResults int

const (
	PrintNoResult PrintResults = iota
	PrintFixedKeyResults
	PrintOverallResults
	PrintPlaintextResults
)

//nolint:gochecknoglobals // enum names
var (
	parallelModeNames  = []string{"no_parallel", "parallel_keys", "parallel_plaintexts"}
	outputResultsNames = []string{"out_no_result", "out_fixed_key_results", "out_overall_results"}
	printResultsNames  = []string{"print_no_result", "print_fixed_key_results", "print_overall_results", "print_plaintext_results"}
)

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("(%d)", i)
	}
	return names[i]
}

func (m ParallelMode) String() string  { return enumName(parallelModeNames, int(m)) }
func (o OutputResults) String() string { return enumName(outputResultsNames, int(o)) }
func (p PrintResults) String() string  { return enumName(printResultsNames, int(p)) }

// ParseParallelMode returns the mode named s.
func ParseParallelMode(s string) (ParallelMode, error) {
	return parseEnum[ParallelMode](parallelModeNames, s)
}

// ParseOutputResults returns the option named s.
func ParseOutputResults(s string) (OutputResults, error) {
	return parseEnum[OutputResults](outputResultsNames, s)
}

// ParsePrintResults returns the option named s.
func ParsePrintResults(s string) (PrintResults, error) {
	return parseEnum[PrintResults](printResultsNames, s)
}

// Parameters configures an experiment. Patterns[0] is applied to the plaintexts and selects k0, Patterns[1]
// selects k1, and Patterns[i] is checked after round i.
type Parameters struct {
	Whitening    State
	Constants    Constants
	SBox         sbox.SBox
	ShuffleCells perm.Permutation
	Patterns     []*ActivityPattern

	MinRound, MaxRound int
	Keys               uint64
	PlaintextsPerRound []uint64

	Seed     uint64
	Filename string
	Parallel ParallelMode
	Threads  int

	Output    OutputResults
	PrintRes  PrintResults
	PrintDiff bool
}

// DefaultParameters returns the defaults of the experiment: Sb0, ShiftRows, no constant, no whitening, and 10
// keys.
func DefaultParameters() Parameters {
	return Parameters{
		Constants:    NoConstants,
		SBox:         sbox.Midori0(),
		ShuffleCells: ShiftRows,
		Keys:         10,
		Threads:      1,
		PrintRes:     PrintFixedKeyResults,
	}
}

// RepeatPatterns sets Patterns to a for every round.
func (p *Parameters) RepeatPatterns(a *ActivityPattern) {
	p.Patterns = p.Patterns[:0]
	for range p.MaxRound + 1 {
		p.Patterns = append(p.Patterns, a)
	}
}

// AlternatePatterns sets Patterns to a, b, a, b, ...
func (p *Parameters) AlternatePatterns(a, b *ActivityPattern) {
	p.Patterns = p.Patterns[:0]
	for i := range p.MaxRound + 1 {
		if i%2 == 0 {
			p.Patterns = append(p.Patterns, a)
		} else {
			p.Patterns = append(p.Patterns, b)
		}
	}
}

// AutoFillPlaintexts sets the number of plaintexts of each round so that about 2^log2ExpectedSuccess pairs
// follow the first pattern through every round.
func (p *Parameters) AutoFillPlaintexts(log2ExpectedSuccess int) error {
	if len(p.Patterns) == 0 {
		return fmt.Errorf("%w: no pattern to derive plaintext counts from", ErrInvalidParameters)
	}
	p.PlaintextsPerRound = p.PlaintextsPerRound[:0]
	for r := p.MinRound; r <= p.MaxRound; r++ {
		var log2 int
		switch p.Patterns[0].Label {
		case "square", "square2", "tic_proba_1", "tac_proba_1":
			log2 = 4*(r-1) + log2ExpectedSuccess
		case "mixed":
			log2 = 8*(r-1) + 4 + log2ExpectedSuccess
		case "square_b":
			log2 = 7*(r-1) + 3 + log2ExpectedSuccess
		case "tic_proba_075", "tac_proba_075":
			log2 = 6*(r-1) + 2 + log2ExpectedSuccess
		default:
			log2 = 11*r + log2ExpectedSuccess
		}
		if log2 < 0 || log2 > 63 {
			return fmt.Errorf("%w: 2^%d plaintexts for round %d", ErrInvalidParameters, log2, r)
		}
		p.PlaintextsPerRound = append(p.PlaintextsPerRound, 1<<log2)
	}
	return nil
}

// Validate checks that the parameters describe a runnable experiment.
func (p *Parameters) Validate() error {
	switch {
	case p.MinRound < 1 || p.MaxRound < p.MinRound || p.MaxRound > Rounds:
		return fmt.Errorf("%w: rounds %d to %d, want 1 <= min <= max <= %d", ErrInvalidParameters, p.MinRound, p.MaxRound, Rounds)
	case len(p.Patterns) < max(p.MaxRound+1, 2):
		return fmt.Errorf("%w: %d patterns for %d rounds", ErrInvalidParameters, len(p.Patterns), p.MaxRound)
	case len(p.PlaintextsPerRound) != p.MaxRound-p.MinRound+1:
		return fmt.Errorf("%w: %d plaintext counts for %d rounds", ErrInvalidParameters, len(p.PlaintextsPerRound), p.MaxRound-p.MinRound+1)
	case p.SBox.Bits() != 4:
		return fmt.Errorf("%w: %d-bit S-box", ErrInvalidParameters, p.SBox.Bits())
	case len(p.ShuffleCells) != 16:
		return fmt.Errorf("%w: ShuffleCells on %d cells", ErrInvalidParameters, len(p.ShuffleCells))
	case p.Keys == 0:
		return fmt.Errorf("%w: no keys", ErrInvalidParameters)
	case p.Threads < 1:
		return fmt.Errorf("%w: %d threads", ErrInvalidParameters, p.Threads)
	}
	for _, a := range p.Patterns {
		if a == nil {
			return fmt.Errorf("%w: missing pattern", ErrInvalidParameters)
		}
	}
	return nil
}

// WriteTo prints the parameters in the header format of results files.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "filename : %s\n", p.Filename)
	fmt.Fprintf(&sb, "seed : 0x%016x\n", p.Seed)
	fmt.Fprintf(&sb, "sbox : %s\n", decList(p.SBox.Table()))
	fmt.Fprintf(&sb, "shuffle_cells : %s\n", decList(p.ShuffleCells))
	for _, a := range p.Patterns {
		_, _ = a.WriteTo(&sb)
	}
	fmt.Fprintf(&sb, "constants : %s\n", p.Constants)
	fmt.Fprintf(&sb, "whitening_key : 0x%016x\n", p.Whitening)
	fmt.Fprintf(&sb, "min_round_index : %d\n", p.MinRound)
	fmt.Fprintf(&sb, "max_round_index : %d\n", p.MaxRound)
	sb.WriteString("msg_per_round : ")
	for _, n := range p.PlaintextsPerRound {
		fmt.Fprintf(&sb, "%d ", max(bits.Len64(n)-1, 0))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "nb_keys : %d\n", p.Keys)
	fmt.Fprintf(&sb, "parallel_mode : %s\n", p.Parallel)
	fmt.Fprintf(&sb, "nb_threads : %d\n", p.Threads)
	fmt.Fprintf(&sb, "output_results : %s\n", p.Output)
	fmt.Fprintf(&sb, "print_res : %s\n", p.PrintRes)
	fmt.Fprintf(&sb, "print_diff : %d\n", boolInt(p.PrintDiff))

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func decList(xs []int) string {
	var sb strings.Builder
	for _, x := range xs {
		fmt.Fprintf(&sb, "%d ", x)
	}
	return sb.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ResultsPath returns dir/results_<seed>_v<version>.txt.
func ResultsPath(dir string, seed uint64, version int) string {
	return filepath.Join(dir, fmt.Sprintf("results_0x%016x_v%d.txt", seed, version))
}

// NewSeed draws random seeds until ResultsPath(dir, seed, 0) does not exist.
func NewSeed(dir string) uint64 {
	for {
		seed := rand.Uint64()
		if seed == 0 {
			continue
		}
		if _, err := os.Stat(ResultsPath(dir, seed, 0)); errors.Is(err, os.ErrNotExist) {
			return seed
		}
	}
}

// CreateResultsFile creates the first unused version of the results file of the seed in dir, records its name
// in Filename, and writes the parameters as its header. The caller closes the file.
func (p *Parameters) CreateResultsFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	for version := 0; ; version++ {
		name := ResultsPath(dir, p.Seed, version)
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		p.Filename = name
		if _, err := p.WriteTo(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		return f, nil
	}
}

// Observation records whether the pattern difference A(s0) ⊕ s1 vanished along an encryption.
type Observation struct {
	C0, C1 State

	// All0 holds when the pattern difference is zero after every layer.
	All0 bool

	// AllEndRound0 holds when it is zero at the end of every round.
	AllEndRound0 bool

	// Final0 holds when it is zero on the ciphertexts.
	Final0 bool
}

// StepByStep encrypts p0 and p1 over the given number of rounds with round keys roundKeys[1], ..., checking
// Patterns[i] after the layers of round i. When trace is not nil, states and differences are printed to it.
func (p *Parameters) StepByStep(roundKeys []State, rounds int, p0, p1 State, trace io.Writer) Observation {
	o := Observation{All0: true, AllEndRound0: true}

	s0, s1 := p0^p.Whitening, p1^p.Whitening
	printPair(trace, "p0 & p1  ", s0, s1, p.Patterns[0])
	o.All0 = p.diff(trace, "input S ", s0, s1, p.Patterns[0]) == 0

	for i := 1; i < rounds; i++ {
		a := p.Patterns[i]

		s0, s1 = SBoxLayer(s0, p.SBox), SBoxLayer(s1, p.SBox)
		o.All0 = p.diff(trace, "input SR", s0, s1, a) == 0 && o.All0

		s0, s1 = ShuffleCells(s0, p.ShuffleCells), ShuffleCells(s1, p.ShuffleCells)
		o.All0 = p.diff(trace, "input MC", s0, s1, a) == 0 && o.All0

		s0, s1 = MixColumns(s0), MixColumns(s1)
		o.All0 = p.diff(trace, "input AC", s0, s1, a) == 0 && o.All0

		s0, s1 = s0^roundKeys[i], s1^roundKeys[i]
		d := p.diff(trace, "input S ", s0, s1, a) == 0
		o.All0 = d && o.All0
		o.AllEndRound0 = d && o.AllEndRound0
	}

	s0 = SBoxLayer(s0, p.SBox) ^ p.Whitening
	s1 = SBoxLayer(s1, p.SBox) ^ p.Whitening
	o.C0, o.C1 = s0, s1

	o.Final0 = p.diff(trace, "output S ", s0, s1, p.Patterns[rounds]) == 0
	printPair(trace, "c0 & c1  ", s0, s1, p.Patterns[rounds])
	o.All0 = o.All0 && o.Final0
	o.AllEndRound0 = o.AllEndRound0 && o.Final0
	return o
}

func (p *Parameters) diff(trace io.Writer, label string, s0, s1 State, a *ActivityPattern) State {
	d := a.Apply(s0) ^ s1
	if trace != nil {
		fmt.Fprintf(trace, "\t%s\t%s\t%s\n", label, formatDiff(d, a), formatDiff(s0^s1, a))
	}
	return d
}

func formatDiff(d State, a *ActivityPattern) string {
	if d == 0 {
		return "................"
	}
	return formatState(d, a, true)
}

func printPair(trace io.Writer, label string, s0, s1 State, a *ActivityPattern) {
	if trace != nil {
		fmt.Fprintf(trace, "\t%s\t%s\t%s\n", label, formatState(s0, a, false), formatState(s1, a, false))
	}
}

// formatState prints the nibbles of s, active ones in red, and zero nibbles as dots when dots is set.
func formatState(s State, a *ActivityPattern, dots bool) string {
	var sb strings.Builder
	for i := range 16 {
		v := Nibble(s, i)
		c := fmt.Sprintf("%x", v)
		if v == 0 && dots {
			c = "."
		}
		if a.IsActive(i) {
			c = "\033[1;31m" + c + "\033[0m"
		}
		sb.WriteString(c)
	}
	sb.WriteString(" ")
	return sb.String()
}

// Counts are the numbers of plaintext pairs for which each Observation held.
type Counts struct {
	Final0, All0, AllEndRound0 uint64
}

func (c *Counts) add(o Counts) {
	c.Final0 += o.Final0
	c.All0 += o.All0
	c.AllEndRound0 += o.AllEndRound0
}

func (c *Counts) observe(o Observation) {
	c.Final0 += uint64(boolInt(o.Final0))
	c.All0 += uint64(boolInt(o.All0))
	c.AllEndRound0 += uint64(boolInt(o.AllEndRound0))
}

func (c Counts) String() string {
	return fmt.Sprintf("%d %d %d | ", c.Final0, c.All0, c.AllEndRound0)
}

// tally is a per-worker accumulator, padded so that workers do not share cache lines.
type tally struct {
	rounds [Rounds + 1]Counts
	_      cpu.CacheLinePad
}

// chunkSize is the number of plaintexts drawn from one generator.
const chunkSize = 1 << 12

// Observe runs the experiment: for each of Keys weak key pairs and each round count, it encrypts
// PlaintextsPerRound random pairs (x, A(x)) and counts the pairs whose pattern difference vanished. Per-key and
// overall counts are printed to out and written to results according to PrintRes and Output; results may be nil
// when Output is OutNoResult. It returns the overall counts, indexed by round − MinRound.
//
// Every key and every chunk of plaintexts has its own generator derived from Seed, so counts do not depend on
// Parallel or Threads.
func Observe(ctx context.Context, p *Parameters, out, results io.Writer) ([]Counts, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Output != OutNoResult && results == nil {
		return nil, fmt.Errorf("%w: %s without a results file", ErrInvalidParameters, p.Output)
	}

	e := &experiment{p: p, out: &lockedWriter{w: out}, results: &lockedWriter{w: results}}
	workers := 1
	if p.Parallel != NoParallel {
		workers = p.Threads
	}

	keyWorkers := 1
	if p.Parallel == ParallelKeys {
		keyWorkers = workers
	}
	tallies := make([]tally, keyWorkers)

	var next atomic.Uint64
	g, ctx := errgroup.WithContext(ctx)
	for w := range keyWorkers {
		g.Go(func() error {
			for {
				k := next.Add(1) - 1
				if k >= p.Keys {
					return nil
				}
				inner := 1
				if p.Parallel == ParallelPlaintexts {
					inner = workers
				}
				if err := e.key(ctx, k, inner, &tallies[w]); err != nil {
					return err
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overall := make([]Counts, p.MaxRound-p.MinRound+1)
	for i := range tallies {
		for r := range overall {
			overall[r].add(tallies[i].rounds[p.MinRound+r])
		}
	}
	if err := e.overall(overall); err != nil {
		return nil, err
	}
	return overall, nil
}

type experiment struct {
	p            *Parameters
	out, results *lockedWriter
}

// key runs every round count for key pair k, spreading plaintext chunks over workers goroutines.
func (e *experiment) key(ctx context.Context, k uint64, workers int, t *tally) error {
	p := e.p
	rng := rand.New(rand.NewPCG(p.Seed, 2*k))
	k0 := p.Patterns[0].RandomWeakKey(rng)
	k1 := p.Patterns[1].RandomWeakKey(rng)
	roundKeys := KeySchedule(k0, k1, p.Constants)

	line := fmt.Sprintf("0x%016x 0x%016x | ", k0, k1)
	if p.Parallel != ParallelKeys && p.PrintRes == PrintPlaintextResults {
		if err := e.out.printf("---------------------------------\n"); err != nil {
			return err
		}
	}

	for r := p.MinRound; r <= p.MaxRound; r++ {
		n := p.PlaintextsPerRound[r-p.MinRound]
		chunks := (n + chunkSize - 1) / chunkSize
		tallies := make([]tally, workers)

		var next atomic.Uint64
		g, ctx := errgroup.WithContext(ctx)
		for w := range workers {
			g.Go(func() error {
				for {
					c := next.Add(1) - 1
					if c >= chunks {
						return nil
					}
					if err := ctx.Err(); err != nil {
						return err
					}
					size := min(chunkSize, n-c*chunkSize)
					if err := e.chunk(k, r, c, size, roundKeys, &tallies[w].rounds[r]); err != nil {
						return err
					}
				}
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var counts Counts
		for i := range tallies {
			counts.add(tallies[i].rounds[r])
		}
		t.rounds[r].add(counts)
		line += counts.String()
	}

	if p.PrintRes == PrintFixedKeyResults {
		if err := e.out.printf("%s\n", line); err != nil {
			return err
		}
	}
	if p.Output == OutFixedKeyResults {
		return e.results.printf("%s\n", line)
	}
	return nil
}

// chunk encrypts size plaintext pairs drawn from the generator of chunk c.
func (e *experiment) chunk(k uint64, r int, c, size uint64, roundKeys []State, counts *Counts) error {
	p := e.p
	rng := rand.New(rand.NewPCG(p.Seed^(2*k+1), uint64(r)<<48|c))
	for range size {
		var p0, p1 State
		for p0 == p1 {
			p0 = rng.Uint64()
			p1 = p.Patterns[0].Apply(p0)
		}

		o := p.StepByStep(roundKeys, r, p0, p1, nil)
		counts.observe(o)

		if p.Parallel == NoParallel && p.PrintDiff && o.Final0 && !o.All0 {
			var sb strings.Builder
			sb.WriteString("\n\n\n")
			p.StepByStep(roundKeys, r, p0, p1, &sb)
			if err := e.out.printf("%s", sb.String()); err != nil {
				return err
			}
		}
		if p.Parallel != ParallelKeys && p.PrintRes == PrintPlaintextResults && o.All0 {
			if err := e.out.printf("0x%016x\n", p0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *experiment) overall(counts []Counts) error {
	var sb strings.Builder
	for _, c := range counts {
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}
	if e.p.Output == OutOverallResults {
		if err := e.results.printf("%s", sb.String()); err != nil {
			return err
		}
	}
	if e.p.PrintRes == PrintOverallResults {
		return e.out.printf("%s", sb.String())
	}
	return nil
}

// lockedWriter serializes writes from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) error {
	if l.w == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, format, args...)
	return err
}
