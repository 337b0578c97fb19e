// Command commutative runs the weak-key experiment on round-reduced Midori64, counting the plaintext pairs whose
// difference follows an activity pattern through every round.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/midori"
)

func main() {
	var (
		round           = flag.Int("round", 0, "run a single round count (overrides -min and -max)")
		minRound        = flag.Int("min", 1, "the smallest number of rounds")
		maxRound        = flag.Int("max", 0, "the largest number of rounds (defaults to -min)")
		threads         = flag.Int("threads", 1, "the number of workers")
		keys            = flag.Uint64("keys", 10, "the number of keys per round count")
		keys2           = flag.Int("keys_2", -1, "log2 of the number of keys (overrides -keys)")
		seed            = flag.String("seed", "", "the master seed in hexadecimal (random if empty)")
		whitening       = flag.String("whitening", "0", "the whitening key in hexadecimal")
		constants       = flag.String("constants", midori.NoConstants.String(), "the round constants: null, weak, or standard")
		pattern         = flag.String("pattern", "square", "the activity pattern of every round")
		patternAB       = flag.String("pattern_a_b", "", "two patterns a+b alternating over the rounds")
		expectedSuccess = flag.Int("expected_success", -1, "derive plaintext counts to expect 2^n successes")
		plaintexts2     = flag.String("plaintexts_2", "", "comma-separated log2 plaintext counts, one per round count")
		plaintexts10    = flag.String("plaintexts_10", "", "comma-separated plaintext counts, one per round count")
		parallel        = flag.String("parallel", midori.NoParallel.String(), "the parallel loop: no_parallel, parallel_keys, or parallel_plaintexts")
		output          = flag.String("output", midori.OutNoResult.String(), "the counts written to the results file")
		printRes        = flag.String("print_res", midori.PrintFixedKeyResults.String(), "the counts printed on the console")
		printDiff       = flag.Bool("print_diff", false, "trace the differences of every pair")
		dir             = flag.String("dir", "results", "the directory of results files")
		launch          = flag.Bool("launch", false, "run the experiment rather than only printing the parameters")
	)
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	if err := midori.SelfTest(); err != nil {
		log.Error("midori self test failed", "err", err)
		os.Exit(1)
	}

	p := midori.DefaultParameters()
	p.MinRound, p.MaxRound = *minRound, max(*maxRound, *minRound)
	if *round > 0 {
		p.MinRound, p.MaxRound = *round, *round
	}
	p.Threads = *threads
	p.PrintDiff = *printDiff

	var err error
	p.Keys, err = keyCount(*keys, *keys2)
	if err == nil {
		err = configure(&p, *seed, *whitening, *constants, *parallel, *output, *printRes)
	}
	if err == nil {
		err = patterns(&p, *pattern, *patternAB)
	}
	if err == nil {
		err = plaintexts(&p, *expectedSuccess, *plaintexts2, *plaintexts10)
	}
	if err == nil && p.Seed == 0 {
		p.Seed = midori.NewSeed(*dir)
	}
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		log.Error("invalid parameters", "err", err)
		os.Exit(2)
	}

	if !*launch {
		if _, err := p.WriteTo(os.Stdout); err != nil {
			log.Error("failed to print parameters", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(log, &p, *dir); err != nil {
		log.Error("experiment failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, p *midori.Parameters, dir string) error {
	var results io.Writer
	if p.Output != midori.OutNoResult {
		f, err := p.CreateResultsFile(dir)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Error("failed to close results file", "err", err)
			}
		}()
		results = f
	}
	if _, err := p.WriteTo(os.Stdout); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting experiment", "seed", fmt.Sprintf("0x%016x", p.Seed), "rounds", p.MaxRound, "keys", p.Keys)
	if _, err := midori.Observe(ctx, p, os.Stdout, results); err != nil {
		return err
	}
	log.Info("experiment done", "filename", p.Filename)
	return nil
}

// keyCount returns 2^log2 when log2 is set (non-negative), keys otherwise.
func keyCount(keys uint64, log2 int) (uint64, error) {
	if log2 < 0 {
		return keys, nil
	}
	if log2 > 63 {
		return 0, fmt.Errorf("%w: 2^%d keys", midori.ErrInvalidParameters, log2)
	}
	return 1 << log2, nil
}

func configure(p *midori.Parameters, seed, whitening, constants, parallel, output, printRes string) error {
	var err error
	if seed != "" {
		if p.Seed, err = parseHex(seed); err != nil {
			return err
		}
	}
	if p.Whitening, err = parseHex(whitening); err != nil {
		return err
	}
	if p.Constants, err = midori.ParseConstants(constants); err != nil {
		return err
	}
	if p.Parallel, err = midori.ParseParallelMode(parallel); err != nil {
		return err
	}
	if p.Output, err = midori.ParseOutputResults(output); err != nil {
		return err
	}
	p.PrintRes, err = midori.ParsePrintResults(printRes)
	return err
}

func patterns(p *midori.Parameters, pattern, patternAB string) error {
	if patternAB != "" {
		a, b, ok := strings.Cut(patternAB, "+")
		if !ok {
			return fmt.Errorf("%w: -pattern_a_b %q, want a+b", midori.ErrInvalidParameters, patternAB)
		}
		pa, err := midori.Pattern(a)
		if err != nil {
			return err
		}
		pb, err := midori.Pattern(b)
		if err != nil {
			return err
		}
		p.AlternatePatterns(pa, pb)
		return nil
	}
	a, err := midori.Pattern(pattern)
	if err != nil {
		return err
	}
	p.RepeatPatterns(a)
	return nil
}

// plaintexts sets one plaintext count per round count. A list shorter than the number of round counts repeats
// its last entry.
func plaintexts(p *midori.Parameters, expectedSuccess int, log2List, list string) error {
	if expectedSuccess >= 0 {
		return p.AutoFillPlaintexts(expectedSuccess)
	}

	n := p.MaxRound - p.MinRound + 1
	p.PlaintextsPerRound = make([]uint64, n)
	s, shift := list, false
	if log2List != "" {
		s, shift = log2List, true
	}
	if s == "" {
		return nil
	}

	fields := strings.Split(s, ",")
	for i := range n {
		f := strings.TrimSpace(fields[min(i, len(fields)-1)])
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: plaintext count %q: %w", midori.ErrInvalidParameters, f, err)
		}
		if shift {
			if v > 63 {
				return fmt.Errorf("%w: 2^%d plaintexts", midori.ErrInvalidParameters, v)
			}
			v = 1 << v
		}
		p.PlaintextsPerRound[i] = v
	}
	return nil
}

func parseHex(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: hexadecimal value %q: %w", midori.ErrInvalidParameters, s, err)
	}
	return v, nil
}
