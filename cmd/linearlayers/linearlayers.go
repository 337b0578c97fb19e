// Command linearlayers prints the predefined linear layers and, optionally, their branch numbers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/linearlayer"
)

func main() {
	var (
		names   = flag.String("layers", strings.Join(linearlayer.Names(), ","), "comma-separated layer names")
		branch  = flag.Bool("branch", false, "compute differential and linear branch numbers")
		verbose = flag.Bool("v", false, "print the matrices")
		timeout = flag.Duration("timeout", time.Minute, "the time limit of each branch number")
	)
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, name := range strings.Split(*names, ",") {
		l, ok := linearlayer.Lookup(name)
		if !ok {
			log.Error("unknown layer", "name", name, "known", linearlayer.Names())
			os.Exit(2)
		}

		m := l.BinaryMatrix()
		fmt.Printf("%s: %d x %d bits, xor count %d, permutation %t\n", name, m.Rows(), m.Cols(), l.XORCount(), l.IsPermutation())
		if *verbose {
			fmt.Println(l)
		}
		if !*branch {
			continue
		}

		start := time.Now()
		d, err := branchNumber(ctx, *timeout, l.DifferentialBranchNumberContext)
		if err != nil {
			log.Error("differential branch number", "layer", name, "err", err)
			continue
		}
		lin, err := branchNumber(ctx, *timeout, l.LinearBranchNumberContext)
		if err != nil {
			log.Error("linear branch number", "layer", name, "err", err)
			continue
		}
		fmt.Printf("\tdifferential branch number %d, linear branch number %d\n", d, lin)
		log.Debug("branch numbers computed", "layer", name, "elapsed", time.Since(start))
	}
}

func branchNumber(ctx context.Context, timeout time.Duration, f func(context.Context) (int, error)) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return f(ctx)
}
