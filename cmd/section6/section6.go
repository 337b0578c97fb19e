// Command section6 prints the ANFs of the maps A1, A2, and A3 and checks the claims made about them and about
// Sb0 in Section 6 of the paper.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/claims"
)

func main() {
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	if err := claims.Section6(os.Stdout); err != nil {
		log.Error("claim failed", "err", err)
		os.Exit(1)
	}
	log.Info("all claims hold")
}
