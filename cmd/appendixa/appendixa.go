// Command appendixa checks the claims of Appendix A of the paper: Sb0 conjugated by G has a probability-one
// differential, and G⁻¹∘T_0xd∘G equals A1.
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

	if err := claims.AppendixA(os.Stdout); err != nil {
		log.Error("claim failed", "err", err)
		os.Exit(1)
	}
	log.Info("all claims hold")
}
