// Package claims checks the algebraic claims about Midori made in Section 6 and Appendix A of "Commutative
// Cryptanalysis Made Practical", printing the ANFs, lookup tables, and difference distribution tables they rely
// on.
//
// Variables are indexed from 0, where the paper indexes them from 1.
package claims

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/anf"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

// ErrClaim is returned when a claimed identity does not hold.
var ErrClaim = errors.New("claims: identity does not hold")

const (
	blue     = "\033[94m"
	endColor = "\033[0m"
)

func check(ok bool, format string, args ...any) error {
	if !ok {
		return fmt.Errorf("%w: %s", ErrClaim, fmt.Sprintf(format, args...))
	}
	return nil
}

// writeANF prints the coordinate functions of s under a label, marking the least and most significant bits.
func writeANF(w io.Writer, s sbox.SBox, label string) {
	writePolys(w, s.ANF(), label)
}

func writePolys(w io.Writer, ps []anf.Poly, label string) {
	var sb strings.Builder
	if label != "" {
		fmt.Fprintf(&sb, "%s %s %s\n", strings.Repeat("-", 10), label, strings.Repeat("-", 10))
	}
	for i, p := range ps {
		switch i {
		case 0:
			sb.WriteString(blue + "LSB\t\t" + endColor)
		case len(ps) - 1:
			sb.WriteString(blue + "MSB\t\t" + endColor)
		default:
			sb.WriteString(strings.Repeat(" ", 8))
		}
		fmt.Fprintf(&sb, "y%d = %v\n", i, p)
	}
	sb.WriteString("\n")
	_, _ = io.WriteString(w, sb.String())
}

// internalDifferences returns x ⊕ A(x) for every x.
func internalDifferences(a sbox.SBox) []int {
	u := make([]int, a.Len())
	for x := range u {
		u[x] = x ^ a.Apply(x)
	}
	return u
}

func count(xs []int, v int) int {
	n := 0
	for _, x := range xs {
		if x == v {
			n++
		}
	}
	return n
}

func allIn(xs []int, set ...int) bool {
	for _, x := range xs {
		if !slices.Contains(set, x) {
			return false
		}
	}
	return true
}
