package spn

import (
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/anf"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
)

// EvalSBoxLayer applies the S-box layer of c to a state over alg, through the coordinate functions of the
// S-box. On concrete bits it agrees with Cipher.SBoxLayer.
func EvalSBoxLayer[T any](c *Cipher, alg anf.Algebra[T], state []T) ([]T, error) {
	if len(state) != c.Bits() {
		return nil, fmt.Errorf("%w: %d bits for a %d-bit state", ErrDimensionMismatch, len(state), c.Bits())
	}
	return evalSBoxes(c.anf, alg, state, c.nbrSBoxes)
}

// EvalPartialSBoxLayer applies the S-box to the first n cells of state, copying the remaining coordinates.
func EvalPartialSBoxLayer[T any](c *Cipher, alg anf.Algebra[T], state []T, n int) ([]T, error) {
	if err := c.checkPartial(len(state), n); err != nil {
		return nil, err
	}
	return evalSBoxes(c.anf, alg, state, n)
}

// EvalSBoxLayerInverse is EvalSBoxLayer with the inverse S-box.
func EvalSBoxLayerInverse[T any](c *Cipher, alg anf.Algebra[T], state []T) ([]T, error) {
	if len(state) != c.Bits() {
		return nil, fmt.Errorf("%w: %d bits for a %d-bit state", ErrDimensionMismatch, len(state), c.Bits())
	}
	return evalSBoxes(c.anfInv, alg, state, c.nbrSBoxes)
}

// EvalLinearLayer applies the linear layer of c to a state over alg.
func EvalLinearLayer[T any](c *Cipher, alg anf.Algebra[T], state []T) ([]T, error) {
	return evalMatrix(c.l.BinaryMatrix(), alg, state)
}

// EvalLinearLayerInverse applies the inverse linear layer of c to a state over alg.
func EvalLinearLayerInverse[T any](c *Cipher, alg anf.Algebra[T], state []T) ([]T, error) {
	return evalMatrix(c.lInv.BinaryMatrix(), alg, state)
}

// EvalRound applies the S-box layer, then the linear layer, over alg.
func EvalRound[T any](c *Cipher, alg anf.Algebra[T], state []T) ([]T, error) {
	y, err := EvalSBoxLayer(c, alg, state)
	if err != nil {
		return nil, err
	}
	return EvalLinearLayer(c, alg, y)
}

// EvalSuperbox is Superbox over alg.
func EvalSuperbox[T any](a *AESLike, alg anf.Algebra[T], state []T) ([]T, error) {
	return evalSuperbox(a, a.mcBin, alg, state)
}

// EvalSuperboxAt is SuperboxAt over alg.
func EvalSuperboxAt[T any](a *AESLike, i int, alg anf.Algebra[T], state []T) ([]T, error) {
	mc, err := a.superboxMatrix(i)
	if err != nil {
		return nil, err
	}
	return evalSuperbox(a, mc, alg, state)
}

func evalSuperbox[T any](a *AESLike, mc gf2.Matrix, alg anf.Algebra[T], state []T) ([]T, error) {
	if len(state) != a.SuperboxBits() {
		return nil, fmt.Errorf("%w: %d bits for a %d-bit superbox", ErrDimensionMismatch, len(state), a.SuperboxBits())
	}
	n := a.SBoxesPerSuperbox()
	y, err := evalSBoxes(a.anf, alg, state, n)
	if err != nil {
		return nil, err
	}
	if y, err = evalMatrix(mc, alg, y); err != nil {
		return nil, err
	}
	return evalSBoxes(a.anf, alg, y, n)
}

func evalSBoxes[T any](fs []anf.Poly, alg anf.Algebra[T], state []T, n int) ([]T, error) {
	b := len(fs)
	if n < 0 || len(state) < n*b {
		return nil, fmt.Errorf("%w: %d S-boxes on %d bits", ErrDimensionMismatch, n, len(state))
	}
	out := append([]T(nil), state...)
	for j := range n {
		in := state[b*j : b*j+b]
		for i, f := range fs {
			out[b*j+i] = anf.Eval(alg, f, in)
		}
	}
	return out, nil
}

func evalMatrix[T any](m gf2.Matrix, alg anf.Algebra[T], x []T) ([]T, error) {
	if len(x) != m.Cols() {
		return nil, fmt.Errorf("%w: %d bits for a %d-column matrix", ErrDimensionMismatch, len(x), m.Cols())
	}
	y := make([]T, m.Rows())
	for i := range y {
		acc := alg.Zero()
		for _, j := range m.Row(i).Support() {
			acc = alg.Add(acc, x[j])
		}
		y[i] = acc
	}
	return y, nil
}
