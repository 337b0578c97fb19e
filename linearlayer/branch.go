package linearlayer

import (
	"context"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/gf2"
	"golang.org/x/sync/errgroup"
)

// memo caches a branch number once it has been computed without error.
type memo struct {
	once sync.Once
	done atomic.Bool
	v    int
}

func (m *memo) get(ctx context.Context, compute func(context.Context) (int, error)) (int, error) {
	if m.done.Load() {
		return m.v, nil
	}
	v, err := compute(ctx)
	if err != nil {
		return 0, err
	}
	m.once.Do(func() {
		m.v = v
		m.done.Store(true)
	})
	return m.v, nil
}

// BranchNumber returns the minimum over non-zero x of wt(x) + wt(M·x), counting non-zero cells. This is the
// minimum distance of the code generated by [I | Mᵀ].
//
// Codewords are enumerated by increasing input weight t, and also by output weight when M is invertible. Once
// every codeword with an input or output of weight at most t has been seen, all others weigh at least 2t+2 (or
// t+1 for singular M), which bounds the search.
func BranchNumber(ctx context.Context, m field.Matrix) (int, error) {
	g := newFieldCode(m)
	var inv code
	if m.Rows() == m.Cols() {
		if mi, err := m.Inverse(); err == nil {
			inv = newFieldCode(mi)
		}
	}
	return search(ctx, g, inv)
}

// BinaryBranchNumber is BranchNumber for a matrix over GF(2), where cells are bits.
func BinaryBranchNumber(ctx context.Context, m gf2.Matrix) (int, error) {
	g := newBinaryCode(m)
	var inv code
	if m.IsSquare() {
		if mi, err := m.Inverse(); err == nil {
			inv = newBinaryCode(mi)
		}
	}
	return search(ctx, g, inv)
}

// code enumerates the codewords [x | M·x] for x of a given support.
type code interface {
	cols() int
	order() int

	// weight returns wt(M·x) where x has the given support and non-zero values.
	weight(support []int, vals []field.Element) int
}

func search(ctx context.Context, g, inv code) (int, error) {
	best := math.MaxInt
	for t := 1; t <= g.cols(); t++ {
		b, err := minWeight(ctx, g, t)
		if err != nil {
			return 0, err
		}
		best = min(best, b)

		if inv != nil {
			b, err := minWeight(ctx, inv, t)
			if err != nil {
				return 0, err
			}
			best = min(best, b)
			if best <= 2*t+2 {
				break
			}
		} else if best <= t+1 {
			break
		}
	}
	return best, nil
}

// minWeight returns the minimum codeword weight over inputs of weight exactly t, splitting the supports by their
// first index across workers.
func minWeight(ctx context.Context, g code, t int) (int, error) {
	n := g.cols()
	if t > n {
		return math.MaxInt, nil
	}

	results := make([]int, n-t+1)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for first := range results {
		eg.Go(func() error {
			b, err := minWeightFrom(ctx, g, t, first)
			results[first] = b
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	best := math.MaxInt
	for _, b := range results {
		best = min(best, b)
	}
	return best, nil
}

// minWeightFrom covers the supports of size t starting at first. Scaling x by a non-zero constant scales M·x, so
// the first value is fixed to one.
func minWeightFrom(ctx context.Context, g code, t, first int) (int, error) {
	n, q := g.cols(), g.order()
	support := make([]int, t)
	for i := range support {
		support[i] = first + i
	}
	vals := make([]field.Element, t)

	best := math.MaxInt
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		for i := range vals {
			vals[i] = 1
		}
		for {
			best = min(best, t+g.weight(support, vals))
			if !nextValues(vals[1:], q) {
				break
			}
		}

		if !nextSupport(support[1:], n) {
			break
		}
	}
	return best, nil
}

// nextValues steps an odometer over {1, ..., q-1}^len(vals).
func nextValues(vals []field.Element, q int) bool {
	for i := range vals {
		if int(vals[i]) < q-1 {
			vals[i]++
			return true
		}
		vals[i] = 1
	}
	return false
}

// nextSupport steps to the next increasing sequence of indices below n, in lexicographic order.
func nextSupport(s []int, n int) bool {
	k := len(s)
	for i := k - 1; i >= 0; i-- {
		if s[i] < n-k+i {
			s[i]++
			for j := i + 1; j < k; j++ {
				s[j] = s[j-1] + 1
			}
			return true
		}
	}
	return false
}

type fieldCode struct {
	f       *field.Field
	columns [][]field.Element
}

func newFieldCode(m field.Matrix) *fieldCode {
	c := &fieldCode{f: m.Field(), columns: make([][]field.Element, m.Cols())}
	for j := range c.columns {
		c.columns[j] = make([]field.Element, m.Rows())
		for i := range m.Rows() {
			c.columns[j][i] = m.At(i, j)
		}
	}
	return c
}

func (c *fieldCode) cols() int { return len(c.columns) }
func (c *fieldCode) order() int { return c.f.Order() }

func (c *fieldCode) weight(support []int, vals []field.Element) int {
	y := make([]field.Element, len(c.columns[0]))
	for k, j := range support {
		for i, e := range c.columns[j] {
			y[i] ^= c.f.Mul(vals[k], e)
		}
	}
	w := 0
	for _, e := range y {
		if e != 0 {
			w++
		}
	}
	return w
}

type binaryCode struct {
	columns []gf2.Vector
}

func newBinaryCode(m gf2.Matrix) *binaryCode {
	mt := m.Transpose()
	c := &binaryCode{columns: make([]gf2.Vector, m.Cols())}
	for j := range c.columns {
		c.columns[j] = mt.Row(j)
	}
	return c
}

func (c *binaryCode) cols() int { return len(c.columns) }
func (*binaryCode) order() int { return 2 }

func (c *binaryCode) weight(support []int, _ []field.Element) int {
	y := c.columns[support[0]].Clone()
	for _, j := range support[1:] {
		y.AddInPlace(c.columns[j])
	}
	return y.Weight()
}
