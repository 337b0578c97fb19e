package linearlayer

import (
	"context"
	"fmt"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/field"
	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/internal/perm"
)

// State is a cipher state laid out as a grid of cells, State[r][c] being row r of column c.
type State [][]field.Element

// AESLike is a linear layer made of a ShuffleCells permutation of the cells followed by a MixColumns matrix
// applied to each column. Cell 4c+r of the state vector is row r of column c for four-row states; in general
// columns are contiguous runs of MixColumns().Rows() cells.
type AESLike struct {
	*LinearLayer

	sc perm.Permutation
	mc field.Matrix

	mcDiff, mcLin memo
}

// NewAESLike returns the layer shuffling cells with sc, then multiplying every column by mc.
func NewAESLike(sc perm.Permutation, mc field.Matrix) (*AESLike, error) {
	if mc.Field().Degree() < 2 {
		return nil, fmt.Errorf("%w: MixColumns over %v", ErrInvalidLayer, mc.Field())
	}
	if mc.Rows() != mc.Cols() || mc.Cols() == 0 || len(sc)%mc.Cols() != 0 {
		return nil, fmt.Errorf("%w: %d×%d MixColumns for %d cells", ErrInvalidLayer, mc.Rows(), mc.Cols(), len(sc))
	}

	mcs := make([]field.Matrix, len(sc)/mc.Cols())
	for i := range mcs {
		mcs[i] = mc
	}
	cols, err := ColumnLinearLayer(mcs...)
	if err != nil {
		return nil, err
	}

	m := cols.Matrix().Mul(field.PermutationMatrix(mc.Field(), sc))
	return &AESLike{LinearLayer: NewField(m), sc: sc, mc: mc}, nil
}

// ColumnLinearLayer returns the layer applying mcs[i] to column i of the state, column i being the i-th run of
// mcs[i].Cols() consecutive cells.
func ColumnLinearLayer(mcs ...field.Matrix) (*LinearLayer, error) {
	if len(mcs) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidLayer)
	}
	for _, mc := range mcs[1:] {
		if mc.Field() != mcs[0].Field() {
			return nil, fmt.Errorf("%w: columns over different fields", ErrInvalidLayer)
		}
	}
	return NewField(field.BlockDiagonal(mcs...)), nil
}

// ShuffleCells returns the cell permutation applied first.
func (a *AESLike) ShuffleCells() perm.Permutation {
	return append(perm.Permutation(nil), a.sc...)
}

// MixColumns returns the matrix applied to each column.
func (a *AESLike) MixColumns() field.Matrix {
	return a.mc
}

// DifferentialBranchNumber returns the differential branch number of MixColumns.
func (a *AESLike) DifferentialBranchNumber() int {
	b, _ := a.DifferentialBranchNumberContext(context.Background())
	return b
}

// DifferentialBranchNumberContext is DifferentialBranchNumber with cancellation.
func (a *AESLike) DifferentialBranchNumberContext(ctx context.Context) (int, error) {
	return a.mcDiff.get(ctx, func(ctx context.Context) (int, error) {
		return BranchNumber(ctx, a.mc)
	})
}

// LinearBranchNumber returns the linear branch number of MixColumns.
func (a *AESLike) LinearBranchNumber() int {
	b, _ := a.LinearBranchNumberContext(context.Background())
	return b
}

// LinearBranchNumberContext is LinearBranchNumber with cancellation.
func (a *AESLike) LinearBranchNumberContext(ctx context.Context) (int, error) {
	return a.mcLin.get(ctx, func(ctx context.Context) (int, error) {
		return BranchNumber(ctx, a.mc.Transpose())
	})
}

func (a *AESLike) dims() (rows, cols int) {
	return a.mc.Rows(), len(a.sc) / a.mc.Rows()
}

// VectorToState fills a state column by column, the order in which MixColumns is applied.
func (a *AESLike) VectorToState(v []field.Element) (State, error) {
	return a.vectorToState(v, true)
}

// VectorToStateRowWise fills a state row by row.
func (a *AESLike) VectorToStateRowWise(v []field.Element) (State, error) {
	return a.vectorToState(v, false)
}

func (a *AESLike) vectorToState(v []field.Element, columnWise bool) (State, error) {
	n, m := a.dims()
	if len(v) != n*m {
		return nil, fmt.Errorf("%w: %d cells for a %d×%d state", ErrDimensionMismatch, len(v), n, m)
	}
	s := make(State, n)
	for r := range s {
		s[r] = make([]field.Element, m)
		for c := range m {
			if columnWise {
				s[r][c] = v[c*n+r]
			} else {
				s[r][c] = v[r*m+c]
			}
		}
	}
	return s, nil
}

// StateToVector reads a state column by column.
func (a *AESLike) StateToVector(s State) ([]field.Element, error) {
	return a.stateToVector(s, true)
}

// StateToVectorRowWise reads a state row by row.
func (a *AESLike) StateToVectorRowWise(s State) ([]field.Element, error) {
	return a.stateToVector(s, false)
}

func (a *AESLike) stateToVector(s State, columnWise bool) ([]field.Element, error) {
	n, m := a.dims()
	if len(s) != n {
		return nil, fmt.Errorf("%w: %d rows for a %d×%d state", ErrDimensionMismatch, len(s), n, m)
	}
	v := make([]field.Element, n*m)
	for r, row := range s {
		if len(row) != m {
			return nil, fmt.Errorf("%w: %d columns for a %d×%d state", ErrDimensionMismatch, len(row), n, m)
		}
		for c, e := range row {
			if columnWise {
				v[c*n+r] = e
			} else {
				v[r*m+c] = e
			}
		}
	}
	return v, nil
}

// ApplyState applies the layer to a state grid.
func (a *AESLike) ApplyState(s State) (State, error) {
	v, err := a.StateToVector(s)
	if err != nil {
		return nil, err
	}
	y, err := a.ApplyElements(v)
	if err != nil {
		return nil, err
	}
	return a.VectorToState(y)
}

func (a *AESLike) String() string {
	return fmt.Sprintf("AES like LinearLayer of dimension %d x %d represented by ShuffleCells\n%v\nand MixColumns\n%v",
		a.bin.Rows(), a.bin.Cols(), []int(a.sc), a.mc)
}
