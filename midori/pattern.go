package midori

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/sbox"
)

// ActivityPattern applies a 4-bit map to each of a set of active nibbles, leaving the other nibbles unchanged.
type ActivityPattern struct {
	Label      string
	Nibbles    []int
	Activities []sbox.SBox

	// WeakKeys lists, for each active nibble, the key nibbles k with A(x ⊕ k) = A(x) ⊕ k, for an affine A.
	WeakKeys [][]int
}

// NewActivityPattern returns the pattern applying activities[i] to nibble nibbles[i].
func NewActivityPattern(label string, nibbles []int, activities []sbox.SBox) (*ActivityPattern, error) {
	if len(nibbles) != len(activities) {
		return nil, fmt.Errorf("%w: pattern %s: %d nibbles, %d activities", ErrInvalidParameters, label, len(nibbles), len(activities))
	}
	p := &ActivityPattern{Label: label, Nibbles: slices.Clone(nibbles), Activities: slices.Clone(activities)}
	for i, a := range activities {
		if a.Bits() != 4 || nibbles[i] < 0 || nibbles[i] > 15 {
			return nil, fmt.Errorf("%w: pattern %s: activity on nibble %d", ErrInvalidParameters, label, nibbles[i])
		}
		var wk []int
		for k := range a.Len() {
			if a.Apply(k)^a.Apply(0) == k {
				wk = append(wk, k)
			}
		}
		if len(wk) == 0 {
			return nil, fmt.Errorf("%w: pattern %s: no weak key for nibble %d", ErrInvalidParameters, label, nibbles[i])
		}
		p.WeakKeys = append(p.WeakKeys, wk)
	}
	return p, nil
}

func mustPattern(label string, nibbles []int, activities ...sbox.SBox) *ActivityPattern {
	if len(activities) == 1 {
		for len(activities) < len(nibbles) {
			activities = append(activities, activities[0])
		}
	}
	p, err := NewActivityPattern(label, nibbles, activities)
	if err != nil {
		panic(err)
	}
	return p
}

// Apply applies the pattern to s.
func (p *ActivityPattern) Apply(s State) State {
	for i, n := range p.Nibbles {
		v := Nibble(s, n)
		s ^= WithNibble(v^uint64(p.Activities[i].Apply(int(v))), n)
	}
	return s
}

// IsActive reports whether nibble i is active.
func (p *ActivityPattern) IsActive(i int) bool {
	return slices.Contains(p.Nibbles, i)
}

// RandomWeakKey returns a key whose active nibbles are drawn from the weak keys of the pattern and whose other
// nibbles are uniform.
func (p *ActivityPattern) RandomWeakKey(rng *rand.Rand) State {
	var k State
	for i := range 16 {
		v := rng.Uint64() % 16
		if j := slices.Index(p.Nibbles, i); j >= 0 {
			v = uint64(p.WeakKeys[j][rng.IntN(len(p.WeakKeys[j]))])
		}
		k |= WithNibble(v, i)
	}
	return k
}

// WriteTo prints the pattern, on one line when every active nibble uses the same map.
func (p *ActivityPattern) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	uniform := true
	for _, a := range p.Activities {
		uniform = uniform && a.Equal(p.Activities[0])
	}
	if uniform {
		fmt.Fprintf(&sb, "pattern : %s\tnibble ", p.Label)
		for _, n := range p.Nibbles {
			fmt.Fprintf(&sb, "%x ", n)
		}
		fmt.Fprintf(&sb, "| activity {%s} | wk {%s}\n", hexList(p.Activities[0].Table()), hexList(p.WeakKeys[0]))
	} else {
		fmt.Fprintf(&sb, "pattern : %s\n", p.Label)
		for i, n := range p.Nibbles {
			fmt.Fprintf(&sb, "\tnibble %x | activity {%s} | wk {%s}\n", n, hexList(p.Activities[i].Table()), hexList(p.WeakKeys[i]))
		}
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func hexList(xs []int) string {
	var sb strings.Builder
	for _, x := range xs {
		fmt.Fprintf(&sb, "%x ", x)
	}
	return sb.String()
}

//nolint:gochecknoglobals // constant maps
var (
	// A1 commutes with Sb0.
	A1 = sbox.MustNew(15, 11, 13, 9, 14, 10, 12, 8, 7, 3, 5, 1, 6, 2, 4, 0)

	// A2 and A3 satisfy A2∘Sb0 = Sb0∘A3 and A3∘Sb0 = Sb0∘A2.
	A2 = sbox.MustNew(5, 12, 7, 14, 9, 0, 11, 2, 13, 4, 15, 6, 1, 8, 3, 10)
	A3 = sbox.MustNew(10, 6, 8, 4, 3, 15, 1, 13, 2, 14, 0, 12, 11, 7, 9, 5)

	// A6 and A7 exchange through Sb0 on 12 inputs out of 16.
	A6 = sbox.MustNew(6, 15, 4, 13, 2, 11, 0, 9, 14, 7, 12, 5, 10, 3, 8, 1)
	A7 = sbox.MustNew(1, 0, 3, 2, 8, 9, 10, 11, 6, 7, 4, 5, 15, 14, 13, 12)

	// A8 commutes with Sb0 on 10 inputs out of 16.
	A8 = sbox.MustNew(4, 5, 6, 7, 0, 1, 2, 3, 10, 11, 8, 9, 14, 15, 12, 13)

	// Diff0xF adds 0xf.
	Diff0xF = sbox.MustNew(15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0)
)

//nolint:gochecknoglobals // constant maps
var (
	square = []int{0, 2, 8, 10}
	all    = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

	patterns = map[string]*ActivityPattern{
		"square":        mustPattern("square", square, A1),
		"square2":       mustPattern("square2", []int{4, 6, 12, 14}, A1),
		"square_b":      mustPattern("square_b", []int{4, 6, 12, 14}, A8),
		"full_a":        mustPattern("full_a", all, A1),
		"full_b":        mustPattern("full_b", all, A8),
		"mixed":         mustPattern("mixed", square, A1, Diff0xF, A1, Diff0xF),
		"tic_proba_1":   mustPattern("tic_proba_1", square, A3),
		"tac_proba_1":   mustPattern("tac_proba_1", square, A2),
		"tic_proba_075": mustPattern("tic_proba_075", square, A6),
		"tac_proba_075": mustPattern("tac_proba_075", square, A7),
	}
)

// Pattern returns the built-in pattern with the given label.
func Pattern(label string) (*ActivityPattern, error) {
	p, ok := patterns[label]
	if !ok {
		return nil, fmt.Errorf("%w: unknown pattern %q, want one of %v", ErrInvalidParameters, label, PatternNames())
	}
	return p, nil
}

// PatternNames returns the labels of the built-in patterns in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for n := range patterns {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
