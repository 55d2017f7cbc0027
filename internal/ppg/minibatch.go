package ppg

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Minibatches is a finite, restartable sequence of shuffled index batches
// over n aligned rows. Every batch has size rows except possibly the last.
type Minibatches struct {
	perm []int
	size int
}

func NewMinibatches(n, size int, seed uint64) Minibatches {
	return Minibatches{
		perm: rand.New(rand.NewSource(seed)).Perm(n),
		size: size,
	}
}

func (m Minibatches) Len() int {
	return (len(m.perm) + m.size - 1) / m.size
}

func (m Minibatches) Batch(k int) []int {
	lo := k * m.size
	return m.perm[lo:min(lo+m.size, len(m.perm))]
}

// Each calls fn for every batch in order, stopping at the first error.
func (m Minibatches) Each(fn func(idx []int) error) error {
	for k := 0; k < m.Len(); k++ {
		if err := fn(m.Batch(k)); err != nil {
			return err
		}
	}
	return nil
}

func gatherRows(src *mat.Dense, idx []int) *mat.Dense {
	_, cols := src.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		out.SetRow(i, src.RawRowView(r))
	}
	return out
}

func gather[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, r := range idx {
		out[i] = src[r]
	}
	return out
}
