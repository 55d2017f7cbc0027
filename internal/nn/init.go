package nn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// TanhGain is the recommended orthogonal-init gain ahead of a tanh nonlinearity.
const TanhGain = 5.0 / 3.0

// Orthogonal returns an in x out weight matrix for a layer storing W as
// (in x out). The larger of the two dimensions carries orthonormal vectors
// scaled by gain.
func Orthogonal(in, out int, gain float64, rng *rand.Rand) *mat.Dense {
	big, small := in, out
	if out > in {
		big, small = out, in
	}

	a := mat.NewDense(big, small, nil)
	for i := 0; i < big; i++ {
		for j := 0; j < small; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}

	var qr mat.QR
	qr.Factorize(a)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	// Sign-correct by diag(R) so the result is uniformly distributed.
	w := mat.NewDense(big, small, nil)
	for j := 0; j < small; j++ {
		sign := 1.0
		if r.At(j, j) < 0 {
			sign = -1
		}
		for i := 0; i < big; i++ {
			w.Set(i, j, gain*sign*q.At(i, j))
		}
	}
	if big == in {
		return w
	}

	var t mat.Dense
	t.CloneFrom(w.T())
	return &t
}
