package nn

import (
	"errors"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrShape = errors.New("weight shape mismatch")

// Param pairs a trainable matrix with its accumulated gradient. Grad is nil
// when the parameter received no gradient since the last ZeroGrad.
type Param struct {
	Value *mat.Dense
	Grad  *mat.Dense
}

// Linear is a fully-connected layer computing x W + B for a batch of rows x.
type Linear struct {
	W *mat.Dense // in x out
	B *mat.Dense // 1 x out

	dW    *mat.Dense
	dB    *mat.Dense
	input *mat.Dense
}

// NewLinear returns a layer with orthogonal weights scaled by gain and zero bias.
func NewLinear(in, out int, gain float64, rng *rand.Rand) *Linear {
	return &Linear{
		W: Orthogonal(in, out, gain, rng),
		B: mat.NewDense(1, out, nil),
	}
}

func (l *Linear) In() int {
	r, _ := l.W.Dims()
	return r
}

func (l *Linear) Out() int {
	_, c := l.W.Dims()
	return c
}

// Forward caches x for the following Backward call.
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	l.input = x
	var y mat.Dense
	y.Mul(x, l.W)
	bias := l.B.RawRowView(0)
	y.Apply(func(_, j int, v float64) float64 { return v + bias[j] }, &y)
	return &y
}

// Backward accumulates parameter gradients for dy = dLoss/dOutput and returns
// dLoss/dInput.
func (l *Linear) Backward(dy *mat.Dense) *mat.Dense {
	var dW mat.Dense
	dW.Mul(l.input.T(), dy)

	rows, cols := dy.Dims()
	dB := mat.NewDense(1, cols, nil)
	sum := dB.RawRowView(0)
	for i := 0; i < rows; i++ {
		floats.Add(sum, dy.RawRowView(i))
	}

	if l.dW == nil {
		l.dW, l.dB = &dW, dB
	} else {
		l.dW.Add(l.dW, &dW)
		l.dB.Add(l.dB, dB)
	}

	var dx mat.Dense
	dx.Mul(dy, l.W.T())
	return &dx
}

func (l *Linear) ZeroGrad() {
	l.dW, l.dB = nil, nil
}

func (l *Linear) Params() []Param {
	return []Param{{Value: l.W, Grad: l.dW}, {Value: l.B, Grad: l.dB}}
}
