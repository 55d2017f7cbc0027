package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// MLP is a stack of Linear layers, each optionally followed by tanh.
type MLP struct {
	Layers []*Linear
	Tanh   []bool

	outs []*mat.Dense
}

// NewMLP builds layers sizes[0]->sizes[1]->...; every layer but the last is
// followed by tanh, and the last one too when activateLast is set.
func NewMLP(rng *rand.Rand, gain float64, activateLast bool, sizes ...int) *MLP {
	m := &MLP{}
	for i := 0; i+1 < len(sizes); i++ {
		m.Layers = append(m.Layers, NewLinear(sizes[i], sizes[i+1], gain, rng))
		m.Tanh = append(m.Tanh, i+2 < len(sizes) || activateLast)
	}
	m.outs = make([]*mat.Dense, len(m.Layers))
	return m
}

func (m *MLP) In() int  { return m.Layers[0].In() }
func (m *MLP) Out() int { return m.Layers[len(m.Layers)-1].Out() }

func (m *MLP) Forward(x *mat.Dense) *mat.Dense {
	h := x
	for i, layer := range m.Layers {
		h = layer.Forward(h)
		if m.Tanh[i] {
			h.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, h)
		}
		m.outs[i] = h
	}
	return h
}

func (m *MLP) Backward(dy *mat.Dense) *mat.Dense {
	d := dy
	for i := len(m.Layers) - 1; i >= 0; i-- {
		if m.Tanh[i] {
			out := m.outs[i]
			var g mat.Dense
			g.Apply(func(r, c int, v float64) float64 {
				a := out.At(r, c)
				return v * (1 - a*a)
			}, d)
			d = &g
		}
		d = m.Layers[i].Backward(d)
	}
	return d
}

func (m *MLP) ZeroGrad() {
	for _, layer := range m.Layers {
		layer.ZeroGrad()
	}
}

func (m *MLP) Params() []Param {
	var params []Param
	for _, layer := range m.Layers {
		params = append(params, layer.Params()...)
	}
	return params
}
