package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adam keeps first and second moment estimates per parameter position. The
// same parameter list order must be passed to every Step call.
type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64

	steps []int
	m     []*mat.Dense
	v     []*mat.Dense
}

func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Eps: 1e-8}
}

// Step applies one bias-corrected Adam update. Parameters with a nil
// gradient are left untouched and their step counter does not advance.
func (o *Adam) Step(params []Param) {
	if len(o.steps) != len(params) {
		o.steps = make([]int, len(params))
		o.m = make([]*mat.Dense, len(params))
		o.v = make([]*mat.Dense, len(params))
	}

	for i, p := range params {
		if p.Grad == nil {
			continue
		}
		rows, cols := p.Value.Dims()
		if o.m[i] == nil {
			o.m[i] = mat.NewDense(rows, cols, nil)
			o.v[i] = mat.NewDense(rows, cols, nil)
		}
		o.steps[i]++
		t := float64(o.steps[i])
		stepSize := o.LR / (1 - math.Pow(o.Beta1, t))
		bc2 := math.Sqrt(1 - math.Pow(o.Beta2, t))

		m, v := o.m[i], o.v[i]
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				g := p.Grad.At(r, c)
				mm := o.Beta1*m.At(r, c) + (1-o.Beta1)*g
				vv := o.Beta2*v.At(r, c) + (1-o.Beta2)*g*g
				m.Set(r, c, mm)
				v.Set(r, c, vv)
				denom := math.Sqrt(vv)/bc2 + o.Eps
				p.Value.Set(r, c, p.Value.At(r, c)-stepSize*mm/denom)
			}
		}
	}
}
