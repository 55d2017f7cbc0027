package nn

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func randDense(rng *rand.Rand, r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, rng.NormFloat64())
		}
	}
	return m
}

func TestOrthogonal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tc := range []struct{ in, out int }{{4, 4}, {8, 3}, {3, 8}} {
		w := Orthogonal(tc.in, tc.out, 2, rng)
		r, c := w.Dims()
		if r != tc.in || c != tc.out {
			t.Fatalf("Expected %dx%d, got %dx%d", tc.in, tc.out, r, c)
		}
		var g mat.Dense
		n := tc.out
		if tc.in >= tc.out {
			g.Mul(w.T(), w)
		} else {
			g.Mul(w, w.T())
			n = tc.in
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = 4
				}
				if math.Abs(g.At(i, j)-want) > 1e-9 {
					t.Errorf("%dx%d: gram[%d][%d] = %v, want %v", tc.in, tc.out, i, j, g.At(i, j), want)
				}
			}
		}
	}
}

func TestNewLinearZeroBias(t *testing.T) {
	l := NewLinear(3, 5, TanhGain, rand.New(rand.NewSource(2)))
	for _, b := range l.B.RawRowView(0) {
		if b != 0 {
			t.Fatalf("Expected zero bias, got %v", b)
		}
	}
}

// loss = sum(out .* coef), so dLoss/dOut = coef.
func weightedSum(out, coef *mat.Dense) float64 {
	var p mat.Dense
	p.MulElem(out, coef)
	return mat.Sum(&p)
}

func TestMLPGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := NewMLP(rng, TanhGain, false, 4, 6, 5, 3)
	x := randDense(rng, 7, 4)
	coef := randDense(rng, 7, 3)

	m.ZeroGrad()
	m.Forward(x)
	dx := m.Backward(coef)

	const h = 1e-6
	for pi, p := range m.Params() {
		rows, cols := p.Value.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				orig := p.Value.At(r, c)
				p.Value.Set(r, c, orig+h)
				up := weightedSum(m.Forward(x), coef)
				p.Value.Set(r, c, orig-h)
				down := weightedSum(m.Forward(x), coef)
				p.Value.Set(r, c, orig)
				num := (up - down) / (2 * h)
				if math.Abs(num-p.Grad.At(r, c)) > 1e-5 {
					t.Fatalf("param %d [%d,%d]: analytic %v, numeric %v", pi, r, c, p.Grad.At(r, c), num)
				}
			}
		}
	}

	r0, c0 := 2, 1
	orig := x.At(r0, c0)
	x.Set(r0, c0, orig+h)
	up := weightedSum(m.Forward(x), coef)
	x.Set(r0, c0, orig-h)
	down := weightedSum(m.Forward(x), coef)
	x.Set(r0, c0, orig)
	if num := (up - down) / (2 * h); math.Abs(num-dx.At(r0, c0)) > 1e-5 {
		t.Errorf("input grad: analytic %v, numeric %v", dx.At(r0, c0), num)
	}
}

func TestBackwardAccumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	l := NewLinear(2, 2, 1, rng)
	x := randDense(rng, 3, 2)
	dy := randDense(rng, 3, 2)

	l.Forward(x)
	l.Backward(dy)
	once := mat.DenseCopyOf(l.dW)
	l.Backward(dy)

	var twice mat.Dense
	twice.Scale(2, once)
	if !mat.EqualApprox(&twice, l.dW, 1e-12) {
		t.Error("Expected gradients to accumulate across Backward calls")
	}
	l.ZeroGrad()
	if l.Params()[0].Grad != nil {
		t.Error("Expected nil gradient after ZeroGrad")
	}
}

func TestAdamFirstStep(t *testing.T) {
	w := mat.NewDense(1, 2, []float64{1, -1})
	g := mat.NewDense(1, 2, []float64{0.5, -3})
	opt := NewAdam(0.1)
	opt.Step([]Param{{Value: w, Grad: g}, {Value: mat.NewDense(1, 1, []float64{7}), Grad: nil}})

	// The first bias-corrected step moves each weight by lr against sign(g).
	if math.Abs(w.At(0, 0)-0.9) > 1e-6 || math.Abs(w.At(0, 1)+0.9) > 1e-6 {
		t.Errorf("Expected [0.9 -0.9], got %v", mat.Formatted(w))
	}
	if opt.steps[1] != 0 {
		t.Errorf("Expected skipped param to keep step 0, got %d", opt.steps[1])
	}
}

func TestSnapshotRestore(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := NewMLP(rng, TanhGain, false, 3, 4, 2)
	b := NewMLP(rng, TanhGain, false, 3, 4, 2)
	if err := b.Restore(a.Snapshot()); err != nil {
		t.Fatal(err)
	}
	x := randDense(rng, 2, 3)
	if !mat.Equal(a.Forward(x), b.Forward(x)) {
		t.Error("Expected identical outputs after restore")
	}

	c := NewMLP(rng, TanhGain, false, 3, 5, 2)
	before := mat.DenseCopyOf(c.Layers[1].W)
	if err := c.Restore(a.Snapshot()); !errors.Is(err, ErrShape) {
		t.Fatalf("Expected ErrShape, got %v", err)
	}
	if !mat.Equal(before, c.Layers[1].W) {
		t.Error("Expected failed restore to leave weights untouched")
	}
}
