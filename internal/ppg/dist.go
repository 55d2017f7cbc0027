package ppg

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Categorical is a distribution over action indices. Sampling is
// deterministic for a given source state.
type Categorical struct {
	probs []float64
	dist  distuv.Categorical
}

func NewCategorical(probs []float64, src rand.Source) Categorical {
	return Categorical{probs: probs, dist: distuv.NewCategorical(probs, src)}
}

func (c Categorical) Sample() int {
	return int(c.dist.Rand())
}

// LogProb returns -Inf for indices outside the support.
func (c Categorical) LogProb(i int) float64 {
	if i < 0 || i >= len(c.probs) {
		return math.Inf(-1)
	}
	return math.Log(c.probs[i])
}

func (c Categorical) Entropy() float64 {
	return c.dist.Entropy()
}

func (c Categorical) Probs() []float64 {
	return c.probs
}

// logSoftmax returns row-wise log-probabilities and probabilities of logits.
func logSoftmax(logits *mat.Dense) (logp, p *mat.Dense) {
	rows, cols := logits.Dims()
	logp = mat.NewDense(rows, cols, nil)
	p = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		row := logits.RawRowView(i)
		maxLogit := floats.Max(row)
		var sum float64
		for _, v := range row {
			sum += math.Exp(v - maxLogit)
		}
		lse := maxLogit + math.Log(sum)
		for j, v := range row {
			logp.Set(i, j, v-lse)
			p.Set(i, j, math.Exp(v-lse))
		}
	}
	return logp, p
}
