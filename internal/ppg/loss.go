package ppg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const NormalizeEps = 1e-5

// Normalize shifts xs to zero mean and scales by the sample standard
// deviation plus eps. Constant or single-element input maps to zeros.
func Normalize(xs []float64, eps float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) < 2 || floats.Max(xs) == floats.Min(xs) {
		return out
	}
	mean, std := stat.MeanStdDev(xs, nil)
	for i, x := range xs {
		out[i] = (x - mean) / (std + eps)
	}
	return out
}

// ClippedValueLoss is mean(max((clip(v)-t)^2, (v-t)^2)) where clip(v) keeps v
// within clip of the old prediction. grad is dLoss/dValues.
func ClippedValueLoss(values, targets, oldValues []float64, clip float64) (loss float64, grad []float64) {
	n := float64(len(values))
	grad = make([]float64, len(values))
	for i, v := range values {
		diff := v - oldValues[i]
		clipped := oldValues[i] + math.Max(-clip, math.Min(clip, diff))
		l1 := (clipped - targets[i]) * (clipped - targets[i])
		l2 := (v - targets[i]) * (v - targets[i])
		if l1 > l2 {
			loss += l1
			if math.Abs(diff) <= clip {
				grad[i] = 2 * (clipped - targets[i]) / n
			}
			continue
		}
		loss += l2
		grad[i] = 2 * (v - targets[i]) / n
	}
	return loss / n, grad
}

// PolicyLoss is the batch mean of the clipped surrogate objective minus the
// entropy bonus. dLogits is the gradient with respect to the action logits.
func PolicyLoss(logp, p *mat.Dense, actions []int, oldLogProbs, advantages []float64, epsClip, betaS float64) (loss float64, dLogits *mat.Dense) {
	rows, cols := logp.Dims()
	n := float64(rows)
	dLogits = mat.NewDense(rows, cols, nil)
	for i, a := range actions {
		ratio := math.Exp(logp.At(i, a) - oldLogProbs[i])
		adv := advantages[i]
		surr1 := ratio * adv
		surr2 := math.Max(1-epsClip, math.Min(1+epsClip, ratio)) * adv

		var entropy float64
		for j := 0; j < cols; j++ {
			entropy -= p.At(i, j) * logp.At(i, j)
		}
		loss += -math.Min(surr1, surr2) - betaS*entropy

		// dLoss/dlogp(a); zero when the clipped branch is active.
		var g float64
		if surr1 <= surr2 {
			g = -adv * ratio
		}
		for j := 0; j < cols; j++ {
			pj := p.At(i, j)
			d := -g*pj + betaS*pj*(logp.At(i, j)+entropy)
			if j == a {
				d += g
			}
			dLogits.Set(i, j, d/n)
		}
	}
	return loss / n, dLogits
}

// KLDiv is the batch-mean KL(old || new) between frozen action probabilities
// and the log-probabilities of the current policy.
func KLDiv(logq, q, old *mat.Dense) (loss float64, dLogits *mat.Dense) {
	rows, cols := logq.Dims()
	n := float64(rows)
	dLogits = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			po := old.At(i, j)
			if po > 0 {
				loss += po * (math.Log(po) - logq.At(i, j))
			}
			dLogits.Set(i, j, (q.At(i, j)-po)/n)
		}
	}
	return loss / n, dLogits
}
