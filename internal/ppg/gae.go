package ppg

import "github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/buffer"

// ComputeReturns runs generalized advantage estimation backwards over a
// chronologically ordered rollout. bootstrap is the value of the state that
// follows the last transition. Both results are in chronological order.
func ComputeReturns(memories []buffer.Transition, bootstrap, gamma, lambda float64) (returns, advantages []float64) {
	n := len(memories)
	returns = make([]float64, n)
	advantages = make([]float64, n)

	next := bootstrap
	var gae float64
	for i := n - 1; i >= 0; i-- {
		m := memories[i]
		mask := 1.0
		if m.Done {
			mask = 0
		}
		delta := m.Reward + gamma*next*mask - m.Value
		gae = delta + gamma*lambda*mask*gae
		advantages[i] = gae
		returns[i] = gae + m.Value
		next = m.Value
	}
	return returns, advantages
}
