package buffer

import "gonum.org/v1/gonum/mat"

// Transition is one rollout step.
type Transition struct {
	State   []float64 `json:"state"`
	Action  int       `json:"action"`
	LogProb float64   `json:"log_prob"`
	Reward  float64   `json:"reward"`
	Done    bool      `json:"done"`
	Value   float64   `json:"value"`
}

// AuxSnapshot is the per-policy-update summary consumed by the auxiliary phase.
type AuxSnapshot struct {
	States    *mat.Dense
	Returns   []float64
	OldValues []float64
}

func (s AuxSnapshot) Len() int { return len(s.Returns) }

// ConcatAux stacks snapshots in order into a single snapshot.
func ConcatAux(snaps []AuxSnapshot) (AuxSnapshot, error) {
	if len(snaps) == 0 {
		return AuxSnapshot{}, ErrEmpty
	}
	_, dim := snaps[0].States.Dims()
	var n int
	for _, s := range snaps {
		n += s.Len()
	}

	out := AuxSnapshot{
		States:    mat.NewDense(n, dim, nil),
		Returns:   make([]float64, 0, n),
		OldValues: make([]float64, 0, n),
	}
	row := 0
	for _, s := range snaps {
		for i := 0; i < s.Len(); i++ {
			out.States.SetRow(row, s.States.RawRowView(i))
			row++
		}
		out.Returns = append(out.Returns, s.Returns...)
		out.OldValues = append(out.OldValues, s.OldValues...)
	}
	return out, nil
}
