package ppg

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/nn"
)

// ActorOutput holds one forward pass of the policy network.
type ActorOutput struct {
	LogProbs *mat.Dense // batch x actions
	Probs    *mat.Dense // batch x actions, rows sum to 1
	Values   []float64  // auxiliary value head
}

// Actor is a tanh trunk shared by a softmax action head and a scalar value head.
type Actor struct {
	trunk  *nn.MLP
	action *nn.Linear
	value  *nn.Linear
}

func NewActor(stateDim, hidden, numActions int, rng *rand.Rand) *Actor {
	return &Actor{
		trunk:  nn.NewMLP(rng, nn.TanhGain, true, stateDim, hidden, hidden, hidden),
		action: nn.NewLinear(hidden, numActions, nn.TanhGain, rng),
		value:  nn.NewLinear(hidden, 1, nn.TanhGain, rng),
	}
}

func (a *Actor) Forward(states *mat.Dense) (ActorOutput, error) {
	if err := checkStates(states, a.trunk.In()); err != nil {
		return ActorOutput{}, err
	}
	hidden := a.trunk.Forward(states)
	logp, p := logSoftmax(a.action.Forward(hidden))
	return ActorOutput{
		LogProbs: logp,
		Probs:    p,
		Values:   mat.Col(nil, 0, a.value.Forward(hidden)),
	}, nil
}

// Backward propagates gradients from the last Forward. Either argument may be
// nil, in which case that head receives no gradient.
func (a *Actor) Backward(dLogits *mat.Dense, dValues []float64) {
	var dHidden *mat.Dense
	if dLogits != nil {
		dHidden = a.action.Backward(dLogits)
	}
	if dValues != nil {
		dv := a.value.Backward(mat.NewDense(len(dValues), 1, dValues))
		if dHidden == nil {
			dHidden = dv
		} else {
			dHidden.Add(dHidden, dv)
		}
	}
	if dHidden != nil {
		a.trunk.Backward(dHidden)
	}
}

func (a *Actor) ZeroGrad() {
	a.trunk.ZeroGrad()
	a.action.ZeroGrad()
	a.value.ZeroGrad()
}

func (a *Actor) Params() []nn.Param {
	params := a.trunk.Params()
	params = append(params, a.action.Params()...)
	return append(params, a.value.Params()...)
}

// Critic is an independent state-value network.
type Critic struct {
	net *nn.MLP
}

func NewCritic(stateDim, hidden int, rng *rand.Rand) *Critic {
	return &Critic{net: nn.NewMLP(rng, nn.TanhGain, false, stateDim, hidden, hidden, 1)}
}

func (c *Critic) Forward(states *mat.Dense) ([]float64, error) {
	if err := checkStates(states, c.net.In()); err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, c.net.Forward(states)), nil
}

func (c *Critic) Backward(dValues []float64) {
	c.net.Backward(mat.NewDense(len(dValues), 1, dValues))
}

func (c *Critic) ZeroGrad()          { c.net.ZeroGrad() }
func (c *Critic) Params() []nn.Param { return c.net.Params() }

func checkStates(states *mat.Dense, dim int) error {
	if _, cols := states.Dims(); cols != dim {
		return fmt.Errorf("%w: want %d, got %d", ErrObservationShape, dim, cols)
	}
	return nil
}
