package ppg

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/buffer"
	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/nn"
)

// Agent owns the actor and critic, their optimizers and the random stream
// used for initialization, action sampling and minibatch shuffles.
type Agent struct {
	cfg Config

	actor     *Actor
	critic    *Critic
	optActor  *nn.Adam
	optCritic *nn.Adam
	rng       *rand.Rand
}

// Decision is the outcome of one rollout step.
type Decision struct {
	Action  int
	LogProb float64
	Value   float64
	Probs   []float64
}

// Losses are minibatch-averaged losses of one phase.
type Losses struct {
	Policy float64
	Value  float64
	Aux    float64
	KL     float64
}

func New(cfg Config) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Agent{
		cfg:       cfg,
		actor:     NewActor(cfg.StateDim, cfg.ActorHidden, cfg.NumActions, rng),
		critic:    NewCritic(cfg.StateDim, cfg.CriticHidden, rng),
		optActor:  nn.NewAdam(cfg.LR),
		optCritic: nn.NewAdam(cfg.LR),
		rng:       rng,
	}, nil
}

func (a *Agent) Config() Config { return a.cfg }

func (a *Agent) observation(state []float64) (*mat.Dense, error) {
	if len(state) != a.cfg.StateDim {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrObservationShape, a.cfg.StateDim, len(state))
	}
	return mat.NewDense(1, len(state), append([]float64(nil), state...)), nil
}

// ActionProbs returns the actor's action distribution for one observation.
func (a *Agent) ActionProbs(state []float64) ([]float64, error) {
	x, err := a.observation(state)
	if err != nil {
		return nil, err
	}
	out, err := a.actor.Forward(x)
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, out.Probs), nil
}

// Value returns the critic's estimate for one observation.
func (a *Agent) Value(state []float64) (float64, error) {
	x, err := a.observation(state)
	if err != nil {
		return 0, err
	}
	values, err := a.critic.Forward(x)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// Act samples an action from the actor and evaluates the critic.
func (a *Agent) Act(state []float64) (Decision, error) {
	probs, err := a.ActionProbs(state)
	if err != nil {
		return Decision{}, err
	}
	value, err := a.Value(state)
	if err != nil {
		return Decision{}, err
	}
	dist := NewCategorical(probs, a.rng)
	action := dist.Sample()
	return Decision{Action: action, LogProb: dist.LogProb(action), Value: value, Probs: probs}, nil
}

// Learn runs the policy phase over memories and appends one snapshot of the
// full rollout to aux. nextState is the observation following the last
// transition and provides the bootstrap value.
func (a *Agent) Learn(memories []buffer.Transition, aux *buffer.Buffer[buffer.AuxSnapshot], nextState []float64) (Losses, error) {
	if len(memories) == 0 {
		return Losses{}, ErrEmptyRollout
	}
	bootstrap, err := a.Value(nextState)
	if err != nil {
		return Losses{}, fmt.Errorf("bootstrap value: %w", err)
	}
	returns, _ := ComputeReturns(memories, bootstrap, a.cfg.Gamma, a.cfg.Lambda)

	n := len(memories)
	states := mat.NewDense(n, a.cfg.StateDim, nil)
	actions := make([]int, n)
	oldLogProbs := make([]float64, n)
	oldValues := make([]float64, n)
	for i, m := range memories {
		if len(m.State) != a.cfg.StateDim {
			return Losses{}, fmt.Errorf("transition %d: %w", i, ErrObservationShape)
		}
		if m.Action < 0 || m.Action >= a.cfg.NumActions {
			return Losses{}, fmt.Errorf("transition %d: %w: %d", i, ErrActionRange, m.Action)
		}
		states.SetRow(i, m.State)
		actions[i] = m.Action
		oldLogProbs[i] = m.LogProb
		oldValues[i] = m.Value
	}

	aux.Append(buffer.AuxSnapshot{States: states, Returns: returns, OldValues: oldValues})

	var total Losses
	var steps int
	for epoch := 0; epoch < a.cfg.Epochs; epoch++ {
		batches := NewMinibatches(n, a.cfg.MinibatchSize, a.rng.Uint64())
		err := batches.Each(func(idx []int) error {
			l, err := a.policyStep(
				gatherRows(states, idx),
				gather(actions, idx),
				gather(oldLogProbs, idx),
				gather(returns, idx),
				gather(oldValues, idx),
			)
			if err != nil {
				return err
			}
			total.Policy += l.Policy
			total.Value += l.Value
			steps++
			return nil
		})
		if err != nil {
			return Losses{}, fmt.Errorf("policy epoch %d: %w", epoch, err)
		}
	}
	return total.mean(steps), nil
}

func (a *Agent) policyStep(states *mat.Dense, actions []int, oldLogProbs, returns, oldValues []float64) (Losses, error) {
	out, err := a.actor.Forward(states)
	if err != nil {
		return Losses{}, err
	}
	values, err := a.critic.Forward(states)
	if err != nil {
		return Losses{}, err
	}

	advantages := make([]float64, len(returns))
	for i := range returns {
		advantages[i] = returns[i] - oldValues[i]
	}
	advantages = Normalize(advantages, NormalizeEps)

	policyLoss, dLogits := PolicyLoss(out.LogProbs, out.Probs, actions, oldLogProbs, advantages, a.cfg.EpsClip, a.cfg.BetaS)
	a.actor.ZeroGrad()
	a.actor.Backward(dLogits, nil)
	a.optActor.Step(a.actor.Params())

	valueLoss, dValues := ClippedValueLoss(values, returns, oldValues, a.cfg.ValueClip)
	a.critic.ZeroGrad()
	a.critic.Backward(dValues)
	a.optCritic.Step(a.critic.Params())

	return Losses{Policy: policyLoss, Value: valueLoss}, nil
}

// LearnAux distills value prediction into the actor's value head over every
// snapshot in aux, anchoring the policy to its pre-phase action distribution.
// aux is left untouched.
func (a *Agent) LearnAux(aux *buffer.Buffer[buffer.AuxSnapshot]) (Losses, error) {
	data, err := buffer.ConcatAux(aux.All())
	if err != nil {
		return Losses{}, ErrEmptyAux
	}

	frozen, err := a.actor.Forward(data.States)
	if err != nil {
		return Losses{}, err
	}
	oldProbs := frozen.Probs

	var total Losses
	var steps int
	for epoch := 0; epoch < a.cfg.EpochsAux; epoch++ {
		batches := NewMinibatches(data.Len(), a.cfg.MinibatchSize, a.rng.Uint64())
		err := batches.Each(func(idx []int) error {
			l, err := a.auxStep(
				gatherRows(data.States, idx),
				gatherRows(oldProbs, idx),
				gather(data.Returns, idx),
				gather(data.OldValues, idx),
			)
			if err != nil {
				return err
			}
			total.Aux += l.Aux
			total.KL += l.KL
			total.Value += l.Value
			steps++
			return nil
		})
		if err != nil {
			return Losses{}, fmt.Errorf("aux epoch %d: %w", epoch, err)
		}
	}
	return total.mean(steps), nil
}

func (a *Agent) auxStep(states, oldProbs *mat.Dense, returns, oldValues []float64) (Losses, error) {
	out, err := a.actor.Forward(states)
	if err != nil {
		return Losses{}, err
	}
	auxLoss, dAux := ClippedValueLoss(out.Values, returns, oldValues, a.cfg.ValueClip)
	klLoss, dLogits := KLDiv(out.LogProbs, out.Probs, oldProbs)
	a.actor.ZeroGrad()
	a.actor.Backward(dLogits, dAux)
	a.optActor.Step(a.actor.Params())

	// The critic keeps training during the auxiliary phase.
	values, err := a.critic.Forward(states)
	if err != nil {
		return Losses{}, err
	}
	valueLoss, dValues := ClippedValueLoss(values, returns, oldValues, a.cfg.ValueClip)
	a.critic.ZeroGrad()
	a.critic.Backward(dValues)
	a.optCritic.Step(a.critic.Params())

	return Losses{Aux: auxLoss, KL: klLoss, Value: valueLoss}, nil
}

func (l Losses) mean(n int) Losses {
	if n == 0 {
		return l
	}
	f := float64(n)
	return Losses{Policy: l.Policy / f, Value: l.Value / f, Aux: l.Aux / f, KL: l.KL / f}
}
