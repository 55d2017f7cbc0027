package ppg

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/buffer"
)

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.StateDim = 3
	cfg.NumActions = 2
	cfg.ActorHidden = 8
	cfg.CriticHidden = 8
	cfg.MinibatchSize = 4
	cfg.Epochs = 2
	cfg.EpochsAux = 2
	cfg.SaveName = "test"
	cfg.SaveDir = t.TempDir()
	cfg.Seed = 7
	return cfg
}

func newAgent(t *testing.T, cfg Config) *Agent {
	t.Helper()
	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func rollout(a *Agent, n int) []buffer.Transition {
	var out []buffer.Transition
	for i := 0; i < n; i++ {
		state := []float64{float64(i) / 10, 1, -0.5}
		d, _ := a.Act(state)
		out = append(out, buffer.Transition{
			State:   state,
			Action:  d.Action,
			LogProb: d.LogProb,
			Reward:  float64(d.Action),
			Done:    i%4 == 3,
			Value:   d.Value,
		})
	}
	return out
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinibatchSize = 0
	if _, err := New(cfg); err == nil {
		t.Error("Expected error for zero minibatch size")
	}
	cfg = testConfig(t)
	cfg.Gamma = 1.5
	if _, err := New(cfg); err == nil {
		t.Error("Expected error for gamma > 1")
	}
}

func TestActShapes(t *testing.T) {
	a := newAgent(t, testConfig(t))
	if _, err := a.Act([]float64{1, 2}); !errors.Is(err, ErrObservationShape) {
		t.Fatalf("Expected ErrObservationShape, got %v", err)
	}
	d, err := a.Act([]float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if d.Action < 0 || d.Action >= 2 {
		t.Errorf("Action %d out of range", d.Action)
	}
	if !near(d.Probs[0]+d.Probs[1], 1, tol) {
		t.Errorf("Expected probabilities to sum to 1, got %v", d.Probs)
	}
}

func TestLearnAppendsFullRolloutSnapshot(t *testing.T) {
	a := newAgent(t, testConfig(t))
	aux := buffer.NewAux()
	memories := rollout(a, 10)
	next := []float64{1, 1, 1}

	bootstrap, _ := a.Value(next)
	want, _ := ComputeReturns(memories, bootstrap, a.cfg.Gamma, a.cfg.Lambda)

	if _, err := a.Learn(memories, aux, next); err != nil {
		t.Fatal(err)
	}
	if aux.Len() != 1 {
		t.Fatalf("Expected one snapshot per policy phase, got %d", aux.Len())
	}
	snap := aux.All()[0]
	if snap.Len() != 10 {
		t.Fatalf("Expected snapshot of 10 rows, got %d", snap.Len())
	}
	for i := range want {
		if !near(snap.Returns[i], want[i], tol) || snap.OldValues[i] != memories[i].Value {
			t.Errorf("row %d: got return %v old %v", i, snap.Returns[i], snap.OldValues[i])
		}
	}
}

func TestLearnErrors(t *testing.T) {
	a := newAgent(t, testConfig(t))
	aux := buffer.NewAux()
	if _, err := a.Learn(nil, aux, []float64{0, 0, 0}); !errors.Is(err, ErrEmptyRollout) {
		t.Errorf("Expected ErrEmptyRollout, got %v", err)
	}
	bad := rollout(a, 3)
	bad[1].Action = 5
	if _, err := a.Learn(bad, aux, []float64{0, 0, 0}); !errors.Is(err, ErrActionRange) {
		t.Errorf("Expected ErrActionRange, got %v", err)
	}
	if _, err := a.LearnAux(aux); !errors.Is(err, ErrEmptyAux) {
		t.Errorf("Expected ErrEmptyAux, got %v", err)
	}
}

func TestPolicyPhasePrefersRewardedAction(t *testing.T) {
	cfg := testConfig(t)
	cfg.LR = 0.01
	cfg.Epochs = 4
	cfg.MinibatchSize = 32
	a := newAgent(t, cfg)
	state := []float64{0.3, -0.2, 0.1}

	before, _ := a.ActionProbs(state)
	for u := 0; u < 30; u++ {
		var memories []buffer.Transition
		for i := 0; i < 32; i++ {
			d, _ := a.Act(state)
			reward := 0.0
			if d.Action == 1 {
				reward = 1
			}
			memories = append(memories, buffer.Transition{
				State: state, Action: d.Action, LogProb: d.LogProb,
				Reward: reward, Done: true, Value: d.Value,
			})
		}
		if _, err := a.Learn(memories, buffer.NewAux(), state); err != nil {
			t.Fatal(err)
		}
	}
	after, _ := a.ActionProbs(state)
	if after[1] < before[1]+0.1 {
		t.Errorf("Expected rewarded action probability to grow, %v -> %v", before[1], after[1])
	}
}

func TestLearnAuxReducesValueError(t *testing.T) {
	cfg := testConfig(t)
	cfg.LR = 0.01
	cfg.ValueClip = 100
	cfg.EpochsAux = 4
	a := newAgent(t, cfg)
	aux := buffer.NewAux()
	for i := 0; i < 2; i++ {
		memories := rollout(a, 12)
		for j := range memories {
			memories[j].Reward = 1
		}
		if _, err := a.Learn(memories, aux, []float64{0, 0, 0}); err != nil {
			t.Fatal(err)
		}
	}

	first, err := a.LearnAux(aux)
	if err != nil {
		t.Fatal(err)
	}
	if aux.Len() != 2 {
		t.Errorf("LearnAux must leave the buffer to the caller, got %d snapshots", aux.Len())
	}
	second, err := a.LearnAux(aux)
	if err != nil {
		t.Fatal(err)
	}
	if second.Aux >= first.Aux {
		t.Errorf("Expected aux loss to fall, %v -> %v", first.Aux, second.Aux)
	}
	if second.KL < 0 {
		t.Errorf("KL must be non-negative, got %v", second.KL)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	a := newAgent(t, cfg)
	path, err := a.Save()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(cfg.SaveDir, "test.json") {
		t.Errorf("Unexpected checkpoint path %s", path)
	}

	cfg.Seed = 99
	b := newAgent(t, cfg)
	obs := []float64{0.4, -1, 2}
	pa, _ := a.ActionProbs(obs)
	pb, _ := b.ActionProbs(obs)
	if pa[0] == pb[0] {
		t.Fatal("Expected differently seeded agents to differ before load")
	}

	if err := b.Load(path); err != nil {
		t.Fatal(err)
	}
	pb, _ = b.ActionProbs(obs)
	for i := range pa {
		if !near(pa[i], pb[i], 1e-12) {
			t.Errorf("prob[%d]: %v != %v after load", i, pa[i], pb[i])
		}
	}
	va, _ := a.Value(obs)
	vb, _ := b.Value(obs)
	if !near(va, vb, 1e-12) {
		t.Errorf("critic value %v != %v after load", va, vb)
	}
}

func TestLoadMissingAndMismatched(t *testing.T) {
	cfg := testConfig(t)
	a := newAgent(t, cfg)
	obs := []float64{1, 0, -1}
	before, _ := a.ActionProbs(obs)

	if err := a.Load(filepath.Join(cfg.SaveDir, "nope.json")); err != nil {
		t.Fatalf("Expected missing checkpoint to be a no-op, got %v", err)
	}

	other := cfg
	other.ActorHidden = 16
	other.SaveName = "wide"
	wide := newAgent(t, other)
	path, err := wide.Save()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Load(path); err == nil {
		t.Fatal("Expected shape error loading a mismatched checkpoint")
	}
	after, _ := a.ActionProbs(obs)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("prob[%d] changed after failed load", i)
		}
	}
}
