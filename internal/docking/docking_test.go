package docking

import (
	"errors"
	"testing"

	"golang.org/x/exp/rand"
)

func TestObservationLayout(t *testing.T) {
	e := NewEnv(rand.New(rand.NewSource(1)))
	obs, err := e.State()
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != StateDim {
		t.Fatalf("Expected %d readouts, got %d", StateDim, len(obs))
	}
	if obs[0] < startRangeMin || obs[0] > startRangeMax {
		t.Errorf("Start x %v outside [%v, %v]", obs[0], startRangeMin, startRangeMax)
	}
	if obs[3] != e.Ship.Range() {
		t.Errorf("Expected range readout %v, got %v", e.Ship.Range(), obs[3])
	}
	again, _ := e.State()
	for i := range obs {
		if obs[i] != again[i] {
			t.Fatal("State must not change between steps")
		}
	}
}

func TestSeededStartsMatch(t *testing.T) {
	a := NewEnv(rand.New(rand.NewSource(9)))
	b := NewEnv(rand.New(rand.NewSource(9)))
	if a.Ship != b.Ship {
		t.Errorf("Expected identical starts for the same seed")
	}
}

func TestForwardThrustCloses(t *testing.T) {
	e := NewEnv(rand.New(rand.NewSource(2)))
	e.Ship = Ship{X: 10}
	var total float64
	for i := 0; i < 3; i++ {
		state, _ := e.State()
		_, reward, done, err := e.Step(int(Forward), state)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			t.Fatal("Unexpected termination")
		}
		total += reward
	}
	// 0.05 + 0.10 + 0.15 metres closed.
	if e.Ship.X >= 10-0.29 || e.Ship.Rate >= 0 {
		t.Errorf("Expected the approach to close, x=%v rate=%v", e.Ship.X, e.Ship.Rate)
	}
	if total <= 0 {
		t.Errorf("Expected positive shaping reward while closing, got %v", total)
	}
}

func TestDockingAndFailure(t *testing.T) {
	e := NewEnv(rand.New(rand.NewSource(3)))
	e.Ship = Ship{X: 5}
	_, _, done, _ := e.Step(int(YawRight), nil)
	if done {
		t.Fatal("A yaw pulse far from the port must not end the episode")
	}
	e.Ship = Ship{X: 0.22}
	_, reward, done, _ := e.Step(int(Forward), nil)
	if !done || reward < successReward/2 {
		t.Errorf("Expected docking, got done=%v reward=%v", done, reward)
	}

	e.Ship = Ship{X: 0.25, Y: 1, VX: -0.1}
	_, reward, done, _ = e.Step(int(Forward), nil)
	if !done || reward > failureReward/2 {
		t.Errorf("Expected misaligned contact to fail, got done=%v reward=%v", done, reward)
	}

	e.Ship = Ship{X: 59.99, VX: 0.05}
	_, _, done, _ = e.Step(int(Backward), nil)
	if !done {
		t.Error("Expected drifting out of range to fail")
	}
}

func TestResetRestartClose(t *testing.T) {
	e := NewEnv(nil)
	if _, _, _, err := e.Step(NumActions, nil); !errors.Is(err, ErrAction) {
		t.Errorf("Expected ErrAction, got %v", err)
	}
	_ = e.Reset()
	_ = e.Restart()
	_ = e.Restart()
	if e.Resets != 1 || e.Restarts != 2 || e.Steps != 0 {
		t.Errorf("Unexpected counters resets=%d restarts=%d steps=%d", e.Resets, e.Restarts, e.Steps)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.State(); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
