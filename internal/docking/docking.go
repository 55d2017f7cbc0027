// Package docking is a kinematic stand-in for the browser docking simulator.
// It exposes the same eleven telemetry readouts and twelve thruster controls.
package docking

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

const (
	tau = 1.0  // seconds per control input
	dv  = 0.05 // m/s per translation pulse
	dw  = 0.1  // deg/s per rotation pulse

	startRangeMin = 15.0
	startRangeMax = 25.0
	startLateral  = 3.0
	startAngle    = 10.0

	dockDistance = 0.2
	lateralTol   = 0.2
	angleTol     = 0.5
	closingTol   = 0.2
	maxRange     = 60.0
	maxAngle     = 45.0

	successReward = 100.0
	failureReward = -100.0
	stepPenalty   = 0.01

	StateDim   = 11
	NumActions = 12
)

// Action indexes the thruster controls.
type Action int

const (
	Forward Action = iota
	Backward
	Left
	Right
	Up
	Down
	YawLeft
	YawRight
	PitchUp
	PitchDown
	RollLeft
	RollRight
)

var (
	ErrClosed = errors.New("docking env is closed")
	ErrAction = errors.New("unknown action")
)

// Ship is the chaser's pose relative to the docking port. X is the distance
// along the approach axis.
type Ship struct {
	X, Y, Z                      float64 // m
	VX, VY, VZ                   float64 // m/s
	Yaw, Roll, Pitch             float64 // deg
	YawRate, RollRate, PitchRate float64 // deg/s
	Rate                         float64 // last range rate, m/s
}

func (s Ship) Range() float64 {
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

func (s Ship) angleError() float64 {
	return math.Abs(s.Yaw) + math.Abs(s.Roll) + math.Abs(s.Pitch)
}

// Observation is ordered as the simulator HUD: x, y, z, range, rate, yaw,
// roll, pitch, yaw rate, roll rate, pitch rate.
func (s Ship) Observation() []float64 {
	return []float64{
		s.X, s.Y, s.Z, s.Range(), s.Rate,
		s.Yaw, s.Roll, s.Pitch,
		s.YawRate, s.RollRate, s.PitchRate,
	}
}

func (s Ship) docked() bool {
	return s.X <= dockDistance &&
		math.Abs(s.Y) < lateralTol && math.Abs(s.Z) < lateralTol &&
		math.Abs(s.Yaw) < angleTol && math.Abs(s.Roll) < angleTol && math.Abs(s.Pitch) < angleTol &&
		math.Abs(s.VX) < closingTol
}

func (s Ship) failed() bool {
	return s.X <= dockDistance ||
		s.Range() > maxRange ||
		math.Abs(s.Yaw) > maxAngle || math.Abs(s.Roll) > maxAngle || math.Abs(s.Pitch) > maxAngle
}

type Env struct {
	Ship     Ship
	Steps    int
	Resets   int
	Restarts int
	Rand     *rand.Rand

	closed bool
}

func NewEnv(rng *rand.Rand) *Env {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	env := &Env{Rand: rng}
	env.randomize()
	return env
}

func (e *Env) uniform(lo, hi float64) float64 {
	return lo + e.Rand.Float64()*(hi-lo)
}

func (e *Env) randomize() {
	e.Ship = Ship{
		X:     e.uniform(startRangeMin, startRangeMax),
		Y:     e.uniform(-startLateral, startLateral),
		Z:     e.uniform(-startLateral, startLateral),
		Yaw:   e.uniform(-startAngle, startAngle),
		Roll:  e.uniform(-startAngle, startAngle),
		Pitch: e.uniform(-startAngle, startAngle),
	}
	e.Steps = 0
}

func (e *Env) State() ([]float64, error) {
	if e.closed {
		return nil, ErrClosed
	}
	return e.Ship.Observation(), nil
}

// Step fires one thruster pulse and integrates for one control period. The
// shaping reward is measured against prev when it is a full observation.
func (e *Env) Step(action int, prev []float64) ([]float64, float64, bool, error) {
	if e.closed {
		return nil, 0, false, ErrClosed
	}
	if action < 0 || action >= NumActions {
		return nil, 0, false, fmt.Errorf("%w: %d", ErrAction, action)
	}

	s := e.Ship
	prevRange, prevAngle := s.Range(), s.angleError()
	if len(prev) == StateDim {
		prevRange = prev[3]
		prevAngle = math.Abs(prev[5]) + math.Abs(prev[6]) + math.Abs(prev[7])
	}

	switch Action(action) {
	case Forward:
		s.VX -= dv
	case Backward:
		s.VX += dv
	case Left:
		s.VY -= dv
	case Right:
		s.VY += dv
	case Up:
		s.VZ += dv
	case Down:
		s.VZ -= dv
	case YawLeft:
		s.YawRate -= dw
	case YawRight:
		s.YawRate += dw
	case PitchUp:
		s.PitchRate += dw
	case PitchDown:
		s.PitchRate -= dw
	case RollLeft:
		s.RollRate -= dw
	case RollRight:
		s.RollRate += dw
	}

	before := s.Range()
	s.X += tau * s.VX
	s.Y += tau * s.VY
	s.Z += tau * s.VZ
	s.Yaw += tau * s.YawRate
	s.Roll += tau * s.RollRate
	s.Pitch += tau * s.PitchRate
	s.Rate = (s.Range() - before) / tau

	e.Ship = s
	e.Steps++

	reward := (prevRange - s.Range()) + 0.1*(prevAngle-s.angleError()) - stepPenalty
	done := false
	switch {
	case s.docked():
		reward += successReward
		done = true
	case s.failed():
		reward += failureReward
		done = true
	}
	return s.Observation(), reward, done, nil
}

// Reset starts a new approach after the step budget ran out.
func (e *Env) Reset() error {
	if e.closed {
		return ErrClosed
	}
	e.Resets++
	e.randomize()
	return nil
}

// Restart starts a new approach after docking or failure.
func (e *Env) Restart() error {
	if e.closed {
		return ErrClosed
	}
	e.Restarts++
	e.randomize()
	return nil
}

func (e *Env) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	return nil
}
