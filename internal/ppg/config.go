package ppg

import (
	"errors"
	"fmt"
)

var (
	ErrObservationShape = errors.New("observation has wrong dimensionality")
	ErrActionRange      = errors.New("action index out of range")
	ErrEmptyRollout     = errors.New("rollout buffer is empty")
	ErrEmptyAux         = errors.New("auxiliary buffer is empty")
)

// Config holds the network and optimizer hyperparameters of an Agent.
type Config struct {
	StateDim      int
	NumActions    int
	ActorHidden   int
	CriticHidden  int
	Epochs        int
	EpochsAux     int
	MinibatchSize int
	LR            float64
	Lambda        float64 // GAE decay
	Gamma         float64 // discount
	BetaS         float64 // entropy bonus coefficient
	EpsClip       float64 // policy ratio clip
	ValueClip     float64
	SaveName      string
	SaveDir       string
	Seed          uint64
}

func DefaultConfig() Config {
	return Config{
		StateDim:      11,
		NumActions:    12,
		ActorHidden:   32,
		CriticHidden:  256,
		Epochs:        1,
		EpochsAux:     6,
		MinibatchSize: 64,
		LR:            0.0005,
		Lambda:        0.95,
		Gamma:         0.99,
		BetaS:         0.01,
		EpsClip:       0.2,
		ValueClip:     0.4,
		SaveName:      "ppg",
		SaveDir:       ".",
	}
}

func (c Config) Validate() error {
	ints := []struct {
		name  string
		value int
	}{
		{"state dim", c.StateDim},
		{"num actions", c.NumActions},
		{"actor hidden", c.ActorHidden},
		{"critic hidden", c.CriticHidden},
		{"epochs", c.Epochs},
		{"aux epochs", c.EpochsAux},
		{"minibatch size", c.MinibatchSize},
	}
	for _, v := range ints {
		if v.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", v.name, v.value)
		}
	}
	if c.LR <= 0 {
		return fmt.Errorf("learning rate must be > 0, got %v", c.LR)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], got %v", c.Gamma)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("lambda must be in [0, 1], got %v", c.Lambda)
	}
	if c.EpsClip <= 0 || c.ValueClip <= 0 {
		return errors.New("clip values must be > 0")
	}
	if c.BetaS < 0 {
		return fmt.Errorf("entropy bonus must be >= 0, got %v", c.BetaS)
	}
	if c.SaveName == "" {
		return errors.New("save name must not be empty")
	}
	return nil
}

// Schedule holds the training-loop cadences.
type Schedule struct {
	EnvID               string
	NumEpisodes         int
	MaxSteps            int
	UpdateSteps         int
	PolicyUpdatesPerAux int
	SaveEvery           int
}

func DefaultSchedule() Schedule {
	return Schedule{
		EnvID:               "5555",
		NumEpisodes:         50000,
		MaxSteps:            500,
		UpdateSteps:         5000,
		PolicyUpdatesPerAux: 32,
		SaveEvery:           1000,
	}
}

func (s Schedule) Validate() error {
	switch {
	case s.NumEpisodes <= 0:
		return errors.New("num episodes must be > 0")
	case s.MaxSteps <= 0:
		return errors.New("max steps must be > 0")
	case s.UpdateSteps <= 0:
		return errors.New("update steps must be > 0")
	case s.PolicyUpdatesPerAux <= 0:
		return errors.New("policy updates per aux must be > 0")
	case s.SaveEvery <= 0:
		return errors.New("save every must be > 0")
	}
	return nil
}
