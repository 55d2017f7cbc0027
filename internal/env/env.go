// Package env defines the environment adapter the trainer drives and an HTTP
// bridge for adapters that live in another process.
package env

// Environment is a black-box episodic simulator. Calls block until the
// simulator answers.
type Environment interface {
	// State returns the current observation without side effects.
	State() ([]float64, error)
	// Step applies action given the observation it was chosen from.
	Step(action int, state []float64) (next []float64, reward float64, done bool, err error)
	// Reset ends an episode that ran out of steps.
	Reset() error
	// Restart ends an episode after success or failure.
	Restart() error
	Close() error
}

type stateResponse struct {
	State []float64 `json:"state"`
}

type stepRequest struct {
	Action int       `json:"action"`
	State  []float64 `json:"state"`
}

type stepResponse struct {
	State  []float64 `json:"state"`
	Reward float64   `json:"reward"`
	Done   bool      `json:"done"`
}
