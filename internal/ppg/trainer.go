package ppg

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/buffer"
	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/env"
)

// Outcome is how an episode ended.
type Outcome string

const (
	OutcomeRestart Outcome = "restart" // env reported done
	OutcomeReset   Outcome = "reset"   // step budget exhausted
)

// EpisodeStats summarizes one finished episode.
type EpisodeStats struct {
	Episode         int
	Steps           int
	MeanReward      float64
	MeanStepSeconds float64
	TotalSeconds    float64
	Outcome         Outcome
}

// Recorder persists per-episode statistics.
type Recorder interface {
	Record(EpisodeStats) error
}

// Reporter displays training progress.
type Reporter interface {
	EpisodeStart(episode, total int)
	Step(step, maxSteps int, meanReward, meanStepSeconds float64)
	EpisodeEnd(EpisodeStats)
}

// Session holds the counters of one training run.
type Session struct {
	TotalSteps    int
	PolicyUpdates int
	AuxUpdates    int
	Episodes      int
	Restarts      int
	Resets        int
	Saves         int
}

// Trainer drives Env with Agent and schedules both learning phases. Recorder
// and Reporter are optional.
type Trainer struct {
	Agent    *Agent
	Env      env.Environment
	Schedule Schedule
	Recorder Recorder
	Reporter Reporter

	rollout *buffer.Buffer[buffer.Transition]
	aux     *buffer.Buffer[buffer.AuxSnapshot]
}

// RolloutLen is the number of transitions waiting for the next policy phase.
func (t *Trainer) RolloutLen() int {
	if t.rollout == nil {
		return 0
	}
	return t.rollout.Len()
}

// AuxLen is the number of snapshots waiting for the next auxiliary phase.
func (t *Trainer) AuxLen() int {
	if t.aux == nil {
		return 0
	}
	return t.aux.Len()
}

// Run trains for Schedule.NumEpisodes episodes and closes Env exactly once,
// also when an error or ctx cancellation ends the run early. ctx is only
// observed between episodes.
func (t *Trainer) Run(ctx context.Context) (sess Session, err error) {
	if err := t.Schedule.Validate(); err != nil {
		return sess, fmt.Errorf("invalid schedule: %w", err)
	}
	if t.rollout == nil {
		t.rollout = buffer.NewRollout()
		t.aux = buffer.NewAux()
	}
	defer func() {
		if cerr := t.Env.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close environment: %w", cerr)
		}
	}()

	for episode := 1; episode <= t.Schedule.NumEpisodes; episode++ {
		select {
		case <-ctx.Done():
			return sess, ctx.Err()
		default:
		}

		stats, err := t.runEpisode(&sess, episode)
		if err != nil {
			return sess, fmt.Errorf("episode %d: %w", episode, err)
		}
		sess.Episodes++

		if t.Reporter != nil {
			t.Reporter.EpisodeEnd(stats)
		}
		if t.Recorder != nil {
			if err := t.Recorder.Record(stats); err != nil {
				return sess, fmt.Errorf("record episode %d: %w", episode, err)
			}
		}

		if episode%t.Schedule.SaveEvery == 0 {
			path, err := t.Agent.Save()
			if err != nil {
				return sess, fmt.Errorf("save checkpoint: %w", err)
			}
			sess.Saves++
			log.Printf("saved checkpoint %s after episode %d", path, episode)
		}
	}
	return sess, nil
}

func (t *Trainer) runEpisode(sess *Session, episode int) (EpisodeStats, error) {
	s := t.Schedule
	stats := EpisodeStats{Episode: episode}
	if t.Reporter != nil {
		t.Reporter.EpisodeStart(episode, s.NumEpisodes)
	}

	var rewardSum float64
	var elapsed time.Duration
	for step := 1; step <= s.MaxSteps; step++ {
		state, err := t.Env.State()
		if err != nil {
			return stats, fmt.Errorf("state: %w", err)
		}
		start := time.Now()
		sess.TotalSteps++

		d, err := t.Agent.Act(state)
		if err != nil {
			return stats, err
		}
		next, reward, done, err := t.Env.Step(d.Action, state)
		if err != nil {
			return stats, fmt.Errorf("step: %w", err)
		}
		t.rollout.Append(buffer.Transition{
			State:   state,
			Action:  d.Action,
			LogProb: d.LogProb,
			Reward:  reward,
			Done:    done,
			Value:   d.Value,
		})

		rewardSum += reward
		elapsed += time.Since(start)
		stats.Steps = step
		if t.Reporter != nil {
			t.Reporter.Step(step, s.MaxSteps, rewardSum/float64(step), elapsed.Seconds()/float64(step))
		}

		if sess.TotalSteps%s.UpdateSteps == 0 {
			if err := t.update(sess, next); err != nil {
				return stats, err
			}
		}

		if done {
			if err := t.Env.Restart(); err != nil {
				return stats, fmt.Errorf("restart: %w", err)
			}
			sess.Restarts++
			stats.Outcome = OutcomeRestart
			break
		}
		if step == s.MaxSteps {
			if err := t.Env.Reset(); err != nil {
				return stats, fmt.Errorf("reset: %w", err)
			}
			sess.Resets++
			stats.Outcome = OutcomeReset
		}
	}

	stats.MeanReward = rewardSum / float64(stats.Steps)
	stats.MeanStepSeconds = elapsed.Seconds() / float64(stats.Steps)
	stats.TotalSeconds = elapsed.Seconds()
	return stats, nil
}

// update runs the policy phase and, on its cadence, the auxiliary phase.
func (t *Trainer) update(sess *Session, next []float64) error {
	losses, err := t.Agent.Learn(t.rollout.All(), t.aux, next)
	if err != nil {
		return fmt.Errorf("policy phase: %w", err)
	}
	sess.PolicyUpdates++
	t.rollout.Clear()
	log.Printf("policy update %d: policy loss %.4f, value loss %.4f", sess.PolicyUpdates, losses.Policy, losses.Value)

	if sess.PolicyUpdates%t.Schedule.PolicyUpdatesPerAux != 0 {
		return nil
	}
	losses, err = t.Agent.LearnAux(t.aux)
	if err != nil {
		return fmt.Errorf("aux phase: %w", err)
	}
	sess.AuxUpdates++
	t.aux.Clear()
	log.Printf("aux update %d: aux loss %.4f, kl %.5f, value loss %.4f", sess.AuxUpdates, losses.Aux, losses.KL, losses.Value)
	return nil
}
