package metrics

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/ppg"
)

// Console prints a carriage-return progress line while an episode runs and a
// summary line when it ends.
type Console struct {
	W  io.Writer
	au aurora.Aurora
}

func NewConsole(w io.Writer, color bool) *Console {
	return &Console{W: w, au: aurora.NewAurora(color)}
}

func (c *Console) EpisodeStart(episode, total int) {
	fmt.Fprintln(c.W, c.au.Bold(c.au.Cyan(fmt.Sprintf("Episode %d/%d", episode, total))))
}

func (c *Console) Step(step, maxSteps int, meanReward, meanStepSeconds float64) {
	fmt.Fprintf(c.W, "\rSteps = %d/%d | Mean Reward = %s | Mean Iteration time = %.3f s",
		step, maxSteps, c.reward(meanReward), meanStepSeconds)
}

func (c *Console) EpisodeEnd(s ppg.EpisodeStats) {
	outcome := c.au.Yellow(string(s.Outcome))
	if s.Outcome == ppg.OutcomeRestart {
		outcome = c.au.Magenta(string(s.Outcome))
	}
	fmt.Fprintf(c.W, "\rSteps = %d | Mean Reward = %s | Mean Iteration time = %.3f s | Total Episode Time = %.2f s | %s\n",
		s.Steps, c.reward(s.MeanReward), s.MeanStepSeconds, s.TotalSeconds, outcome)
}

func (c *Console) reward(r float64) aurora.Value {
	text := fmt.Sprintf("%.3f", r)
	if r < 0 {
		return c.au.Red(text)
	}
	return c.au.Green(text)
}
