package ppg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/nn"
)

type actorWeights struct {
	Trunk      []nn.LayerWeights `json:"trunk"`
	ActionHead nn.LayerWeights   `json:"action_head"`
	ValueHead  nn.LayerWeights   `json:"value_head"`
}

type checkpoint struct {
	Actor  actorWeights      `json:"actor"`
	Critic []nn.LayerWeights `json:"critic"`
}

func (a *Agent) CheckpointPath() string {
	return filepath.Join(a.cfg.SaveDir, a.cfg.SaveName+".json")
}

// Save writes actor and critic weights as one checkpoint file, replacing any
// previous one atomically.
func (a *Agent) Save() (string, error) {
	path := a.CheckpointPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ckpt := checkpoint{
		Actor: actorWeights{
			Trunk:      a.actor.trunk.Snapshot(),
			ActionHead: a.actor.action.Snapshot(),
			ValueHead:  a.actor.value.Snapshot(),
		},
		Critic: a.critic.net.Snapshot(),
	}

	tmp, err := os.CreateTemp(dir, a.cfg.SaveName+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(ckpt); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

// Load restores actor and critic from path. A missing file is reported and
// leaves the current weights in place. Either both networks are restored or
// neither is.
func (a *Agent) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("checkpoint %s does not exist, keeping current parameters", path)
		return nil
	}
	if err != nil {
		return err
	}

	var ckpt checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return fmt.Errorf("decode checkpoint %s: %w", path, err)
	}

	checks := []error{
		a.actor.trunk.Check(ckpt.Actor.Trunk),
		a.actor.action.Check(ckpt.Actor.ActionHead),
		a.actor.value.Check(ckpt.Actor.ValueHead),
		a.critic.net.Check(ckpt.Critic),
	}
	if err := errors.Join(checks...); err != nil {
		return fmt.Errorf("checkpoint %s: %w", path, err)
	}

	_ = a.actor.trunk.Restore(ckpt.Actor.Trunk)
	_ = a.actor.action.Restore(ckpt.Actor.ActionHead)
	_ = a.actor.value.Restore(ckpt.Actor.ValueHead)
	_ = a.critic.net.Restore(ckpt.Critic)
	log.Printf("loaded checkpoint %s", path)
	return nil
}
