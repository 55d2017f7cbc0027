package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"golang.org/x/exp/rand"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/docking"
	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/env"
	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/metrics"
	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/ppg"
)

func main() {
	cfg := ppg.DefaultConfig()
	sched := ppg.DefaultSchedule()

	flag.IntVar(&cfg.StateDim, "state-dim", getenvInt("STATE_DIM", cfg.StateDim), "observation size")
	flag.IntVar(&cfg.NumActions, "actions", getenvInt("NUM_ACTIONS", cfg.NumActions), "action space size")
	flag.IntVar(&cfg.ActorHidden, "actor-hidden", getenvInt("ACTOR_HIDDEN", cfg.ActorHidden), "actor hidden width")
	flag.IntVar(&cfg.CriticHidden, "critic-hidden", getenvInt("CRITIC_HIDDEN", cfg.CriticHidden), "critic hidden width")
	flag.IntVar(&cfg.Epochs, "epochs", getenvInt("EPOCHS", cfg.Epochs), "policy phase epochs")
	flag.IntVar(&cfg.EpochsAux, "epochs-aux", getenvInt("EPOCHS_AUX", cfg.EpochsAux), "auxiliary phase epochs")
	flag.IntVar(&cfg.MinibatchSize, "minibatch", getenvInt("MINIBATCH_SIZE", cfg.MinibatchSize), "minibatch size")
	flag.Float64Var(&cfg.LR, "lr", getenvFloat("LR", cfg.LR), "learning rate")
	flag.Float64Var(&cfg.Lambda, "lambda", getenvFloat("LAMBDA", cfg.Lambda), "GAE lambda")
	flag.Float64Var(&cfg.Gamma, "gamma", getenvFloat("GAMMA", cfg.Gamma), "discount")
	flag.Float64Var(&cfg.BetaS, "beta-s", getenvFloat("BETA_S", cfg.BetaS), "entropy bonus")
	flag.Float64Var(&cfg.EpsClip, "eps-clip", getenvFloat("EPS_CLIP", cfg.EpsClip), "policy ratio clip")
	flag.Float64Var(&cfg.ValueClip, "value-clip", getenvFloat("VALUE_CLIP", cfg.ValueClip), "value clip")
	flag.StringVar(&cfg.SaveName, "name", getenv("RUN_NAME", cfg.SaveName), "checkpoint and record name")
	flag.StringVar(&cfg.SaveDir, "dir", getenv("RUN_DIR", cfg.SaveDir), "output directory")

	flag.StringVar(&sched.EnvID, "env", getenv("ENV_ID", sched.EnvID), `"sim" for the in-process simulator, else a bridge port or URL`)
	flag.IntVar(&sched.NumEpisodes, "episodes", getenvInt("NUM_EPISODES", sched.NumEpisodes), "episodes to train")
	flag.IntVar(&sched.MaxSteps, "max-steps", getenvInt("MAX_STEPS", sched.MaxSteps), "step budget per episode")
	flag.IntVar(&sched.UpdateSteps, "update-steps", getenvInt("UPDATE_STEPS", sched.UpdateSteps), "env steps between policy phases")
	flag.IntVar(&sched.PolicyUpdatesPerAux, "updates-per-aux", getenvInt("POLICY_UPDATES_PER_AUX", sched.PolicyUpdatesPerAux), "policy phases between aux phases")
	flag.IntVar(&sched.SaveEvery, "save-every", getenvInt("SAVE_EVERY", sched.SaveEvery), "episodes between checkpoints")

	seed := flag.Int64("seed", getenvInt64("SEED", time.Now().UnixNano()), "random seed")
	load := flag.String("load", getenv("LOAD", ""), "checkpoint to resume from")
	color := flag.Bool("color", getenv("NO_COLOR", "") == "", "colored progress output")
	flag.Parse()

	cfg.Seed = uint64(*seed)
	agent, err := ppg.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if *load != "" {
		if err := agent.Load(*load); err != nil {
			log.Fatal(err)
		}
	}

	environment, err := openEnv(sched.EnvID, cfg.Seed)
	if err != nil {
		log.Fatal(err)
	}

	trainer := &ppg.Trainer{
		Agent:    agent,
		Env:      environment,
		Schedule: sched,
		Recorder: metrics.NewCSV(cfg.SaveDir, cfg.SaveName),
		Reporter: metrics.NewConsole(os.Stdout, *color),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("training %s on %s (episodes=%d max_steps=%d update_steps=%d seed=%d)",
		cfg.SaveName, sched.EnvID, sched.NumEpisodes, sched.MaxSteps, sched.UpdateSteps, *seed)
	sess, err := trainer.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	path, err := agent.Save()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("done: %d steps, %d policy updates, %d aux updates, checkpoint %s",
		sess.TotalSteps, sess.PolicyUpdates, sess.AuxUpdates, path)
}

func openEnv(id string, seed uint64) (env.Environment, error) {
	if id == "sim" {
		return docking.NewEnv(rand.New(rand.NewSource(seed))), nil
	}
	return env.Dial(id)
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
