package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"coscientist/internal/config"
	"coscientist/internal/logging"
	"coscientist/internal/memory"
	"coscientist/internal/orchestrate"
)

var runFlags struct {
	goal       string
	session    string
	configPath string
	capability string
	rounds     int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run research rounds for a goal",
	Long: "Run drives the orchestration loop for a session: the scheduler picks\n" +
		"steps, each step calls the capability command, and all results are\n" +
		"persisted so the session can be resumed with the same --session id.",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.goal, "goal", "", "Research goal (required for a new session)")
	f.StringVar(&runFlags.session, "session", "", "Session id (required)")
	f.StringVar(&runFlags.configPath, "config", "", "Config file (YAML or JSON)")
	f.StringVar(&runFlags.capability, "capability", "", "Command that turns a prompt on stdin into text on stdout (required)")
	f.IntVar(&runFlags.rounds, "rounds", 0, "Override the configured round cap")

	_ = runCmd.MarkFlagRequired("session")
	_ = runCmd.MarkFlagRequired("capability")
}

func loadConfig() (*config.Config, error) {
	if runFlags.configPath == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.LoadFromPath(runFlags.configPath)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	store, err := cfg.OpenStore(runFlags.session)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	loopCfg := orchestrate.Config{
		MaxRounds:      cfg.MaxRounds,
		MaxMatches:     cfg.MaxMatches,
		MaxComparisons: cfg.MaxComparisons,
		EvolveTop:      cfg.EvolveTop,
		MetaReviewTop:  cfg.MetaReviewTop,
		InitialBatch:   5,
		LaterBatch:     3,
		Concurrency:    cfg.Concurrency,
		CallTimeout:    time.Duration(cfg.CallTimeoutSec) * time.Second,
	}
	if runFlags.rounds > 0 {
		loopCfg.MaxRounds = runFlags.rounds
	}

	loop := orchestrate.New(
		memory.New(store),
		&commandGenerator{command: runFlags.capability},
		loopCfg,
	)

	env, err := loop.Run(cmd.Context(), runFlags.goal)
	if err != nil {
		return fmt.Errorf("run session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:    %s\n", env.SessionID)
	fmt.Fprintf(out, "Iterations: %d\n", env.Iterations)
	fmt.Fprintf(out, "Hypotheses: %d (reviews %d, matches %d, edges %d)\n",
		len(env.Hypotheses), len(env.Reviews), env.Tournament.TotalMatches, len(env.Proximity.Edges))
	if st, ok := env.StepStates[memory.StateMetaReview]; ok {
		if overview, ok := st["last_review"].(string); ok && overview != "" {
			fmt.Fprintf(out, "\n=== Research Overview ===\n%s\n", overview)
		}
	}
	return nil
}
