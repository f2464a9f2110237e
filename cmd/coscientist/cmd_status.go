package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"coscientist/internal/memory"
)

var statusFlags struct {
	session    string
	configPath string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted state of a session",
	RunE:  runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusFlags.session, "session", "", "Session id (required)")
	f.StringVar(&statusFlags.configPath, "config", "", "Config file (YAML or JSON)")

	_ = statusCmd.MarkFlagRequired("session")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	runFlags.configPath = statusFlags.configPath
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := cfg.OpenStore(statusFlags.session)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	env, err := store.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:    %s\n", env.SessionID)
	fmt.Fprintf(out, "Goal:       %s\n", env.ResearchGoal)
	fmt.Fprintf(out, "Iterations: %d\n", env.Iterations)
	fmt.Fprintf(out, "Updated:    %s\n", env.UpdatedAt)
	fmt.Fprintf(out, "Hypotheses: %d (%d unreviewed)\n", len(env.Hypotheses), len(env.Unreviewed()))
	fmt.Fprintf(out, "Reviews:    %d\n", len(env.Reviews))
	fmt.Fprintf(out, "Matches:    %d\n", env.Tournament.TotalMatches)
	fmt.Fprintf(out, "Edges:      %d\n", len(env.Proximity.Edges))

	if len(env.Tournament.Rankings) > 0 {
		type ranked struct {
			title  string
			rating float64
		}
		var table []ranked
		for _, h := range env.Hypotheses {
			if r, ok := env.Tournament.Rankings[h.ID]; ok {
				table = append(table, ranked{title: h.Title, rating: r})
			}
		}
		sort.Slice(table, func(i, j int) bool { return table[i].rating > table[j].rating })
		fmt.Fprintf(out, "Rankings:\n")
		for _, r := range table {
			fmt.Fprintf(out, "  %7.1f  %s\n", r.rating, r.title)
		}
	}
	if st, ok := env.StepStates[memory.StateMetaReview]; ok {
		if overview, ok := st["last_review"].(string); ok && overview != "" {
			fmt.Fprintf(out, "\n=== Last Research Overview ===\n%s\n", overview)
		}
	}
	return nil
}
