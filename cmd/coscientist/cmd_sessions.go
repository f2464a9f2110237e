package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coscientist/internal/memory"
)

var sessionsFlags struct {
	configPath string
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored research sessions",
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsFlags.configPath, "config", "", "Config file (YAML or JSON)")
}

func runSessions(cmd *cobra.Command, _ []string) error {
	runFlags.configPath = sessionsFlags.configPath
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var ids []string
	switch cfg.Backend {
	case "sqlite":
		path := cfg.StoragePath
		if path == "" || path == memory.DefaultFileDir {
			path = memory.DefaultDBPath
		}
		// Session id is irrelevant for listing; bind to a placeholder.
		store, err := memory.OpenSQL(path, "_list")
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		ids, err = store.Sessions()
		if err != nil {
			return err
		}
	default:
		dir := cfg.StoragePath
		if dir == "" {
			dir = memory.DefaultFileDir
		}
		ids, err = memory.ListFileSessions(dir)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}
