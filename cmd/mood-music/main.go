// Command mood-music runs the mood conversation and music recommendation
// engine, either as an HTTP service or as an interactive terminal chat.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justestif/go-mood-music/internal/config"
	"github.com/justestif/go-mood-music/internal/logging"
)

// Version information (set at build time)
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "mood-music",
		Short:         "Mood-aware music companion",
		Long:          "Chat about how you feel and get a playable list of tracks that fits the mood.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newChatCmd(&configPath))
	return root
}

// loadConfig loads and validates configuration and builds the root logger.
func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid config: %w", err)
	}
	return cfg, logging.New(cfg.Logging, os.Stderr), nil
}
