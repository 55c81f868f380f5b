// Package main provides the entry point for the candidate tracker CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-tracker/internal/config"
)

var (
	configPath string
	verbose    bool

	// cfg is resolved once per invocation by loadSettings.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "LinkedIn candidate tracker",
	Long: "Tracker extracts candidate profiles from LinkedIn profile pages, records them in a " +
		"candidate store and serves the candidates REST API.",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func loadSettings(_ *cobra.Command, _ []string) error {
	loaded, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Verbose = true
	}
	cfg = loaded
	slog.SetDefault(newLogger(os.Stderr, cfg.Verbose))
	return nil
}

// resolveConfig layers the config file (if any) and the environment over the
// built-in defaults and validates the result.
func resolveConfig(path string) (config.Config, error) {
	file := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		file = loaded
	}
	file.ApplyEnv()

	merged := file.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
