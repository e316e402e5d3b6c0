// Command tabline draws a tab line for the current tmux session and runs the
// per-session bus that delivers task completions to it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/b/tabline/pkg/config"
	"github.com/b/tabline/pkg/logging"
	"github.com/b/tabline/pkg/tmux"
)

func init() {
	// Query the terminal background before any program owns stdin, so the
	// OSC 11 reply cannot race the input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	sessionArg string
	cfg        *config.Config
	closeLog   func()
)

var rootCmd = &cobra.Command{
	Use:           "tabline",
	Short:         "A tab line for tmux with task completion alerts",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/tabline/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sessionArg, "session", "s", "",
		"tmux session whose bus to use (default: the current session)")
}

func initConfig() error {
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}
	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgFile, err)
	}

	path := cfg.Log.Path
	if env := os.Getenv("TABLINE_LOG"); env != "" {
		path = env
	}
	if path == "" {
		return nil
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	closeLog, err = logging.Init(path, level)
	return err
}

// resolveSession returns the --session flag or asks tmux for the current
// session name.
func resolveSession(ctx context.Context) (string, error) {
	if sessionArg != "" {
		return sessionArg, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	name, err := tmux.New().SessionName(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve tmux session (use --session outside tmux): %w", err)
	}
	return name, nil
}

func main() {
	err := rootCmd.Execute()
	if closeLog != nil {
		closeLog()
	}
	var exit exitCodeError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
