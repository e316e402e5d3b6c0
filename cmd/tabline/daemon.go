package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/b/tabline/pkg/daemon"
	"github.com/b/tabline/pkg/logging"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the session bus",
	Long: `Run the message bus for one tmux session. Bars subscribe to it and
'tabline notify' publishes task completions through it. Only one bus runs per
session; a second instance exits with an error.

Start it from tmux.conf:

  run-shell -b 'tabline daemon'`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if cfg.Log.Path == "" && os.Getenv("TABLINE_LOG") == "" {
		logging.Stderr(logging.LevelInfo)
	}

	session, err := resolveSession(cmd.Context())
	if err != nil {
		return err
	}

	srv := daemon.NewServer(session)
	srv.OnPipe = func(sender string, p daemon.PipePayload, delivered int) {
		logging.Debug(logging.CatDaemon, "relayed", "from", sender, "name", p.Name, "source", p.Source, "delivered", delivered)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start bus: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-sigCh
	logging.Info(logging.CatDaemon, "shutting down", "signal", sig.String(), "clients", srv.ClientCount())
	srv.Stop()
	return nil
}
