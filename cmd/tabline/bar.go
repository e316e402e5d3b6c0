package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/b/tabline/pkg/bar"
	"github.com/b/tabline/pkg/daemon"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/logging"
	"github.com/b/tabline/pkg/tmux"
)

var barCmd = &cobra.Command{
	Use:   "bar",
	Short: "Draw the tab line in the current pane",
	Long: `Draw the tab line for the current tmux session. Run it in a one-line
pane, e.g.

  tmux split-window -vbf -l 1 tabline bar

Send SIGUSR1 from a tmux hook to refresh immediately:

  set-hook -g window-linked 'run-shell "pkill -USR1 -f \"tabline bar\""'`,
	RunE: runBar,
}

var noBus bool

func init() {
	rootCmd.AddCommand(barCmd)
	barCmd.Flags().BoolVar(&noBus, "no-bus", false, "do not connect to the session bus")
}

func runBar(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	opts := bar.Options{
		Config:  cfg,
		Tmux:    tmux.New(),
		Pane:    os.Getenv("TMUX_PANE"),
		Profile: termenv.EnvColorProfile(),
	}

	if !noBus {
		client, pipes, err := connectBus(ctx)
		if err != nil {
			logging.Warn(logging.CatDaemon, "running without bus", "error", err)
		} else {
			defer client.Close()
			opts.Bus = client
			opts.Pipes = pipes
		}
	}

	p := tea.NewProgram(bar.New(opts), tea.WithMouseCellMotion())

	stopWatch, err := bar.WatchConfig(p, cfgFile)
	if err != nil {
		logging.Warn(logging.CatConfig, "config reload disabled", "error", err)
	} else {
		defer stopWatch()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			p.Send(bar.RefreshMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running bar: %w", err)
	}
	return nil
}

// connectBus subscribes to the session bus and returns the channel its pipe
// messages arrive on. The channel closes when the connection does.
func connectBus(ctx context.Context) (*daemon.Client, <-chan host.PipeMessage, error) {
	session, err := resolveSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := daemon.Dial(ctx, daemon.SocketPath(session))
	if err != nil {
		return nil, nil, err
	}
	id := uuid.NewString()
	if err := client.Subscribe(id); err != nil {
		client.Close()
		return nil, nil, err
	}
	logging.Info(logging.CatDaemon, "subscribed to bus", "session", session, "client", id)

	pipes := make(chan host.PipeMessage, 16)
	go func() {
		defer close(pipes)
		err := client.Listen(func(msg daemon.Message) {
			if msg.Type != daemon.MsgPipe || msg.Pipe == nil {
				return
			}
			pipes <- msg.Pipe.PipeMessage(msg.ClientID)
		})
		if err != nil {
			logging.Warn(logging.CatDaemon, "bus connection lost", "error", err)
		}
	}()
	return client, pipes, nil
}
