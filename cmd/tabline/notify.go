package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/b/tabline/pkg/daemon"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/statusbar"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Report that a task in a pane finished",
	Long: `Tell the bars of the session that the task in a pane finished. The tab
holding the pane starts blinking unless it is the active one.

Hook it into the shell, e.g. for zsh:

  precmd() { tabline notify --exit-code $? }`,
	RunE: runNotify,
}

var (
	notifyPane string
	notifyCode int
)

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringVar(&notifyPane, "pane", "", "pane id (default: $TMUX_PANE)")
	notifyCmd.Flags().IntVar(&notifyCode, "exit-code", 0, "exit code of the finished task")
}

func runNotify(cmd *cobra.Command, _ []string) error {
	pane := notifyPane
	if pane == "" {
		pane = os.Getenv("TMUX_PANE")
	}
	return notify(cmd.Context(), pane, notifyCode)
}

// processStatus builds the bus message for a finished task.
func processStatus(pane string, code int) (daemon.PipePayload, error) {
	if pane == "" {
		return daemon.PipePayload{}, errors.New("no pane id: pass --pane or run inside tmux")
	}
	return daemon.PipePayload{
		Source: host.PipeFromCLI.String(),
		Name:   statusbar.ProcessStatusMessage,
		Args: map[string]string{
			"pane_id":   pane,
			"exit_code": strconv.Itoa(code),
		},
	}, nil
}

func notify(ctx context.Context, pane string, code int) error {
	payload, err := processStatus(pane, code)
	if err != nil {
		return err
	}
	session, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	client, err := daemon.Dial(ctx, daemon.SocketPath(session))
	if err != nil {
		return fmt.Errorf("is 'tabline daemon' running for session %q? %w", session, err)
	}
	defer client.Close()
	return client.Send(payload)
}
