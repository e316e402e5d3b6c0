package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/b/tabline/pkg/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch -- command [args...]",
	Short: "Run a command and notify the tab line when it exits",
	Long: `Run a command on a pseudo-terminal in the current pane and report its
exit code with 'tabline notify' when it finishes. tabline exits with the
command's exit code.

  tabline watch -- make test`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// exitCodeError ends the process with code and no message.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func runWatch(cmd *cobra.Command, args []string) error {
	code, err := runOnPty(args)
	if err != nil {
		return err
	}
	if err := notify(cmd.Context(), os.Getenv("TMUX_PANE"), code); err != nil {
		logging.Warn(logging.CatPipe, "notify failed", "error", err)
		fmt.Fprintf(os.Stderr, "tabline: %v\n", err)
	}
	if code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

// runOnPty runs args attached to a new pty that mirrors the controlling
// terminal, and returns the command's exit code.
func runOnPty(args []string) (int, error) {
	c := exec.Command(args[0], args[1:]...)
	ptmx, err := pty.Start(c)
	if err != nil {
		return 0, fmt.Errorf("start %s: %w", args[0], err)
	}
	defer ptmx.Close()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer func() { signal.Stop(winch); close(winch) }()
	go func() {
		for range winch {
			if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
				logging.Debug(logging.CatPipe, "resize pty", "error", err)
			}
		}
	}()
	winch <- syscall.SIGWINCH

	stdin := int(os.Stdin.Fd())
	if term.IsTerminal(stdin) {
		state, err := term.MakeRaw(stdin)
		if err != nil {
			return 0, fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(stdin, state)
	}

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, _ = io.Copy(os.Stdout, ptmx)

	return exitCode(c.Wait())
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, err
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}
