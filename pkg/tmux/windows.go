// Package tmux reads workspace and pane state from tmux and asks it to switch
// windows. Each tmux window is one workspace of the tab line.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/b/tabline/pkg/host"
)

// Window options a layout manager can set to describe the window's layout.
// The layout counts as dirty when the window's current layout differs from
// the saved one.
const (
	LayoutNameOption  = "@tabline_layout"
	LayoutSavedOption = "@tabline_layout_saved"
)

// BarOption is the pane option a running bar sets on its own pane. The pane
// command cannot tell a bar from "tabline watch", which runs on a pty of its
// own and shows up as "tabline" too.
const BarOption = "@tabline_bar"

const sep = "\x1f"

// Exec runs tmux with args and returns its standard output.
type Exec func(ctx context.Context, args ...string) ([]byte, error)

func runTmux(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "tmux", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return out, nil
}

// Client talks to the tmux server of the current session.
type Client struct {
	exec Exec
}

// New returns a client that shells out to tmux.
func New() *Client {
	return &Client{exec: runTmux}
}

// NewWithExec returns a client that runs commands through e.
func NewWithExec(e Exec) *Client {
	return &Client{exec: e}
}

type Window struct {
	ID           string
	Index        int // tmux window index, not necessarily contiguous
	Name         string
	Active       bool
	Zoomed       bool
	Synchronized bool
	LayoutName   string
	Layout       string
	SavedLayout  string
}

// Workspace converts w to the host view at the given position.
func (w Window) Workspace(position int) host.Workspace {
	return host.Workspace{
		Position:             position,
		Name:                 w.Name,
		Active:               w.Active,
		IsFullscreenActive:   w.Zoomed,
		IsSyncPanesActive:    w.Synchronized,
		IsSwapLayoutDirty:    w.SavedLayout != "" && w.SavedLayout != w.Layout,
		ActiveSwapLayoutName: w.LayoutName,
	}
}

type Pane struct {
	ID          uint32
	WindowIndex int
	Command     string
	Title       string
	Bar         bool
}

// ListWindows returns the session's windows in tmux order.
func (c *Client) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := c.exec(ctx, "list-windows", "-F", strings.Join([]string{
		"#{window_id}",
		"#{window_index}",
		"#{window_name}",
		"#{window_active}",
		"#{window_zoomed_flag}",
		"#{pane_synchronized}",
		"#{" + LayoutNameOption + "}",
		"#{window_layout}",
		"#{" + LayoutSavedOption + "}",
	}, sep))
	if err != nil {
		return nil, err
	}

	var windows []Window
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, sep)
		if len(parts) < 9 {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			ID:           parts[0],
			Index:        index,
			Name:         ansi.Strip(parts[2]),
			Active:       parts[3] == "1",
			Zoomed:       parts[4] == "1",
			Synchronized: parts[5] == "1",
			LayoutName:   ansi.Strip(parts[6]),
			Layout:       parts[7],
			SavedLayout:  parts[8],
		})
	}
	return windows, nil
}

// ListPanes returns every pane of the session.
func (c *Client) ListPanes(ctx context.Context) ([]Pane, error) {
	out, err := c.exec(ctx, "list-panes", "-s", "-F",
		"#{window_index}"+sep+"#{pane_id}"+sep+"#{pane_current_command}"+sep+"#{pane_title}"+sep+"#{"+BarOption+"}")
	if err != nil {
		return nil, err
	}

	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, sep)
		if len(parts) < 4 {
			continue
		}
		window, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		id, err := ParsePaneID(parts[1])
		if err != nil {
			continue
		}
		panes = append(panes, Pane{
			ID:          id,
			WindowIndex: window,
			Command:     ansi.Strip(parts[2]),
			Title:       ansi.Strip(parts[3]),
			Bar:         len(parts) > 4 && parts[4] == "1",
		})
	}
	return panes, nil
}

// ParsePaneID parses tmux's "%12" form (the "%" is optional).
func ParsePaneID(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(s), "%"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pane id %q", s)
	}
	return uint32(n), nil
}

// Snapshot is the host view of a session at one instant.
type Snapshot struct {
	Windows    []Window
	Workspaces []host.Workspace
	Manifest   host.PaneManifest
}

// IndexOf returns the tmux window index of the workspace at the 1-based
// position.
func (s Snapshot) IndexOf(position int) (int, bool) {
	if position < 1 || position > len(s.Windows) {
		return 0, false
	}
	return s.Windows[position-1].Index, true
}

// Snapshot lists windows and panes and converts them to the host view.
// Panes whose window disappeared between the two calls are dropped.
func (c *Client) Snapshot(ctx context.Context) (Snapshot, error) {
	windows, err := c.ListWindows(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	panes, err := c.ListPanes(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	s := Snapshot{
		Windows:    windows,
		Workspaces: make([]host.Workspace, len(windows)),
		Manifest:   host.PaneManifest{},
	}
	positions := make(map[int]int, len(windows))
	for i, w := range windows {
		s.Workspaces[i] = w.Workspace(i)
		positions[w.Index] = i
	}
	for _, p := range panes {
		pos, ok := positions[p.WindowIndex]
		if !ok {
			continue
		}
		s.Manifest[pos] = append(s.Manifest[pos], host.Pane{
			ID:       p.ID,
			IsPlugin: p.Bar,
			Title:    p.Title,
		})
	}
	return s, nil
}

func (c *Client) display(ctx context.Context, format string) (string, error) {
	out, err := c.exec(ctx, "display-message", "-p", format)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// SessionName returns the name of the attached session.
func (c *Client) SessionName(ctx context.Context) (string, error) {
	name, err := c.display(ctx, "#{session_name}")
	if err != nil {
		return "", err
	}
	return ansi.Strip(name), nil
}

// PrefixActive reports whether the client has pressed the prefix key.
func (c *Client) PrefixActive(ctx context.Context) (bool, error) {
	v, err := c.display(ctx, "#{client_prefix}")
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

// SelectWindow focuses the window with the tmux index.
func (c *Client) SelectWindow(ctx context.Context, index int) error {
	_, err := c.exec(ctx, "select-window", "-t", fmt.Sprintf(":%d", index))
	return err
}

// SaveLayout records the window's current layout as its saved layout, which
// clears the dirty marker.
func (c *Client) SaveLayout(ctx context.Context, w Window) error {
	_, err := c.exec(ctx, "set-option", "-w", "-t", fmt.Sprintf(":%d", w.Index), LayoutSavedOption, w.Layout)
	return err
}

// MarkBarPane flags pane as a bar so snapshots report it as a plugin pane.
// An empty pane means the pane the command runs in.
func (c *Client) MarkBarPane(ctx context.Context, pane string) error {
	args := []string{"set-option", "-p"}
	if pane != "" {
		args = append(args, "-t", pane)
	}
	_, err := c.exec(ctx, append(args, BarOption, "1")...)
	return err
}
