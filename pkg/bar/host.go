package bar

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/b/tabline/pkg/daemon"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/logging"
	"github.com/b/tabline/pkg/tmux"
)

// Bus publishes plugin broadcasts to sibling bars.
type Bus interface {
	Send(p daemon.PipePayload) error
}

type (
	timerMsg      struct{ elapsed time.Duration }
	permissionMsg struct{ granted bool }
	switchedMsg   struct{ err error }
	sentMsg       struct{ err error }
)

// teaHost implements host.Host on top of tmux. Effects are queued as tea
// commands and handed to the program after each plugin call.
type teaHost struct {
	tmux       *tmux.Client
	bus        Bus
	snapshot   tmux.Snapshot
	selectable bool
	kinds      []host.EventKind
	pending    []tea.Cmd
}

func (h *teaHost) queue(cmd tea.Cmd) {
	h.pending = append(h.pending, cmd)
}

// drain returns the queued effects as one command.
func (h *teaHost) drain() tea.Cmd {
	cmds := h.pending
	h.pending = nil
	return tea.Batch(cmds...)
}

// RequestPermission is granted at once: a tmux client may read and change
// its own session.
func (h *teaHost) RequestPermission(perms ...host.PermissionType) {
	logging.Debug(logging.CatHost, "permission requested", "perms", perms)
	h.queue(func() tea.Msg { return permissionMsg{granted: true} })
}

func (h *teaHost) Subscribe(kinds ...host.EventKind) {
	h.kinds = append(h.kinds, kinds...)
}

func (h *teaHost) SetSelectable(selectable bool) {
	h.selectable = selectable
}

func (h *teaHost) SetTimeout(d time.Duration) {
	h.queue(tea.Tick(d, func(time.Time) tea.Msg { return timerMsg{elapsed: d} }))
}

func (h *teaHost) SwitchTabTo(position int) {
	index, ok := h.snapshot.IndexOf(position)
	if !ok {
		logging.Warn(logging.CatTmux, "switch to unknown tab", "position", position)
		return
	}
	c := h.tmux
	h.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return switchedMsg{err: c.SelectWindow(ctx, index)}
	})
}

func (h *teaHost) Broadcast(name, payload string) {
	if h.bus == nil {
		return
	}
	bus := h.bus
	h.queue(func() tea.Msg {
		return sentMsg{err: bus.Send(daemon.PipePayload{
			Source:  host.PipeFromPlugin.String(),
			Name:    name,
			Payload: payload,
		})}
	})
}
