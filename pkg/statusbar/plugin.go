// Package statusbar is the tab line component itself: it caches what the host
// reports, owns the alert tracker, and turns state into one rendered row.
//
// The host delivers events one at a time. Every handler returns whether the
// row should be redrawn; effects (timers, tab switches, broadcasts) are
// requested through host.Host and never assumed to complete synchronously.
package statusbar

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/b/tabline/pkg/alert"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/line"
	"github.com/b/tabline/pkg/logging"
	"github.com/b/tabline/pkg/perf"
	"github.com/b/tabline/pkg/syncbridge"
	"github.com/b/tabline/pkg/tab"
)

// DefaultBlinkInterval is the delay between alert ticks.
const DefaultBlinkInterval = time.Second

// Options tune a Plugin. The zero value blinks every second until visited,
// syncs with siblings disabled, and announces overflow with counts.
type Options struct {
	BlinkInterval time.Duration
	MaxBlinks     int
	Sync          bool
	Overflow      line.OverflowStyle
}

func (o Options) withDefaults() Options {
	if o.BlinkInterval <= 0 {
		o.BlinkInterval = DefaultBlinkInterval
	}
	if o.Overflow == "" {
		o.Overflow = line.OverflowCount
	}
	return o
}

// Plugin is one tab line instance.
type Plugin struct {
	host   host.Host
	opts   Options
	alerts *alert.Tracker
	bridge *syncbridge.Bridge

	tabs    []host.Workspace
	active  int // 1-based position of the active workspace, 0 before the first snapshot
	panes   host.PaneManifest
	mode    host.ModeInfo
	granted bool
	line    line.Line
}

// New returns a plugin that requests effects from h.
func New(h host.Host, opts Options) *Plugin {
	opts = opts.withDefaults()
	return &Plugin{
		host:   h,
		opts:   opts,
		alerts: alert.NewTracker(opts.MaxBlinks),
		bridge: syncbridge.New(h),
		panes:  host.PaneManifest{},
	}
}

// Load asks for permissions and subscribes to every event the plugin
// handles. The plugin stays selectable until permission is granted so the
// user can answer the prompt.
func (p *Plugin) Load() {
	p.host.RequestPermission(
		host.PermissionReadApplicationState,
		host.PermissionChangeApplicationState,
	)
	p.host.Subscribe(host.AllKinds...)
	p.host.SetSelectable(true)
}

// Reconfigure replaces the options without touching alert state. It
// reports whether the row looks different as a result.
func (p *Plugin) Reconfigure(opts Options) bool {
	opts = opts.withDefaults()
	changed := opts.Overflow != p.opts.Overflow
	p.opts = opts
	p.alerts.MaxBlinks = opts.MaxBlinks
	return changed
}

// Update handles one host event.
func (p *Plugin) Update(ev host.Event) bool {
	switch ev := ev.(type) {
	case host.TabUpdate:
		return p.updateTabs(ev.Tabs)
	case host.PaneUpdate:
		p.panes = ev.Manifest
		if p.panes == nil {
			p.panes = host.PaneManifest{}
		}
		return false
	case host.ModeUpdate:
		changed := p.mode != ev.Info
		p.mode = ev.Info
		return changed
	case host.Timer:
		out := p.alerts.Tick()
		logging.Debug(logging.CatAlert, "tick", "alerts", p.alerts.Len(), "rearm", out.ScheduleTick)
		return p.apply(out)
	case host.Mouse:
		p.mouse(ev)
		return false
	case host.PermissionResult:
		if ev.Granted {
			p.granted = true
			p.host.SetSelectable(false)
			return false
		}
		logging.Warn(logging.CatHost, "permission denied by user")
		return false
	default:
		logging.Warn(logging.CatHost, "unrecognized event", "type", fmt.Sprintf("%T", ev))
		return false
	}
}

func (p *Plugin) updateTabs(tabs []host.Workspace) bool {
	active := 0
	for i, t := range tabs {
		if t.Active {
			active = i + 1
			break
		}
	}
	if active == 0 {
		p.tabs = tabs
		logging.Warn(logging.CatHost, "could not find active tab", "tabs", len(tabs))
		return false
	}

	changed := active != p.active || !slices.Equal(tabs, p.tabs)
	p.tabs = tabs
	p.active = active
	if dropped := p.alerts.Retain(len(tabs)); len(dropped) > 0 {
		logging.Debug(logging.CatAlert, "dropped alerts for closed tabs", "positions", dropped)
		changed = true
	}
	return changed
}

func (p *Plugin) mouse(ev host.Mouse) {
	if len(p.tabs) == 0 || p.active == 0 {
		return
	}
	switch ev.Action {
	case host.MouseLeftClick:
		if pos, ok := line.TabToFocus(p.line, p.active, ev.Col); ok {
			p.host.SwitchTabTo(pos)
		}
	case host.MouseScrollUp:
		p.host.SwitchTabTo(min(p.active+1, len(p.tabs)))
	case host.MouseScrollDown:
		p.host.SwitchTabTo(max(p.active-1, 1))
	}
}

// Pipe handles an inbound addressed message.
func (p *Plugin) Pipe(msg host.PipeMessage) bool {
	m, err := ParseMessage(msg)
	if errors.Is(err, ErrUnknownMessage) {
		logging.Debug(logging.CatPipe, "ignoring message", "name", msg.Name, "source", msg.Source)
		return false
	}
	if err != nil {
		logging.Warn(logging.CatPipe, "malformed message", "name", msg.Name, "source", msg.Source, "error", err)
		return false
	}

	switch m := m.(type) {
	case ProcessStatus:
		return p.processStatus(m)
	case AlertSync:
		if !p.opts.Sync {
			return false
		}
		out, applied := p.bridge.Receive(p.alerts, m.Snapshot)
		logging.Debug(logging.CatSync, "snapshot received", "from", msg.SourceID, "applied", applied, "alerts", len(m.Snapshot))
		return p.apply(out)
	}
	return false
}

func (p *Plugin) processStatus(m ProcessStatus) bool {
	for pos, panes := range p.panes {
		if pos == p.active-1 {
			continue
		}
		for _, pane := range panes {
			if pane.IsPlugin || pane.ID != m.PaneID {
				continue
			}
			out := p.alerts.Finish(pos+1, m.Success())
			logging.Info(logging.CatAlert, "task finished", "tab", pos+1, "pane", m.PaneID, "exit_code", m.ExitCode)
			return p.apply(out)
		}
	}
	logging.Debug(logging.CatPipe, "no inactive tab holds pane", "pane", m.PaneID)
	return false
}

// apply carries out the effects an alert transition asks for.
func (p *Plugin) apply(out alert.Outcome) bool {
	if out.ScheduleTick {
		p.host.SetTimeout(p.opts.BlinkInterval)
	}
	if out.Broadcast && p.opts.Sync {
		if _, err := p.bridge.Publish(p.alerts.Snapshot()); err != nil {
			logging.ErrorErr(logging.CatSync, "publish snapshot", err)
		}
	}
	return out.Redraw
}

// Render composes the row for cols columns and writes it to w, followed by a
// background fill for the rest of the row. It writes nothing before the
// first workspace snapshot.
func (p *Plugin) Render(w io.Writer, rows, cols int) error {
	if len(p.tabs) == 0 {
		return nil
	}
	defer perf.Start("render").Stop()

	caps := p.mode.Capabilities
	pal := p.mode.Palette
	parts := make([]tab.LinePart, 0, len(p.tabs))
	activeIdx := 0
	var layoutName string
	var layoutDirty bool

	for i, t := range p.tabs {
		name := t.Name
		switch {
		case t.Active && p.mode.Mode == host.ModeRenameTab:
			if name == "" {
				name = "Enter name..."
			}
			activeIdx = i
		case t.Active:
			activeIdx = i
			layoutName = t.ActiveSwapLayoutName
			layoutDirty = t.IsSwapLayoutDirty
		}
		if name == "" {
			name = fmt.Sprintf("Tab #%d", i+1)
		}

		var a tab.Alert
		if e, ok := p.alerts.Get(i + 1); ok {
			a = tab.Alert{Present: true, Success: e.Success, Phase: e.Alternate}
			if t.Active {
				p.alerts.Visit(i + 1)
				logging.Debug(logging.CatAlert, "alert visited", "tab", i+1)
			}
		}

		parts = append(parts, tab.Style(fmt.Sprintf("%d %s", i+1, name), tab.Options{
			Position:     i,
			Active:       t.Active,
			Fullscreen:   t.IsFullscreenActive,
			Sync:         t.IsSyncPanesActive,
			Striped:      i%2 == 1,
			Alert:        a,
			Palette:      pal,
			Capabilities: caps,
		}))
	}

	p.line = line.Compose(line.Params{
		Tabs:            parts,
		Active:          activeIdx,
		Cols:            max(cols-1, 0),
		Palette:         pal,
		Capabilities:    caps,
		SessionName:     p.mode.SessionName,
		HideSessionName: p.mode.HideSessionName,
		Mode:            p.mode.Mode,
		SwapLayoutName:  layoutName,
		SwapLayoutDirty: layoutDirty,
		Overflow:        p.opts.Overflow,
	})

	fill := pal.LineBackground()
	if _, err := fmt.Fprintf(w, "%s\x1b[%sm\x1b[0K", p.line.String(), fill.Sequence(true)); err != nil {
		logging.ErrorErr(logging.CatRender, "write line", err, "rows", rows, "cols", cols)
		return fmt.Errorf("write tab line: %w", err)
	}
	return nil
}

// Line returns the row composed by the last Render.
func (p *Plugin) Line() line.Line { return p.line }

// Alerts returns a copy of the current alert state.
func (p *Plugin) Alerts() alert.Snapshot { return p.alerts.Snapshot() }

// ActivePosition is the 1-based position of the active workspace, or 0 when
// none is known.
func (p *Plugin) ActivePosition() int { return p.active }

// Granted reports whether the host granted the requested permissions.
func (p *Plugin) Granted() bool { return p.granted }
