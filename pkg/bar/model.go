// Package bar runs the tab line as a bubbletea program inside a tmux pane.
// It polls tmux for windows and panes, feeds them to a statusbar.Plugin as
// host events, and carries out the plugin's effects as tea commands.
package bar

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/b/tabline/pkg/colors"
	"github.com/b/tabline/pkg/config"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/line"
	"github.com/b/tabline/pkg/logging"
	"github.com/b/tabline/pkg/statusbar"
	"github.com/b/tabline/pkg/tmux"
)

const commandTimeout = 2 * time.Second

// RefreshMsg asks the bar to re-read tmux state now, e.g. from a tmux hook
// delivered as SIGUSR1.
type RefreshMsg struct{}

type (
	pollMsg     struct{}
	snapshotMsg struct {
		snap    tmux.Snapshot
		session string
		prefix  bool
		err     error
	}
	pipeMsg   struct{ msg host.PipeMessage }
	configMsg struct {
		cfg *config.Config
		err error
	}
	layoutSavedMsg struct{ err error }
	barMarkedMsg   struct{ err error }
)

// Options wire a Model to its surroundings.
type Options struct {
	Config  *config.Config
	Tmux    *tmux.Client
	Pane    string                  // tmux pane the bar draws in, e.g. $TMUX_PANE
	Bus     Bus                     // nil runs without sibling sync
	Pipes   <-chan host.PipeMessage // messages relayed by the bus
	Profile termenv.Profile
}

// Model is the bubbletea model of one bar.
type Model struct {
	plugin   *statusbar.Plugin
	host     *teaHost
	tmux     *tmux.Client
	pane     string
	cfg      *config.Config
	detector *colors.BackgroundDetector
	profile  termenv.Profile
	pipes    <-chan host.PipeMessage
	keys     keyMap

	width   int
	view    string
	session string
	prefix  bool
}

// New builds a bar. The plugin is loaded immediately; its first effects run
// from Init.
func New(o Options) *Model {
	cfg := o.Config
	if cfg == nil {
		cfg = config.Default()
	}
	h := &teaHost{tmux: o.Tmux, bus: o.Bus}
	m := &Model{
		host:    h,
		tmux:    o.Tmux,
		pane:    o.Pane,
		cfg:     cfg,
		profile: o.Profile,
		pipes:   o.Pipes,
		keys:    defaultKeyMap(),
		width:   80,
	}
	m.detector = newDetector(cfg)
	m.plugin = statusbar.New(h, pluginOptions(cfg))
	m.plugin.Load()
	return m
}

func newDetector(cfg *config.Config) *colors.BackgroundDetector {
	mode, _ := colors.ParseThemeMode(cfg.ThemeMode)
	d := colors.NewBackgroundDetector(mode)
	logging.Debug(logging.CatConfig, "terminal background", "mode", mode, "hue", d.Hue(), "color", d.GetDetectedColor())
	return d
}

func pluginOptions(cfg *config.Config) statusbar.Options {
	return statusbar.Options{
		BlinkInterval: cfg.Alerts.BlinkInterval,
		MaxBlinks:     cfg.Alerts.MaxBlinks,
		Sync:          cfg.SyncEnabled(),
		Overflow:      line.OverflowStyle(cfg.Overflow),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.host.drain(), m.markBar(), m.poll(), m.waitPipe())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	redraw := false

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.plugin.Update(host.Mouse{Action: host.MouseScrollUp})
		case key.Matches(msg, m.keys.Prev):
			m.plugin.Update(host.Mouse{Action: host.MouseScrollDown})
		case key.Matches(msg, m.keys.Refresh):
			cmds = append(cmds, m.refresh())
		case key.Matches(msg, m.keys.SaveLayout):
			cmds = append(cmds, m.saveLayout())
		}

	case tea.MouseMsg:
		if ev, ok := mouseEvent(msg); ok {
			redraw = m.plugin.Update(ev)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		redraw = true

	case pollMsg:
		cmds = append(cmds, m.refresh(), m.poll())

	case RefreshMsg:
		cmds = append(cmds, m.refresh())

	case snapshotMsg:
		if msg.err != nil {
			logging.Warn(logging.CatTmux, "refresh failed", "error", msg.err)
			break
		}
		m.host.snapshot = msg.snap
		m.session = msg.session
		m.prefix = msg.prefix
		m.plugin.Update(host.PaneUpdate{Manifest: msg.snap.Manifest})
		redraw = m.plugin.Update(host.TabUpdate{Tabs: msg.snap.Workspaces})
		redraw = m.plugin.Update(host.ModeUpdate{Info: m.modeInfo()}) || redraw

	case timerMsg:
		redraw = m.plugin.Update(host.Timer{Elapsed: msg.elapsed.Seconds()})

	case permissionMsg:
		redraw = m.plugin.Update(host.PermissionResult{Granted: msg.granted})

	case pipeMsg:
		redraw = m.plugin.Pipe(msg.msg)
		cmds = append(cmds, m.waitPipe())

	case switchedMsg:
		if msg.err != nil {
			logging.Warn(logging.CatTmux, "select-window failed", "error", msg.err)
			break
		}
		cmds = append(cmds, m.refresh())

	case sentMsg:
		if msg.err != nil {
			logging.Warn(logging.CatSync, "broadcast failed", "error", msg.err)
		}

	case layoutSavedMsg:
		if msg.err != nil {
			logging.Warn(logging.CatTmux, "save layout failed", "error", msg.err)
			break
		}
		cmds = append(cmds, m.refresh())

	case barMarkedMsg:
		if msg.err != nil {
			logging.Warn(logging.CatTmux, "marking bar pane failed", "pane", m.pane, "error", msg.err)
		}
		cmds = append(cmds, m.refresh())

	case configMsg:
		if msg.err != nil {
			logging.Warn(logging.CatConfig, "reload failed, keeping previous configuration", "error", msg.err)
			break
		}
		m.cfg = msg.cfg
		m.detector = newDetector(msg.cfg)
		redraw = m.plugin.Reconfigure(pluginOptions(msg.cfg))
		redraw = m.plugin.Update(host.ModeUpdate{Info: m.modeInfo()}) || redraw
		logging.Info(logging.CatConfig, "configuration reloaded")
	}

	if redraw {
		m.render()
	}
	cmds = append(cmds, m.host.drain())
	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	return m.view
}

func (m *Model) render() {
	var b strings.Builder
	if err := m.plugin.Render(&b, 1, m.width); err != nil {
		return
	}
	m.view = b.String()
}

// modeInfo is the mode/theme snapshot handed to the plugin.
func (m *Model) modeInfo() host.ModeInfo {
	hue := m.detector.Hue()
	pal, ok := colors.PaletteFor(m.cfg.Theme, hue)
	if !ok {
		logging.Warn(logging.CatConfig, "unknown theme, using default", "theme", m.cfg.Theme, "themes", strings.Join(colors.PaletteNames(), ","))
	}
	mode := host.ModeNormal
	if m.prefix {
		mode = host.ModeTmux
	}
	return host.ModeInfo{
		Mode:    mode,
		Palette: pal,
		Capabilities: host.Capabilities{
			ArrowFonts: m.cfg.UseArrowFonts(),
			Color:      m.profile != termenv.Ascii,
		},
		SessionName:     m.session,
		HideSessionName: m.cfg.HideSessionName,
	}
}

func mouseEvent(msg tea.MouseMsg) (host.Mouse, bool) {
	if msg.Action != tea.MouseActionPress || msg.Y != 0 {
		return host.Mouse{}, false
	}
	ev := host.Mouse{Line: msg.Y, Col: msg.X}
	switch msg.Button {
	case tea.MouseButtonLeft:
		ev.Action = host.MouseLeftClick
	case tea.MouseButtonRight:
		ev.Action = host.MouseRightClick
	case tea.MouseButtonWheelUp:
		ev.Action = host.MouseScrollUp
	case tea.MouseButtonWheelDown:
		ev.Action = host.MouseScrollDown
	default:
		return host.Mouse{}, false
	}
	return ev, true
}

func (m *Model) refresh() tea.Cmd {
	c := m.tmux
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		var msg snapshotMsg
		g.Go(func() (err error) {
			msg.snap, err = c.Snapshot(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.session, err = c.SessionName(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.prefix, err = c.PrefixActive(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return snapshotMsg{err: err}
		}
		return msg
	}
}

func (m *Model) poll() tea.Cmd {
	d := m.cfg.Bar.PollInterval
	if d <= 0 {
		d = config.DefaultPollInterval
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m *Model) waitPipe() tea.Cmd {
	if m.pipes == nil {
		return nil
	}
	ch := m.pipes
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return pipeMsg{msg: msg}
	}
}

// markBar flags the bar's own pane so snapshots leave it out of alert
// handling. The first refresh follows it either way.
func (m *Model) markBar() tea.Cmd {
	c, pane := m.tmux, m.pane
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return barMarkedMsg{err: c.MarkBarPane(ctx, pane)}
	}
}

func (m *Model) saveLayout() tea.Cmd {
	for _, w := range m.host.snapshot.Windows {
		if !w.Active {
			continue
		}
		c := m.tmux
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			return layoutSavedMsg{err: c.SaveLayout(ctx, w)}
		}
	}
	return nil
}
