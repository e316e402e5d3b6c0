package bar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/b/tabline/pkg/config"
	"github.com/b/tabline/pkg/daemon"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/statusbar"
	"github.com/b/tabline/pkg/tmux"
)

const sep = "\x1f"

type fakeTmux struct {
	mu      sync.Mutex
	windows string
	panes   string
	calls   [][]string
	fail    error
}

func row(fields ...string) string {
	return strings.Join(fields, sep) + "\n"
}

func newFakeTmux() *fakeTmux {
	return &fakeTmux{
		windows: row("@1", "1", "editor", "0", "0", "0", "", "a", "") +
			row("@2", "3", "build", "1", "0", "0", "", "b", "") +
			row("@3", "4", "logs", "0", "0", "0", "", "c", ""),
		panes: row("1", "%10", "nvim", "", "") +
			row("3", "%11", "tabline", "bar", "1") +
			row("4", "%12", "tail", "", ""),
	}
}

func (f *fakeTmux) exec(_ context.Context, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, args)
	if f.fail != nil {
		return nil, f.fail
	}
	switch args[0] {
	case "list-windows":
		return []byte(f.windows), nil
	case "list-panes":
		return []byte(f.panes), nil
	case "display-message":
		if args[2] == "#{client_prefix}" {
			return []byte("0\n"), nil
		}
		return []byte("work\n"), nil
	}
	return nil, nil
}

func (f *fakeTmux) called(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

type recordingBus struct{ sent []daemon.PipePayload }

func (b *recordingBus) Send(p daemon.PipePayload) error {
	b.sent = append(b.sent, p)
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ThemeMode = "dark"
	cfg.Alerts.BlinkInterval = time.Millisecond
	cfg.Bar.PollInterval = time.Millisecond
	return cfg
}

// collect runs cmd and any batched commands it expands to, returning the
// messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// loaded returns a model that has seen one tmux snapshot at 80 columns.
func loaded(t *testing.T, f *fakeTmux, bus Bus) *Model {
	t.Helper()
	m := New(Options{Config: testConfig(), Tmux: tmux.NewWithExec(f.exec), Bus: bus, Profile: termenv.ANSI256})
	for _, msg := range collect(m.host.drain()) {
		m.Update(msg)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 1})
	m.Update(m.refresh()())
	return m
}

func TestSnapshotRendersTabs(t *testing.T) {
	m := loaded(t, newFakeTmux(), nil)

	require.True(t, m.plugin.Granted())
	require.Equal(t, 2, m.plugin.ActivePosition())
	view := ansi.Strip(m.View())
	require.Contains(t, view, "work")
	require.Contains(t, view, "1 editor")
	require.Contains(t, view, "2 build")
	require.Contains(t, view, "3 logs")
	require.True(t, strings.HasSuffix(m.View(), "\x1b[0K"))
}

func TestRefreshErrorKeepsView(t *testing.T) {
	f := newFakeTmux()
	m := loaded(t, f, nil)
	before := m.View()

	f.mu.Lock()
	f.fail = errors.New("no server")
	f.mu.Unlock()
	m.Update(m.refresh()())
	require.Equal(t, before, m.View())
}

func TestClickSwitchesWindow(t *testing.T) {
	f := newFakeTmux()
	m := loaded(t, f, nil)

	col := 0
	for _, p := range m.plugin.Line().Parts {
		if p.TabIndex == 3 {
			break
		}
		col += p.Len
	}
	_, cmd := m.Update(tea.MouseMsg{X: col, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	msgs := collect(cmd)

	require.Equal(t, [][]string{{"select-window", "-t", ":4"}}, f.called("select-window"))
	require.Contains(t, msgs, switchedMsg{})
}

func TestClickOnOtherRowIgnored(t *testing.T) {
	f := newFakeTmux()
	m := loaded(t, f, nil)

	_, cmd := m.Update(tea.MouseMsg{X: 20, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	collect(cmd)
	require.Empty(t, f.called("select-window"))
}

func TestKeysCycleTabs(t *testing.T) {
	f := newFakeTmux()
	m := loaded(t, f, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	collect(cmd)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	collect(cmd)

	require.Equal(t, [][]string{
		{"select-window", "-t", ":4"},
		{"select-window", "-t", ":1"},
	}, f.called("select-window"))
}

func TestQuitKey(t *testing.T) {
	m := loaded(t, newFakeTmux(), nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestSaveLayout(t *testing.T) {
	f := newFakeTmux()
	m := loaded(t, f, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	msgs := collect(cmd)

	require.Equal(t, [][]string{{"set-option", "-w", "-t", ":3", tmux.LayoutSavedOption, "b"}}, f.called("set-option"))
	require.Contains(t, msgs, layoutSavedMsg{})
}

func TestProcessStatusRaisesAlert(t *testing.T) {
	bus := &recordingBus{}
	m := loaded(t, newFakeTmux(), bus)

	_, cmd := m.Update(pipeMsg{msg: host.PipeMessage{
		Source: host.PipeFromCLI,
		Name:   statusbar.ProcessStatusMessage,
		Args:   map[string]string{"pane_id": "%10", "exit_code": "1"},
	}})

	e, ok := m.plugin.Alerts()[1]
	require.True(t, ok)
	require.False(t, e.Success)

	msgs := collect(cmd)
	require.Contains(t, msgs, timerMsg{elapsed: time.Millisecond})
	require.Empty(t, bus.sent)

	_, cmd = m.Update(timerMsg{elapsed: time.Millisecond})
	msgs = collect(cmd)
	require.Contains(t, msgs, sentMsg{})
	require.Len(t, bus.sent, 1)
	require.Equal(t, host.PipeFromPlugin.String(), bus.sent[0].Source)
}

func processStatusMsg(pane, code string) pipeMsg {
	return pipeMsg{msg: host.PipeMessage{
		Source: host.PipeFromCLI,
		Name:   statusbar.ProcessStatusMessage,
		Args:   map[string]string{"pane_id": pane, "exit_code": code},
	}}
}

func TestWatchPaneRaisesAlert(t *testing.T) {
	f := newFakeTmux()
	// "tabline watch" shows up with the same pane command as the bar.
	f.panes = row("1", "%10", "tabline", "", "") +
		row("3", "%11", "tabline", "bar", "1")
	m := loaded(t, f, nil)

	m.Update(processStatusMsg("%10", "1"))
	e, ok := m.plugin.Alerts()[1]
	require.True(t, ok)
	require.False(t, e.Success)
}

func TestBarPaneIgnored(t *testing.T) {
	f := newFakeTmux()
	f.windows = row("@1", "1", "editor", "1", "0", "0", "", "a", "") +
		row("@2", "3", "build", "0", "0", "0", "", "b", "")
	m := loaded(t, f, nil)

	m.Update(processStatusMsg("%11", "1"))
	require.Empty(t, m.plugin.Alerts())
}

func TestInitMarksBarPane(t *testing.T) {
	f := newFakeTmux()
	m := New(Options{Config: testConfig(), Tmux: tmux.NewWithExec(f.exec), Pane: "%11", Profile: termenv.ANSI256})

	_, cmd := m.Update(m.markBar()())
	require.Equal(t, [][]string{{"set-option", "-p", "-t", "%11", tmux.BarOption, "1"}}, f.called("set-option"))

	refreshed := false
	for _, msg := range collect(cmd) {
		if _, ok := msg.(snapshotMsg); ok {
			refreshed = true
		}
	}
	require.True(t, refreshed, "marking is followed by a refresh")
}

func TestPipeFromBusChannel(t *testing.T) {
	pipes := make(chan host.PipeMessage, 1)
	m := New(Options{Config: testConfig(), Tmux: tmux.NewWithExec(newFakeTmux().exec), Pipes: pipes})

	pipes <- host.PipeMessage{Name: "other"}
	require.Equal(t, pipeMsg{msg: host.PipeMessage{Name: "other"}}, m.waitPipe()())

	close(pipes)
	require.Nil(t, m.waitPipe()())
}

func TestConfigReload(t *testing.T) {
	m := loaded(t, newFakeTmux(), nil)

	cfg := testConfig()
	cfg.Overflow = "arrow"
	m.Update(configMsg{cfg: cfg})
	require.Same(t, cfg, m.cfg)

	m.Update(configMsg{err: errors.New("bad yaml")})
	require.Same(t, cfg, m.cfg, "failed reload keeps the previous configuration")
}

func TestMouseEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.MouseMsg
		want host.MouseAction
		ok   bool
	}{
		{"left", tea.MouseMsg{X: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, host.MouseLeftClick, true},
		{"right", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonRight}, host.MouseRightClick, true},
		{"wheel up", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}, host.MouseScrollUp, true},
		{"wheel down", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}, host.MouseScrollDown, true},
		{"release", tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}, 0, false},
		{"middle", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonMiddle}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := mouseEvent(tt.msg)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, ev.Action)
				require.Equal(t, tt.msg.X, ev.Col)
			}
		})
	}
}

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("overflow: count\n"), 0o644))

	msgs := make(chanSender, 8)
	stop, err := WatchConfig(msgs, path)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("overflow: arrow\n"), 0o644))

	// A single write can surface as several events, the first of which may
	// see a truncated file.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-msgs:
			cm, ok := msg.(configMsg)
			require.True(t, ok)
			if cm.err == nil && cm.cfg.Overflow == "arrow" {
				return
			}
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}
}
