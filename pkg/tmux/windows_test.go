package tmux

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/b/tabline/pkg/host"
)

type fakeTmux struct {
	outputs map[string]string
	calls   [][]string
}

func (f *fakeTmux) exec(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	out, ok := f.outputs[args[0]]
	if !ok {
		return nil, nil
	}
	return []byte(out), nil
}

func row(fields ...string) string {
	return strings.Join(fields, sep) + "\n"
}

func session() *fakeTmux {
	return &fakeTmux{outputs: map[string]string{
		"list-windows": row("@1", "1", "editor", "0", "0", "0", "", "abcd,80x24,0,0", "") +
			row("@2", "3", "\x1b[31mbuild\x1b[0m", "1", "1", "1", "compact", "ef01,80x24,0,0", "abcd,80x24,0,0") +
			row("@3", "4", "logs", "0", "0", "0", "", "ff00,80x24,0,0", "ff00,80x24,0,0") +
			row("bad"),
		"list-panes": row("1", "%10", "nvim", "main.go", "") +
			row("3", "%11", "tabline", "", "") +
			row("3", "%12", "tabline", "bar", "1") +
			row("4", "%13", "tail", "") +
			row("9", "%14", "zsh", "", "") +
			row("1", "not-a-pane", "zsh", "", ""),
		"display-message": "work\n",
	}}
}

func TestListWindows(t *testing.T) {
	f := session()
	windows, err := NewWithExec(f.exec).ListWindows(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 3)

	require.Equal(t, "build", windows[1].Name)
	require.Equal(t, 3, windows[1].Index)
	require.True(t, windows[1].Active)

	ws := windows[1].Workspace(1)
	require.Equal(t, host.Workspace{
		Position:             1,
		Name:                 "build",
		Active:               true,
		IsFullscreenActive:   true,
		IsSyncPanesActive:    true,
		IsSwapLayoutDirty:    true,
		ActiveSwapLayoutName: "compact",
	}, ws)
	require.False(t, windows[0].Workspace(0).IsSwapLayoutDirty, "never saved")
	require.False(t, windows[2].Workspace(2).IsSwapLayoutDirty, "unchanged since save")
}

func TestSnapshot(t *testing.T) {
	s, err := NewWithExec(session().exec).Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, s.Workspaces, 3)
	for i, w := range s.Workspaces {
		require.Equal(t, i, w.Position)
	}
	require.Equal(t, host.PaneManifest{
		0: {{ID: 10, Title: "main.go"}},
		1: {{ID: 11}, {ID: 12, IsPlugin: true, Title: "bar"}},
		2: {{ID: 13}},
	}, s.Manifest)

	idx, ok := s.IndexOf(2)
	require.True(t, ok)
	require.Equal(t, 3, idx)
	_, ok = s.IndexOf(4)
	require.False(t, ok)
	_, ok = s.IndexOf(0)
	require.False(t, ok)
}

func TestSnapshotError(t *testing.T) {
	boom := errors.New("no server running")
	c := NewWithExec(func(context.Context, ...string) ([]byte, error) { return nil, boom })
	_, err := c.Snapshot(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestCommands(t *testing.T) {
	f := session()
	c := NewWithExec(f.exec)
	ctx := context.Background()

	name, err := c.SessionName(ctx)
	require.NoError(t, err)
	require.Equal(t, "work", name)

	f.outputs["display-message"] = "1\n"
	prefix, err := c.PrefixActive(ctx)
	require.NoError(t, err)
	require.True(t, prefix)

	require.NoError(t, c.SelectWindow(ctx, 3))
	require.NoError(t, c.SaveLayout(ctx, Window{Index: 4, Layout: "ff00,80x24,0,0"}))

	n := len(f.calls)
	require.Equal(t, []string{"select-window", "-t", ":3"}, f.calls[n-2])
	require.Equal(t, []string{"set-option", "-w", "-t", ":4", LayoutSavedOption, "ff00,80x24,0,0"}, f.calls[n-1])

	require.NoError(t, c.MarkBarPane(ctx, "%12"))
	require.Equal(t, []string{"set-option", "-p", "-t", "%12", BarOption, "1"}, f.calls[len(f.calls)-1])
	require.NoError(t, c.MarkBarPane(ctx, ""))
	require.Equal(t, []string{"set-option", "-p", BarOption, "1"}, f.calls[len(f.calls)-1])
}

func TestListPanesBarMarker(t *testing.T) {
	panes, err := NewWithExec(session().exec).ListPanes(context.Background())
	require.NoError(t, err)
	require.Len(t, panes, 5)

	bars := map[uint32]bool{}
	for _, p := range panes {
		bars[p.ID] = p.Bar
	}
	require.False(t, bars[11], "watch pane runs tabline but is not a bar")
	require.True(t, bars[12])
	require.False(t, bars[13], "row without the marker field")
}

func TestParsePaneID(t *testing.T) {
	id, err := ParsePaneID("%42")
	require.NoError(t, err)
	require.Equal(t, uint32(42), id)

	id, err = ParsePaneID("7")
	require.NoError(t, err)
	require.Equal(t, uint32(7), id)

	_, err = ParsePaneID("%")
	require.Error(t, err)
}
