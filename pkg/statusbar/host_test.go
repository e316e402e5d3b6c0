package statusbar

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/b/tabline/pkg/colors"
	"github.com/b/tabline/pkg/host"
)

type broadcast struct {
	name    string
	payload string
}

// recordingHost implements host.Host and remembers every request.
type recordingHost struct {
	perms      []host.PermissionType
	kinds      []host.EventKind
	selectable []bool
	timeouts   []time.Duration
	switches   []int
	broadcasts []broadcast
}

func (h *recordingHost) RequestPermission(perms ...host.PermissionType) {
	h.perms = append(h.perms, perms...)
}
func (h *recordingHost) Subscribe(kinds ...host.EventKind) { h.kinds = append(h.kinds, kinds...) }
func (h *recordingHost) SetSelectable(s bool)              { h.selectable = append(h.selectable, s) }
func (h *recordingHost) SetTimeout(d time.Duration)        { h.timeouts = append(h.timeouts, d) }
func (h *recordingHost) SwitchTabTo(pos int)               { h.switches = append(h.switches, pos) }
func (h *recordingHost) Broadcast(name, payload string) {
	h.broadcasts = append(h.broadcasts, broadcast{name, payload})
}

var _ host.Host = (*recordingHost)(nil)

func workspaces(active int, names ...string) []host.Workspace {
	tabs := make([]host.Workspace, len(names))
	for i, n := range names {
		tabs[i] = host.Workspace{Position: i, Name: n, Active: i+1 == active}
	}
	return tabs
}

func modeInfo() host.ModeInfo {
	return host.ModeInfo{
		Mode:         host.ModeNormal,
		Palette:      colors.DefaultPalette(colors.HueDark),
		Capabilities: host.Capabilities{ArrowFonts: true, Color: true},
	}
}

// newPlugin returns a plugin showing names with the given active position.
func newPlugin(t *testing.T, opts Options, active int, names ...string) (*Plugin, *recordingHost) {
	t.Helper()
	h := &recordingHost{}
	p := New(h, opts)
	p.Update(host.ModeUpdate{Info: modeInfo()})
	require.True(t, p.Update(host.TabUpdate{Tabs: workspaces(active, names...)}))
	return p, h
}

func render(t *testing.T, p *Plugin, cols int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, 1, cols))
	return buf.String()
}
