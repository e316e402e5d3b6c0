// Package host describes what the tab line consumes from and requests of the
// terminal multiplexer it runs in. Nothing here talks to a real multiplexer;
// concrete hosts (see pkg/bar) translate their own events into these types and
// implement Host.
package host

import (
	"time"

	"github.com/b/tabline/pkg/colors"
)

// Workspace is one tab as reported by the host. Position is 0-based; the tab
// line displays and keys alerts by Position+1.
type Workspace struct {
	Position             int
	Name                 string // empty means unnamed
	Active               bool
	IsFullscreenActive   bool
	IsSyncPanesActive    bool
	IsSwapLayoutDirty    bool   // layout differs from the last saved one
	ActiveSwapLayoutName string // empty when no alternate layout is active
}

// Pane is the subset of pane information needed to map a process back to the
// workspace it runs in.
type Pane struct {
	ID       uint32
	IsPlugin bool
	Title    string
}

// PaneManifest maps a workspace position (0-based) to its panes.
type PaneManifest map[int][]Pane

// InputMode is the host's current key-handling mode.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeLocked
	ModeResize
	ModePane
	ModeTab
	ModeScroll
	ModeSearch
	ModeRenameTab
	ModeRenamePane
	ModeSession
	ModeMove
	ModePrompt
	ModeTmux
)

var modeNames = [...]string{
	ModeNormal:     "NORMAL",
	ModeLocked:     "LOCKED",
	ModeResize:     "RESIZE",
	ModePane:       "PANE",
	ModeTab:        "TAB",
	ModeScroll:     "SCROLL",
	ModeSearch:     "SEARCH",
	ModeRenameTab:  "RENAMETAB",
	ModeRenamePane: "RENAMEPANE",
	ModeSession:    "SESSION",
	ModeMove:       "MOVE",
	ModePrompt:     "PROMPT",
	ModeTmux:       "TMUX",
}

func (m InputMode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "UNKNOWN"
}

// Capabilities of the rendering surface.
type Capabilities struct {
	ArrowFonts bool // powerline separators render correctly
	Color      bool // false means monochrome output only
}

// ModeInfo is the mode/theme snapshot; it is comparable with ==.
type ModeInfo struct {
	Mode            InputMode
	Palette         colors.Palette
	Capabilities    Capabilities
	SessionName     string
	HideSessionName bool
}

// PermissionType names a host permission.
type PermissionType string

const (
	PermissionReadApplicationState   PermissionType = "ReadApplicationState"
	PermissionChangeApplicationState PermissionType = "ChangeApplicationState"
)

// Host is the effects interface. Every call is a fire-and-forget request; the
// host decides when (and whether) it takes effect.
type Host interface {
	RequestPermission(perms ...PermissionType)
	Subscribe(kinds ...EventKind)
	SetSelectable(selectable bool)
	// SetTimeout arms a one-shot Timer event after d.
	SetTimeout(d time.Duration)
	// SwitchTabTo focuses the workspace at the 1-based position.
	SwitchTabTo(position int)
	// Broadcast sends a named message to every sibling instance of this
	// component.
	Broadcast(name, payload string)
}
