package host

// EventKind identifies an event type for subscription and logging.
type EventKind string

const (
	KindTabUpdate        EventKind = "TabUpdate"
	KindPaneUpdate       EventKind = "PaneUpdate"
	KindModeUpdate       EventKind = "ModeUpdate"
	KindMouse            EventKind = "Mouse"
	KindPermissionResult EventKind = "PermissionRequestResult"
	KindTimer            EventKind = "Timer"
)

// AllKinds is every event kind the tab line handles.
var AllKinds = []EventKind{
	KindTabUpdate,
	KindPaneUpdate,
	KindModeUpdate,
	KindMouse,
	KindPermissionResult,
	KindTimer,
}

// Event is delivered by the host one at a time. Implementations outside this
// package are treated as unrecognized.
type Event interface {
	Kind() EventKind
}

// TabUpdate is a full snapshot of the workspaces, in position order.
type TabUpdate struct {
	Tabs []Workspace
}

// PaneUpdate is a full snapshot of the pane manifest.
type PaneUpdate struct {
	Manifest PaneManifest
}

// ModeUpdate carries a new mode/theme snapshot.
type ModeUpdate struct {
	Info ModeInfo
}

// MouseAction is what the pointer did.
type MouseAction int

const (
	MouseLeftClick MouseAction = iota
	MouseRightClick
	MouseScrollUp
	MouseScrollDown
	MouseHover
)

// Mouse is a pointer event in row-relative coordinates.
type Mouse struct {
	Action MouseAction
	Line   int
	Col    int
}

// PermissionResult reports the user's answer to RequestPermission.
type PermissionResult struct {
	Granted bool
}

// Timer fires once per SetTimeout call.
type Timer struct {
	Elapsed float64 // seconds
}

func (TabUpdate) Kind() EventKind        { return KindTabUpdate }
func (PaneUpdate) Kind() EventKind       { return KindPaneUpdate }
func (ModeUpdate) Kind() EventKind       { return KindModeUpdate }
func (Mouse) Kind() EventKind            { return KindMouse }
func (PermissionResult) Kind() EventKind { return KindPermissionResult }
func (Timer) Kind() EventKind            { return KindTimer }

// PipeSource says where an inbound message came from.
type PipeSource int

const (
	PipeFromCLI PipeSource = iota
	PipeFromPlugin
	PipeFromKeybind
)

func (s PipeSource) String() string {
	switch s {
	case PipeFromCLI:
		return "cli"
	case PipeFromPlugin:
		return "plugin"
	case PipeFromKeybind:
		return "keybind"
	}
	return "unknown"
}

// PipeMessage is an inbound addressed message. Args is an untyped string map;
// the tab line parses it into typed messages before acting on it.
type PipeMessage struct {
	Source   PipeSource
	SourceID string
	Name     string
	Payload  string
	Args     map[string]string
}
