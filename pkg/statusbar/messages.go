package statusbar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/b/tabline/pkg/alert"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/syncbridge"
)

// ProcessStatusMessage is the name `tabline notify` sends when a watched
// command exits.
const ProcessStatusMessage = "tabline:process_status"

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrMissingArg     = errors.New("missing argument")
	ErrBadArg         = errors.New("invalid argument")
)

// Message is an inbound pipe message after validation. It is one of
// ProcessStatus or AlertSync.
type Message interface {
	isMessage()
}

// ProcessStatus reports that the command running in a pane exited.
type ProcessStatus struct {
	PaneID   uint32
	ExitCode int
}

// Success reports whether the command exited cleanly.
func (p ProcessStatus) Success() bool { return p.ExitCode == 0 }

// AlertSync carries a sibling instance's alert tracker.
type AlertSync struct {
	Snapshot alert.Snapshot
}

func (ProcessStatus) isMessage() {}
func (AlertSync) isMessage()     {}

// ParseMessage turns a raw pipe message into a typed one. Messages this
// component does not handle yield ErrUnknownMessage; handled messages with
// bad arguments or payloads yield a wrapped ErrMissingArg, ErrBadArg or
// syncbridge error.
func ParseMessage(m host.PipeMessage) (Message, error) {
	switch {
	case m.Source == host.PipeFromCLI && m.Name == ProcessStatusMessage:
		ps, err := parseProcessStatus(m.Args)
		if err != nil {
			return nil, err
		}
		return ps, nil
	case m.Source == host.PipeFromPlugin && m.Name == syncbridge.MessageName:
		s, err := syncbridge.Decode(m.Payload)
		if err != nil {
			return nil, err
		}
		return AlertSync{Snapshot: s}, nil
	}
	return nil, fmt.Errorf("%w: %q from %s", ErrUnknownMessage, m.Name, m.Source)
}

func parseProcessStatus(args map[string]string) (ProcessStatus, error) {
	paneArg, ok := args["pane_id"]
	if !ok {
		return ProcessStatus{}, fmt.Errorf("%w: pane_id", ErrMissingArg)
	}
	codeArg, ok := args["exit_code"]
	if !ok {
		return ProcessStatus{}, fmt.Errorf("%w: exit_code", ErrMissingArg)
	}

	// tmux reports pane ids as "%12"
	pane, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(paneArg), "%"), 10, 32)
	if err != nil {
		return ProcessStatus{}, fmt.Errorf("%w: pane_id %q", ErrBadArg, paneArg)
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeArg))
	if err != nil {
		return ProcessStatus{}, fmt.Errorf("%w: exit_code %q", ErrBadArg, codeArg)
	}
	return ProcessStatus{PaneID: uint32(pane), ExitCode: code}, nil
}
