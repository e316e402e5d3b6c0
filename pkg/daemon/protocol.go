// Package daemon is the per-session message bus that connects tab line
// instances to each other and to the `tabline notify` CLI. It speaks
// newline-delimited JSON over a unix socket.
package daemon

import (
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/paths"
)

// MessageType identifies the type of message
type MessageType string

const (
	MsgSubscribe   MessageType = "subscribe"   // bar -> bus: deliver pipe messages to me
	MsgUnsubscribe MessageType = "unsubscribe" // bar -> bus
	MsgPipe        MessageType = "pipe"        // any -> bus -> subscribers
	MsgPing        MessageType = "ping"
	MsgPong        MessageType = "pong"
)

// Message is one line on the bus.
type Message struct {
	Type     MessageType  `json:"type"`
	ClientID string       `json:"client_id,omitempty"`
	Pipe     *PipePayload `json:"pipe,omitempty"`
}

// PipePayload is an addressed message relayed to every subscriber except its
// sender.
type PipePayload struct {
	Source  string            `json:"source"` // "cli" or "plugin"
	Name    string            `json:"name"`
	Payload string            `json:"payload,omitempty"`
	Args    map[string]string `json:"args,omitempty"`
}

// PipeMessage converts p to the host form. The sender becomes the source id.
func (p PipePayload) PipeMessage(sender string) host.PipeMessage {
	src := host.PipeFromCLI
	if p.Source == host.PipeFromPlugin.String() {
		src = host.PipeFromPlugin
	}
	return host.PipeMessage{
		Source:   src,
		SourceID: sender,
		Name:     p.Name,
		Payload:  p.Payload,
		Args:     p.Args,
	}
}

// SocketPath returns the bus socket path for a session
func SocketPath(session string) string {
	return paths.SocketPath(session)
}

// PidPath returns the pidfile path for a session
func PidPath(session string) string {
	return paths.PidPath(session)
}
