// Package syncbridge keeps the alert trackers of sibling tab line instances
// consistent. The instance that owns a tick broadcasts its whole tracker; an
// instance adopts a received snapshot only while its own tracker is empty.
package syncbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/b/tabline/pkg/alert"
)

// MessageName labels snapshot broadcasts between instances.
const MessageName = "tabline:alert-sync"

const wireVersion = 1

var (
	ErrMalformedSnapshot  = errors.New("malformed alert snapshot")
	ErrUnsupportedVersion = errors.New("unsupported alert snapshot version")
)

type wireSnapshot struct {
	Version int                    `json:"version"`
	Alerts  map[string]alert.Entry `json:"alerts"`
}

// Encode serializes a snapshot for broadcasting.
func Encode(s alert.Snapshot) (string, error) {
	w := wireSnapshot{Version: wireVersion, Alerts: make(map[string]alert.Entry, len(s))}
	for k, e := range s {
		w.Alerts[strconv.Itoa(k)] = e
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

// Decode parses and validates a broadcast payload.
func Decode(payload string) (alert.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if w.Version != wireVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, w.Version)
	}
	if w.Alerts == nil {
		return nil, fmt.Errorf("%w: missing alerts", ErrMalformedSnapshot)
	}
	s := make(alert.Snapshot, len(w.Alerts))
	for k, e := range w.Alerts {
		pos, err := strconv.Atoi(k)
		if err != nil || pos < 1 {
			return nil, fmt.Errorf("%w: bad workspace position %q", ErrMalformedSnapshot, k)
		}
		s[pos] = e
	}
	return s, nil
}

// Broadcaster sends a named message to all sibling instances.
type Broadcaster interface {
	Broadcast(name, payload string)
}

// Bridge connects one tracker to its siblings.
type Bridge struct {
	out Broadcaster
}

// New returns a bridge publishing through out.
func New(out Broadcaster) *Bridge {
	return &Bridge{out: out}
}

// Publish broadcasts s. Empty snapshots are never sent: an idle receiver
// would read one as "catch up with nothing".
func (b *Bridge) Publish(s alert.Snapshot) (bool, error) {
	if len(s) == 0 {
		return false, nil
	}
	payload, err := Encode(s)
	if err != nil {
		return false, err
	}
	b.out.Broadcast(MessageName, payload)
	return true, nil
}

// Receive applies a sibling's snapshot to t when t is empty. A tracker that
// already holds alerts is never overwritten.
func (b *Bridge) Receive(t *alert.Tracker, s alert.Snapshot) (alert.Outcome, bool) {
	if !t.Empty() || len(s) == 0 {
		return alert.Outcome{}, false
	}
	return t.Adopt(s), true
}
