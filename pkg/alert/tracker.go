// Package alert tracks workspaces whose background command has finished and
// drives their blinking until the user visits them.
//
// All entries blink in lock-step off a single shared tick, so at most one
// tick registration is ever outstanding.
package alert

import "sort"

// Entry is the alert state of one workspace.
type Entry struct {
	Success   bool `json:"success"`
	Viewed    bool `json:"viewed"`    // no longer needs ticks
	Alternate bool `json:"alternate"` // blink phase
	Blinks    int  `json:"blinks,omitempty"`
}

// Snapshot maps 1-based workspace positions to their entries.
type Snapshot map[int]Entry

// Keys returns the snapshot's positions in ascending order.
func (s Snapshot) Keys() []int {
	keys := make([]int, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Outcome tells the caller which effects a transition requires.
type Outcome struct {
	Redraw       bool
	ScheduleTick bool // arm exactly one tick
	Broadcast    bool // publish Snapshot to sibling instances
}

// Tracker is keyed by 1-based workspace position. It is not safe for
// concurrent use; the host delivers events one at a time.
type Tracker struct {
	entries map[int]*Entry
	armed   bool

	// MaxBlinks, when positive, marks an entry viewed after that many ticks
	// so it stays highlighted without keeping the tick alive.
	MaxBlinks int
}

// NewTracker returns an empty tracker.
func NewTracker(maxBlinks int) *Tracker {
	return &Tracker{entries: make(map[int]*Entry), MaxBlinks: maxBlinks}
}

// Empty reports whether no workspace has an alert.
func (t *Tracker) Empty() bool { return len(t.entries) == 0 }

// Len is the number of alerts.
func (t *Tracker) Len() int { return len(t.entries) }

// Armed reports whether a tick is outstanding.
func (t *Tracker) Armed() bool { return t.armed }

// Get returns a copy of the entry for key.
func (t *Tracker) Get(key int) (Entry, bool) {
	e, ok := t.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (t *Tracker) pending() bool {
	for _, e := range t.entries {
		if !e.Viewed {
			return true
		}
	}
	return false
}

// arm requests a tick unless one is already outstanding.
func (t *Tracker) arm() bool {
	if t.armed {
		return false
	}
	t.armed = true
	return true
}

// Finish records a background task completion in workspace key. A later
// completion overwrites an earlier one.
func (t *Tracker) Finish(key int, success bool) Outcome {
	wasPending := t.pending()
	t.entries[key] = &Entry{Success: success}
	if wasPending {
		return Outcome{}
	}
	return Outcome{Redraw: true, ScheduleTick: t.arm()}
}

// Tick flips the blink phase of every pending entry. The tick re-arms itself
// only while something is still pending, and only a re-armed tick is
// broadcast.
func (t *Tracker) Tick() Outcome {
	t.armed = false
	if !t.pending() {
		return Outcome{}
	}
	for _, e := range t.entries {
		if e.Viewed {
			continue
		}
		e.Alternate = !e.Alternate
		e.Blinks++
		if t.MaxBlinks > 0 && e.Blinks >= t.MaxBlinks {
			e.Viewed = true
			e.Alternate = true
		}
	}
	out := Outcome{Redraw: true}
	if t.pending() {
		out.ScheduleTick = t.arm()
		out.Broadcast = out.ScheduleTick
	}
	return out
}

// Visit clears the alert of the workspace the user is looking at.
func (t *Tracker) Visit(key int) bool {
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	return true
}

// Retain drops alerts for positions above count, i.e. workspaces that no
// longer exist.
func (t *Tracker) Retain(count int) []int {
	var dropped []int
	for key := range t.entries {
		if key < 1 || key > count {
			delete(t.entries, key)
			dropped = append(dropped, key)
		}
	}
	sort.Ints(dropped)
	return dropped
}

// Snapshot copies the current entries.
func (t *Tracker) Snapshot() Snapshot {
	s := make(Snapshot, len(t.entries))
	for k, e := range t.entries {
		s[k] = *e
	}
	return s
}

// Adopt replaces the tracker's entries with s, as if each had been observed
// locally, and arms a tick when anything is pending.
func (t *Tracker) Adopt(s Snapshot) Outcome {
	t.entries = make(map[int]*Entry, len(s))
	for k, e := range s {
		e := e
		t.entries[k] = &e
	}
	if len(s) == 0 {
		return Outcome{}
	}
	out := Outcome{Redraw: true}
	if t.pending() {
		out.ScheduleTick = t.arm()
	}
	return out
}
