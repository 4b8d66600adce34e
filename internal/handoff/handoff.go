// Package handoff carries the verdict descriptor from the game engine to the
// verdict screen. It is a write-once-then-read-once mailbox: the first write
// wins, the first read consumes. No concurrent writers are supported beyond
// "first caller wins".
package handoff

import "sync"

// Descriptor is the terminal outcome record shown on the verdict screen.
type Descriptor struct {
	TaskID   string `json:"taskId"`
	Category string `json:"category"`
	Verdict  string `json:"verdict"`
}

// Channel is the short-lived per-session handoff store.
type Channel interface {
	// Put stores the descriptor. Returns false if one is already stored.
	Put(d Descriptor) bool

	// Take returns the stored descriptor and clears it. The second return
	// is false when nothing was stored or it was already taken.
	Take() (Descriptor, bool)
}

// NewMemory returns an in-memory Channel. It is safe for the writer and the
// reader to live on different goroutines (timer callback vs. UI loop).
func NewMemory() Channel {
	return &memory{}
}

type memory struct {
	mu   sync.Mutex
	desc *Descriptor
}

func (m *memory) Put(d Descriptor) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.desc != nil {
		return false
	}
	m.desc = &d
	return true
}

func (m *memory) Take() (Descriptor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.desc == nil {
		return Descriptor{}, false
	}
	d := *m.desc
	m.desc = nil
	return d, true
}
