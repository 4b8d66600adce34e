package game

import "courtsim/internal/catalog"

// Snapshot is a consistent read of the engine state for rendering. The UI
// polls it on every redraw; no field aliases engine-internal slices.
type Snapshot struct {
	Started   bool
	Won       bool
	Navigated bool

	SecondsLeft int
	Tick        uint64

	// Top is the alert the player is acting on (stack top), nil when the
	// stack is empty.
	Top           *catalog.Task
	SurfacedCount int
	BacklogCount  int

	PenaltyActive      bool
	PenaltyTaskID      string
	PenaltySecondsLeft int
}

// Snapshot returns the current state under the engine lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Started:       e.started,
		Won:           e.won,
		Navigated:     e.navigated,
		SecondsLeft:   e.secondsLeft,
		Tick:          e.tickCount,
		SurfacedCount: len(e.surfaced),
		BacklogCount:  len(e.backlog),
	}
	if n := len(e.surfaced); n > 0 {
		top := e.surfaced[n-1]
		s.Top = &top
	}
	if e.penalty != nil {
		s.PenaltyActive = true
		s.PenaltyTaskID = e.penalty.taskID
		s.PenaltySecondsLeft = e.penalty.remaining(e.now())
	}
	return s
}
