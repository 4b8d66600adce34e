package game

import "courtsim/internal/catalog"

// Verdict identifies the single loss outcome of a run. TaskID is empty when
// the verdict came from a coding-stage deadline rather than an alert.
type Verdict struct {
	TaskID   string
	Category catalog.Category
	Text     string
}

// Navigator receives the one-shot transition to the verdict screen. The
// engine guarantees Navigate is called at most once per run, after the
// navigate delay elapses.
type Navigator interface {
	Navigate(v Verdict)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(v Verdict)

func (f NavigatorFunc) Navigate(v Verdict) { f(v) }

// Cue plays the verdict audio cue. Failures are logged and swallowed; sound
// never blocks or aborts the transition.
type Cue interface {
	Play() error
}
