package game

import (
	"math"
	"time"

	"courtsim/internal/catalog"
)

// penaltyWindow tracks the first unresolved critical alert. At most one
// window is armed at any time; it is cleared only by fixing the tracked task
// (or a full reset), never by resolving a different critical.
type penaltyWindow struct {
	taskID   string
	category catalog.Category
	verdict  string
	armedAt  time.Time
	grace    time.Duration
}

// remaining returns the seconds left before expiry, derived from the armed
// timestamp: ceil(grace) - floor(elapsed), clamped to [0, ceil(grace)]. The
// value is never stored, so it self-corrects across skipped ticks or
// suspension.
func (p *penaltyWindow) remaining(now time.Time) int {
	total := int(math.Ceil(p.grace.Seconds()))
	elapsed := int(math.Floor(now.Sub(p.armedAt).Seconds()))
	left := total - elapsed
	if left < 0 {
		return 0
	}
	if left > total {
		return total
	}
	return left
}

// expired reports whether the grace period has fully elapsed.
func (p *penaltyWindow) expired(now time.Time) bool {
	return now.Sub(p.armedAt) >= p.grace
}

// descriptor returns the verdict carried by this window.
func (p *penaltyWindow) descriptor() Verdict {
	return Verdict{TaskID: p.taskID, Category: p.category, Text: p.verdict}
}
