package download

import (
	"time"

	"github.com/crowdforge/contest-api/internal/types"
)

// Window is one scheduled phase of a challenge round.
type Window struct {
	StartsAt time.Time
	EndsAt   time.Time
	Phase    types.Phase
}

// CurrentPhase computes the phase of a round at instant now from its
// schedule: the latest-starting window that is open, or, when none is
// open, the latest-ending window that has already closed. Before any
// window opens it returns PhaseNone. Phase transitions are purely
// time-driven; the schedule itself is written elsewhere.
func CurrentPhase(windows []Window, now time.Time) types.Phase {
	current := types.PhaseNone
	var currentStart time.Time
	open := false

	for _, w := range windows {
		if w.StartsAt.After(now) {
			continue
		}
		if now.Before(w.EndsAt) {
			if !open || w.StartsAt.After(currentStart) ||
				(w.StartsAt.Equal(currentStart) && w.Phase > current) {
				current = w.Phase
				currentStart = w.StartsAt
				open = true
			}
		}
	}
	if open {
		return current
	}

	// Round is between phases or over: report the last phase that closed.
	var lastEnd time.Time
	for _, w := range windows {
		if w.EndsAt.After(now) {
			continue
		}
		if w.EndsAt.After(lastEnd) || (w.EndsAt.Equal(lastEnd) && w.Phase > current) {
			current = w.Phase
			lastEnd = w.EndsAt
		}
	}
	return current
}
