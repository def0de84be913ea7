package schedule

import "time"

// Gameweek lifecycle vocabulary.
const (
	GameweekUpcoming  = "upcoming"
	GameweekActive    = "active"
	GameweekCompleted = "completed"
)

const (
	// predictionLead is how long before the first kickoff predictions close.
	predictionLead = time.Hour
	// matchBuffer estimates match duration plus stoppage when deriving
	// the gameweek end from the last kickoff.
	matchBuffer = 2 * time.Hour
)

// Window holds the derived prediction window of a gameweek.
type Window struct {
	Deadline time.Time
	StartsAt time.Time
	EndsAt   time.Time
}

// ComputeWindow derives the prediction window from kickoff times:
// deadline = earliest kickoff - 1h, startsAt = earliest kickoff,
// endsAt = latest kickoff + 2h. Zero window for an empty slice.
func ComputeWindow(kickoffs []time.Time) Window {
	if len(kickoffs) == 0 {
		return Window{}
	}

	earliest := kickoffs[0]
	latest := kickoffs[0]
	for _, at := range kickoffs[1:] {
		if at.Before(earliest) {
			earliest = at
		}
		if at.After(latest) {
			latest = at
		}
	}

	return Window{
		Deadline: earliest.Add(-predictionLead).UTC(),
		StartsAt: earliest.UTC(),
		EndsAt:   latest.Add(matchBuffer).UTC(),
	}
}

// DeriveStatus is the source of truth for Gameweek.Status. The stored
// column is written at sync time and is only a read-performance cache;
// any reader needing a fresh answer re-derives it from match state and
// an injected now.
func DeriveStatus(now, deadline time.Time, matchStatuses []string) string {
	if now.Before(deadline) {
		return GameweekUpcoming
	}

	for _, status := range matchStatuses {
		if !IsSettledStatus(status) {
			return GameweekActive
		}
	}

	return GameweekCompleted
}
