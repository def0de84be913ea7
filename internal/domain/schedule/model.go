package schedule

import (
	"strings"
	"time"
)

// Match lifecycle vocabulary. Provider status codes are folded into
// these five states on ingest; scores are non-nil iff status is finished.
const (
	MatchScheduled = "scheduled"
	MatchLive      = "live"
	MatchFinished  = "finished"
	MatchPostponed = "postponed"
	MatchCancelled = "cancelled"
)

// Season is one edition of a competition. At most one season per
// competition carries IsCurrent.
type Season struct {
	ID              string
	CompetitionID   string
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	IsCurrent       bool
	CurrentMatchday *int
}

// Gameweek is the unit of prediction-taking: one deadline governs all
// of its matches. Number is unique per season and stable across re-sync.
type Gameweek struct {
	ID       string
	SeasonID string
	Number   int
	Stage    string
	Name     string
	Deadline time.Time
	StartsAt time.Time
	EndsAt   time.Time
	Status   string
}

// Matchday is a calendar-day subdivision of a gameweek, numbered 1..k
// by date ascending.
type Matchday struct {
	ID         string
	GameweekID string
	Date       time.Time
	DayNumber  int
}

// Match is one scheduled fixture inside a matchday.
type Match struct {
	ID           string
	MatchdayID   string
	HomeTeamID   string
	AwayTeamID   string
	KickoffAt    time.Time
	HomeScore    *int
	AwayScore    *int
	Status       string
	Venue        string
	HomeRedCards int
	AwayRedCards int
}

// NormalizeMatchStatus maps provider status vocabulary onto the
// five-state internal one. Unknown codes are treated as scheduled so a
// provider vocabulary change never drops a fixture.
func NormalizeMatchStatus(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "IN_PLAY", "PAUSED", "LIVE", "HT", "ET":
		return MatchLive
	case "FINISHED", "FT", "AET", "PEN", "AWARDED":
		return MatchFinished
	case "POSTPONED", "SUSPENDED":
		return MatchPostponed
	case "CANCELLED", "ABANDONED":
		return MatchCancelled
	default:
		return MatchScheduled
	}
}

// IsSettledStatus reports whether a match can no longer start or resume:
// finished, cancelled or postponed.
func IsSettledStatus(status string) bool {
	switch status {
	case MatchFinished, MatchCancelled, MatchPostponed:
		return true
	default:
		return false
	}
}

// HasFinalScore reports whether the match carries a final result usable
// for scoring.
func (m Match) HasFinalScore() bool {
	return m.Status == MatchFinished && m.HomeScore != nil && m.AwayScore != nil
}
