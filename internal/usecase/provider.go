package usecase

import (
	"context"
	"strings"
	"time"
)

// ScheduleProvider fetches raw competition data from the external
// source. Implementations must buffer responses fully; no transactional
// write starts until every fetch for a sync has returned.
type ScheduleProvider interface {
	FetchTeams(ctx context.Context, competitionID string) ([]ExternalTeam, error)
	FetchCurrentSeason(ctx context.Context, competitionID string) (ExternalSeason, error)
	FetchMatches(ctx context.Context, competitionID string) ([]ExternalMatch, error)
	// FetchFinishedMatches returns only matches finished inside the
	// given window, for the lightweight result-refresh path.
	FetchFinishedMatches(ctx context.Context, competitionID string, from, to time.Time) ([]ExternalMatch, error)
}

type ExternalTeam struct {
	ExternalID int64
	Name       string
	ShortName  string
	Code       string
	CrestURL   string
}

type ExternalSeason struct {
	StartDate       time.Time
	EndDate         time.Time
	CurrentMatchday *int
}

// ExternalMatch is one raw provider match. Matchday is nil when the
// provider has not assigned the match to a round yet; a knockout final
// commonly arrives without one.
type ExternalMatch struct {
	ExternalID   int64
	Stage        string
	Matchday     *int
	KickoffAt    time.Time
	Status       string
	HomeTeam     ExternalTeam
	AwayTeam     ExternalTeam
	HomeScore    *int
	AwayScore    *int
	Venue        string
	HomeRedCards int
	AwayRedCards int
}

// isUnresolvedTeam reports a "to be decided" pairing side: the knockout
// draw has not produced a real club yet.
func isUnresolvedTeam(t ExternalTeam) bool {
	name := strings.TrimSpace(t.Name)
	if t.ExternalID <= 0 && name == "" {
		return true
	}
	switch strings.ToUpper(name) {
	case "", "TBD", "TBC", "TO BE DECIDED", "TO BE CONFIRMED":
		return true
	default:
		return false
	}
}

func (m ExternalMatch) hasUnresolvedSide() bool {
	return isUnresolvedTeam(m.HomeTeam) || isUnresolvedTeam(m.AwayTeam)
}
