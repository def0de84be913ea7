package schedule

import "github.com/predictleague/predictor/internal/domain/team"

// SyncPlan is the fully materialized schedule for one competition sync.
// The plan is built in memory from buffered provider data and applied by
// the repository in a single transaction: either all of it commits or
// none of it does.
type SyncPlan struct {
	CompetitionID string
	Season        Season
	Gameweeks     []GameweekPlan
	// Teams referenced by the plan's matches. Applied with
	// insert-on-conflict-do-nothing: team identity and cosmetic data are
	// owned by the team sync pass and must not be clobbered mid-sync.
	Teams []team.Team
	// ReclaimLegacyGameweeks requests deletion of gameweeks created by
	// the old stage-less cup numbering scheme before new rows are
	// written, cascading through their matchdays, matches, predictions
	// and per-gameweek point aggregates. Cup syncs only.
	ReclaimLegacyGameweeks bool
}

type GameweekPlan struct {
	Gameweek  Gameweek
	Matchdays []MatchdayPlan
}

type MatchdayPlan struct {
	Matchday Matchday
	Matches  []Match
}

// ApplyStats reports what a plan application actually touched.
type ApplyStats struct {
	MatchesSynced    int
	LegacyGameweeks  int
	GameweeksWritten int
}

// MatchCount counts all matches in the plan.
func (p SyncPlan) MatchCount() int {
	total := 0
	for _, gw := range p.Gameweeks {
		for _, md := range gw.Matchdays {
			total += len(md.Matches)
		}
	}
	return total
}
