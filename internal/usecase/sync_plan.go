package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/predictleague/predictor/internal/domain/competition"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/domain/team"
)

// buildSyncPlan turns buffered provider data into the full transactional
// write set for one competition. Pure: identical inputs always produce
// an identical plan, which is what makes re-running sync idempotent.
func buildSyncPlan(
	comp competition.Competition,
	season ExternalSeason,
	matches []ExternalMatch,
	now time.Time,
) (schedule.SyncPlan, []syncSkip) {
	seasonID := schedule.BuildSeasonID(comp.ID, season.StartDate.Year())

	plan := schedule.SyncPlan{
		CompetitionID: comp.ID,
		Season: schedule.Season{
			ID:              seasonID,
			CompetitionID:   comp.ID,
			Name:            schedule.SeasonName(season.StartDate.Year(), season.EndDate.Year()),
			StartDate:       season.StartDate.UTC(),
			EndDate:         season.EndDate.UTC(),
			IsCurrent:       true,
			CurrentMatchday: cloneIntPtr(season.CurrentMatchday),
		},
		ReclaimLegacyGameweeks: comp.Format == competition.FormatCup,
	}

	groups, skips := buildGameweekGroups(comp.Format, matches)
	teamsByID := make(map[string]team.Team)

	for _, group := range groups {
		kept := make([]ExternalMatch, 0, len(group.matches))
		for _, item := range group.matches {
			if item.hasUnresolvedSide() {
				skips = append(skips, syncSkip{reason: "match pairing not drawn yet", matchID: item.ExternalID})
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) == 0 {
			continue
		}

		gameweekID := schedule.BuildGameweekID(seasonID, group.stageTag, group.matchdayInStage)
		window := schedule.ComputeWindow(kickoffTimes(kept))

		gw := schedule.Gameweek{
			ID:       gameweekID,
			SeasonID: seasonID,
			Number:   group.number,
			Stage:    group.stageTag,
			Name:     group.name,
			Deadline: window.Deadline,
			StartsAt: window.StartsAt,
			EndsAt:   window.EndsAt,
		}

		matchdays := partitionMatchdays(comp.ID, gameweekID, kept)
		gw.Status = schedule.DeriveStatus(now, window.Deadline, planMatchStatuses(matchdays))

		for _, item := range kept {
			for _, side := range []ExternalTeam{item.HomeTeam, item.AwayTeam} {
				t := mapExternalTeam(comp.ID, side)
				teamsByID[t.ID] = t
			}
		}

		plan.Gameweeks = append(plan.Gameweeks, schedule.GameweekPlan{
			Gameweek:  gw,
			Matchdays: matchdays,
		})
	}

	teams := make([]team.Team, 0, len(teamsByID))
	for _, t := range teamsByID {
		teams = append(teams, t)
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	plan.Teams = teams

	return plan, skips
}

// partitionMatchdays splits a gameweek's matches by UTC calendar date
// into matchdays numbered 1..k by date ascending.
func partitionMatchdays(competitionID, gameweekID string, matches []ExternalMatch) []schedule.MatchdayPlan {
	byDate := make(map[time.Time][]ExternalMatch)
	for _, item := range matches {
		date := item.KickoffAt.UTC().Truncate(24 * time.Hour)
		byDate[date] = append(byDate[date], item)
	}

	dates := make([]time.Time, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.SliceStable(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]schedule.MatchdayPlan, 0, len(dates))
	for idx, date := range dates {
		dayNumber := idx + 1
		matchdayID := schedule.BuildMatchdayID(gameweekID, dayNumber)

		group := byDate[date]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].KickoffAt.Equal(group[j].KickoffAt) {
				return group[i].KickoffAt.Before(group[j].KickoffAt)
			}
			return group[i].ExternalID < group[j].ExternalID
		})

		rows := make([]schedule.Match, 0, len(group))
		for _, item := range group {
			rows = append(rows, mapExternalMatch(competitionID, matchdayID, item))
		}

		out = append(out, schedule.MatchdayPlan{
			Matchday: schedule.Matchday{
				ID:         matchdayID,
				GameweekID: gameweekID,
				Date:       date,
				DayNumber:  dayNumber,
			},
			Matches: rows,
		})
	}

	return out
}

func mapExternalMatch(competitionID, matchdayID string, item ExternalMatch) schedule.Match {
	return schedule.Match{
		ID:           schedule.BuildMatchID(competitionID, item.ExternalID),
		MatchdayID:   matchdayID,
		HomeTeamID:   buildTeamID(competitionID, item.HomeTeam),
		AwayTeamID:   buildTeamID(competitionID, item.AwayTeam),
		KickoffAt:    item.KickoffAt.UTC(),
		HomeScore:    cloneIntPtr(item.HomeScore),
		AwayScore:    cloneIntPtr(item.AwayScore),
		Status:       schedule.NormalizeMatchStatus(item.Status),
		Venue:        strings.TrimSpace(item.Venue),
		HomeRedCards: maxInt(item.HomeRedCards, 0),
		AwayRedCards: maxInt(item.AwayRedCards, 0),
	}
}

func mapExternalTeam(competitionID string, item ExternalTeam) team.Team {
	return team.Team{
		ID:            buildTeamID(competitionID, item),
		CompetitionID: competitionID,
		Name:          strings.TrimSpace(item.Name),
		ShortName:     strings.TrimSpace(item.ShortName),
		Code:          strings.ToUpper(strings.TrimSpace(item.Code)),
		CrestURL:      strings.TrimSpace(item.CrestURL),
	}
}

func kickoffTimes(matches []ExternalMatch) []time.Time {
	out := make([]time.Time, 0, len(matches))
	for _, item := range matches {
		out = append(out, item.KickoffAt.UTC())
	}
	return out
}

func planMatchStatuses(matchdays []schedule.MatchdayPlan) []string {
	var out []string
	for _, md := range matchdays {
		for _, m := range md.Matches {
			out = append(out, m.Status)
		}
	}
	return out
}
