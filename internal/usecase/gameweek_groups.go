package usecase

import (
	"fmt"
	"sort"

	"github.com/predictleague/predictor/internal/domain/competition"
	"github.com/predictleague/predictor/internal/domain/schedule"
)

// gameweekGroup is one logical round of a competition: the matches that
// share a prediction deadline. StageTag is empty for round-robin
// competitions.
type gameweekGroup struct {
	stageTag        string
	matchdayInStage int
	number          int
	name            string
	matches         []ExternalMatch
}

// buildGameweekGroups dispatches on competition format. Both paths share
// the group shape; only the numbering differs.
func buildGameweekGroups(format competition.Format, matches []ExternalMatch) ([]gameweekGroup, []syncSkip) {
	if format == competition.FormatCup {
		return buildCupGroups(matches)
	}
	return buildLeagueGroups(matches)
}

// syncSkip records a match or group left out of the plan. Skips are not
// errors; the provider resolves them over time and the next sync picks
// them up.
type syncSkip struct {
	reason  string
	matchID int64
}

// buildLeagueGroups groups a round-robin competition by provider
// matchday: the sequential gameweek number is the matchday itself.
func buildLeagueGroups(matches []ExternalMatch) ([]gameweekGroup, []syncSkip) {
	var skips []syncSkip
	byMatchday := make(map[int][]ExternalMatch)
	for _, item := range matches {
		if item.Matchday == nil || *item.Matchday < 1 {
			skips = append(skips, syncSkip{reason: "match has no matchday assignment", matchID: item.ExternalID})
			continue
		}
		byMatchday[*item.Matchday] = append(byMatchday[*item.Matchday], item)
	}

	out := make([]gameweekGroup, 0, len(byMatchday))
	for matchday, group := range byMatchday {
		out = append(out, gameweekGroup{
			matchdayInStage: matchday,
			number:          matchday,
			name:            fmt.Sprintf("Matchday %d", matchday),
			matches:         group,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].number < out[j].number })
	return dropUnresolvedGroups(out, &skips), skips
}

// buildCupGroups groups a knockout competition by (canonical stage,
// matchday-within-stage) and numbers gameweeks through the fixed stage
// offset table, so a round keeps its number regardless of which later
// stages exist yet.
func buildCupGroups(matches []ExternalMatch) ([]gameweekGroup, []syncSkip) {
	type groupKey struct {
		stage    string
		matchday int
	}

	var skips []syncSkip
	byKey := make(map[groupKey][]ExternalMatch)
	for _, item := range matches {
		stageTag, ok := schedule.NormalizeStageTag(item.Stage)
		if !ok {
			skips = append(skips, syncSkip{reason: "unknown stage label " + item.Stage, matchID: item.ExternalID})
			continue
		}

		matchday := 0
		if item.Matchday != nil {
			matchday = *item.Matchday
		}
		if matchday < 1 {
			// A single-match final arrives without a matchday; treat it
			// as the first and only round of its stage.
			if stageTag != schedule.StageFinal {
				skips = append(skips, syncSkip{reason: "match has no matchday assignment", matchID: item.ExternalID})
				continue
			}
			matchday = 1
		}

		key := groupKey{stage: stageTag, matchday: matchday}
		byKey[key] = append(byKey[key], item)
	}

	out := make([]gameweekGroup, 0, len(byKey))
	for key, group := range byKey {
		number, ok := schedule.CupGameweekNumber(key.stage, key.matchday)
		if !ok {
			continue
		}
		out = append(out, gameweekGroup{
			stageTag:        key.stage,
			matchdayInStage: key.matchday,
			number:          number,
			name:            schedule.StageDisplayName(key.stage, key.matchday),
			matches:         group,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		left, _ := schedule.StageOrder(out[i].stageTag)
		right, _ := schedule.StageOrder(out[j].stageTag)
		if left != right {
			return left < right
		}
		return out[i].matchdayInStage < out[j].matchdayInStage
	})

	return dropUnresolvedGroups(out, &skips), skips
}

// dropUnresolvedGroups removes groups where every pairing is still to be
// decided: an undrawn round must not create placeholder gameweeks.
func dropUnresolvedGroups(groups []gameweekGroup, skips *[]syncSkip) []gameweekGroup {
	out := groups[:0]
	for _, group := range groups {
		resolved := false
		for _, item := range group.matches {
			if !item.hasUnresolvedSide() {
				resolved = true
				break
			}
		}
		if !resolved {
			*skips = append(*skips, syncSkip{reason: "gameweek group is entirely unresolved: " + group.name})
			continue
		}
		out = append(out, group)
	}
	return out
}
