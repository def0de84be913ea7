package schedule

import (
	"fmt"
	"strings"
)

// Canonical stage tags for knockout competitions, in play order.
const (
	StageLeaguePhase   = "league-phase"
	StagePlayoffs      = "playoffs"
	StageLast16        = "last-16"
	StageQuarterFinals = "quarter-finals"
	StageSemiFinals    = "semi-finals"
	StageFinal         = "final"
)

type stageInfo struct {
	order int
	// offset is the number of sequential gameweek slots taken by every
	// earlier stage, derived from each stage's maximum matchday count
	// (8 league-phase matchdays, then two-legged rounds).
	offset  int
	legs    int
	display string
}

var stageTable = map[string]stageInfo{
	StageLeaguePhase:   {order: 0, offset: 0, legs: 8, display: "League Phase"},
	StagePlayoffs:      {order: 1, offset: 8, legs: 2, display: "Playoffs"},
	StageLast16:        {order: 2, offset: 10, legs: 2, display: "Round of 16"},
	StageQuarterFinals: {order: 3, offset: 12, legs: 2, display: "Quarter-finals"},
	StageSemiFinals:    {order: 4, offset: 14, legs: 2, display: "Semi-finals"},
	StageFinal:         {order: 5, offset: 16, legs: 1, display: "Final"},
}

// NormalizeStageTag folds provider stage labels into canonical tags.
// Providers subdivide the league phase into one label per matchday;
// all of those map onto the single league-phase tag.
func NormalizeStageTag(label string) (string, bool) {
	value := strings.ToUpper(strings.TrimSpace(label))
	value = strings.ReplaceAll(value, "-", "_")
	value = strings.ReplaceAll(value, " ", "_")

	if strings.HasPrefix(value, "LEAGUE_STAGE") || strings.HasPrefix(value, "LEAGUE_PHASE") {
		return StageLeaguePhase, true
	}

	switch value {
	case "PLAYOFFS", "PLAY_OFFS", "KNOCKOUT_PLAYOFFS":
		return StagePlayoffs, true
	case "LAST_16", "ROUND_OF_16", "ROUND_OF_SIXTEEN":
		return StageLast16, true
	case "QUARTER_FINALS", "QUARTER_FINAL":
		return StageQuarterFinals, true
	case "SEMI_FINALS", "SEMI_FINAL":
		return StageSemiFinals, true
	case "FINAL":
		return StageFinal, true
	default:
		return "", false
	}
}

// StageOrder ranks canonical stage tags in play order.
func StageOrder(tag string) (int, bool) {
	info, ok := stageTable[tag]
	if !ok {
		return 0, false
	}
	return info.order, true
}

// CupGameweekNumber maps (stage, matchday-within-stage) onto the
// season-wide sequential gameweek number. The offsets are fixed, so a
// round keeps its number no matter which stages have been drawn yet.
func CupGameweekNumber(tag string, matchdayInStage int) (int, bool) {
	info, ok := stageTable[tag]
	if !ok {
		return 0, false
	}
	if matchdayInStage < 1 {
		matchdayInStage = 1
	}
	return info.offset + matchdayInStage, true
}

// StageDisplayName renders the human gameweek name: league-phase groups
// are "<Stage> - MD <n>", multi-leg knockout rounds "<Stage> - Leg <n>",
// and a single-leg round is named by the stage alone.
func StageDisplayName(tag string, matchdayInStage int) string {
	info, ok := stageTable[tag]
	if !ok {
		return ""
	}
	if tag == StageLeaguePhase {
		return fmt.Sprintf("%s - MD %d", info.display, matchdayInStage)
	}
	if info.legs > 1 {
		return fmt.Sprintf("%s - Leg %d", info.display, matchdayInStage)
	}
	return info.display
}
