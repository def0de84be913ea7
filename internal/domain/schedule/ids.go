package schedule

import (
	"fmt"
	"regexp"
	"strings"
)

// Identity builders. Every row synced from the provider derives its id
// from stable inputs only (competition code, season start year, stage,
// matchday-within-stage, provider match id), so re-running sync against
// the same logical schedule always touches the same rows.

func BuildSeasonID(competitionID string, startYear int) string {
	return fmt.Sprintf("%s-%d", sanitizeIDSegment(competitionID), startYear)
}

// SeasonName renders the display name for a season, e.g. "2025/26".
func SeasonName(startYear, endYear int) string {
	if endYear <= startYear {
		return fmt.Sprintf("%d", startYear)
	}
	return fmt.Sprintf("%d/%02d", startYear, endYear%100)
}

// BuildGameweekID encodes season, optional stage and matchday-within-stage.
// The stage segment is what distinguishes the current cup numbering scheme
// from the legacy stage-less one.
func BuildGameweekID(seasonID, stageTag string, matchdayInStage int) string {
	if stageTag == "" {
		return fmt.Sprintf("%s-md%d", seasonID, matchdayInStage)
	}
	return fmt.Sprintf("%s-%s-md%d", seasonID, sanitizeIDSegment(stageTag), matchdayInStage)
}

func BuildMatchdayID(gameweekID string, dayNumber int) string {
	return fmt.Sprintf("%s-day%d", gameweekID, dayNumber)
}

func BuildMatchID(competitionID string, providerMatchID int64) string {
	return fmt.Sprintf("%s-match-%d", sanitizeIDSegment(competitionID), providerMatchID)
}

// IsLegacyCupGameweekID detects gameweeks created by the old cup
// numbering scheme, which omitted the stage segment. Rows matching this
// pattern are reclaimed before new-format gameweeks are written.
func IsLegacyCupGameweekID(seasonID, gameweekID string) bool {
	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(seasonID) + `-md[0-9]+$`)
	if err != nil {
		return false
	}
	return pattern.MatchString(gameweekID)
}

func sanitizeIDSegment(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "x"
	}

	var builder strings.Builder
	lastDash := false
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			builder.WriteByte('-')
			lastDash = true
		}
	}

	out := strings.Trim(builder.String(), "-")
	if out == "" {
		return "x"
	}
	return out
}
