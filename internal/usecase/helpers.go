package usecase

import (
	"fmt"
	"strings"

	"github.com/predictleague/predictor/internal/domain/schedule"
)

// buildTeamID derives the competition-qualified team identity from the
// provider reference. Falls back to a slug of the name for providers
// that omit numeric ids.
func buildTeamID(competitionID string, t ExternalTeam) string {
	if t.ExternalID > 0 {
		return fmt.Sprintf("%s-team-%d", slugSegment(competitionID), t.ExternalID)
	}
	return fmt.Sprintf("%s-team-%s", slugSegment(competitionID), slugSegment(t.Name))
}

func slugSegment(value string) string {
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

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

func matchResultDiffers(stored schedule.Match, incoming schedule.Match) bool {
	if stored.Status != incoming.Status {
		return true
	}
	if !intPtrEqual(stored.HomeScore, incoming.HomeScore) {
		return true
	}
	return !intPtrEqual(stored.AwayScore, incoming.AwayScore)
}

func intPtrEqual(left, right *int) bool {
	if left == nil || right == nil {
		return left == right
	}
	return *left == *right
}
