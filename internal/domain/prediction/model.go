package prediction

// Outcome categories a scored prediction can fall into.
const (
	CategoryExact     = "exact"
	CategoryResult    = "result"
	CategoryIncorrect = "incorrect"
)

const (
	PointsExact  = 3
	PointsResult = 1
)

// Prediction is one user's predicted score for one match in one league.
// The same user may predict differently in different leagues; uniqueness
// is (user, match, league). Points stays nil until the match is scored.
type Prediction struct {
	ID        string
	UserID    string
	MatchID   string
	LeagueID  string
	HomeScore int
	AwayScore int
	Points    *int
}

// Score computes points for a prediction against the actual final score:
// 3 for the exact scoreline, 1 for the right outcome, 0 otherwise.
func Score(predHome, predAway, actualHome, actualAway int) (int, string) {
	if predHome == actualHome && predAway == actualAway {
		return PointsExact, CategoryExact
	}
	if outcome(predHome, predAway) == outcome(actualHome, actualAway) {
		return PointsResult, CategoryResult
	}
	return 0, CategoryIncorrect
}

func outcome(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	default:
		return 0
	}
}
