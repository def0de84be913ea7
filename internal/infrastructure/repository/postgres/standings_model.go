package postgres

type memberTotalsRowModel struct {
	UserID          string `db:"user_id"`
	TotalPoints     int    `db:"total_points"`
	ExactScores     int    `db:"exact_scores"`
	CorrectResults  int    `db:"correct_results"`
	GameweeksPlayed int    `db:"gameweeks_played"`
}
