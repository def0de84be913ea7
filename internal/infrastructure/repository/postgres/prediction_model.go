package postgres

import "database/sql"

type predictionTableModel struct {
	ID        string        `db:"id"`
	UserID    string        `db:"user_id"`
	MatchID   string        `db:"match_id"`
	LeagueID  string        `db:"league_id"`
	HomeScore int           `db:"home_score"`
	AwayScore int           `db:"away_score"`
	Points    sql.NullInt64 `db:"points"`
}
