package postgres

import (
	"database/sql"
	"time"
)

type seasonTableModel struct {
	ID              string        `db:"id"`
	CompetitionID   string        `db:"competition_id"`
	Name            string        `db:"name"`
	StartDate       time.Time     `db:"start_date"`
	EndDate         time.Time     `db:"end_date"`
	IsCurrent       bool          `db:"is_current"`
	CurrentMatchday sql.NullInt64 `db:"current_matchday"`
}

type gameweekTableModel struct {
	ID       string    `db:"id"`
	SeasonID string    `db:"season_id"`
	Number   int       `db:"number"`
	Stage    string    `db:"stage"`
	Name     string    `db:"name"`
	Deadline time.Time `db:"deadline"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
	Status   string    `db:"status"`
}

type matchdayTableModel struct {
	ID         string    `db:"id"`
	GameweekID string    `db:"gameweek_id"`
	Date       time.Time `db:"date"`
	DayNumber  int       `db:"day_number"`
}

type matchTableModel struct {
	ID           string        `db:"id"`
	MatchdayID   string        `db:"matchday_id"`
	HomeTeamID   string        `db:"home_team_id"`
	AwayTeamID   string        `db:"away_team_id"`
	KickoffAt    time.Time     `db:"kickoff_at"`
	HomeScore    sql.NullInt64 `db:"home_score"`
	AwayScore    sql.NullInt64 `db:"away_score"`
	Status       string        `db:"status"`
	Venue        string        `db:"venue"`
	HomeRedCards int           `db:"home_red_cards"`
	AwayRedCards int           `db:"away_red_cards"`
}

type gameweekStatusRowModel struct {
	GameweekID  string         `db:"gameweek_id"`
	Number      int            `db:"number"`
	Deadline    time.Time      `db:"deadline"`
	MatchStatus sql.NullString `db:"match_status"`
}
