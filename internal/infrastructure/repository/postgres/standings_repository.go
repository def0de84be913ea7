package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/standings"
	qb "github.com/predictleague/predictor/internal/platform/querybuilder"
)

type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

// AggregateByLeague starts from league_members so users without a single
// scored prediction still come back as zero rows.
func (r *StandingsRepository) AggregateByLeague(ctx context.Context, leagueID string) ([]standings.MemberTotals, error) {
	query, args, err := qb.Select(
		"lm.user_id AS user_id",
		"COALESCE(SUM(p.points), 0) AS total_points",
		fmt.Sprintf("COUNT(p.id) FILTER (WHERE p.points = %d) AS exact_scores", prediction.PointsExact),
		fmt.Sprintf("COUNT(p.id) FILTER (WHERE p.points = %d) AS correct_results", prediction.PointsResult),
		"COUNT(DISTINCT md.gameweek_id) FILTER (WHERE p.points IS NOT NULL) AS gameweeks_played",
	).
		From(`league_members lm
    LEFT JOIN predictions p
        ON p.league_id = lm.league_id
        AND p.user_id = lm.user_id
        AND p.points IS NOT NULL
    LEFT JOIN matches m ON m.id = p.match_id
    LEFT JOIN matchdays md ON md.id = m.matchday_id`).
		Where(qb.Eq("lm.league_id", leagueID)).
		GroupBy("lm.user_id").
		OrderBy("total_points DESC", "exact_scores DESC", "lm.user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build aggregate league totals query: %w", err)
	}

	var rows []memberTotalsRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate league totals: %w", err)
	}

	out := make([]standings.MemberTotals, 0, len(rows))
	for _, row := range rows {
		out = append(out, standings.MemberTotals{
			UserID:          row.UserID,
			TotalPoints:     row.TotalPoints,
			ExactScores:     row.ExactScores,
			CorrectResults:  row.CorrectResults,
			GameweeksPlayed: row.GameweeksPlayed,
		})
	}

	return out, nil
}

func (r *StandingsRepository) GetLeagueCompetition(ctx context.Context, leagueID string) (string, bool, error) {
	query, args, err := qb.Select("competition_id").
		From("leagues").
		Where(qb.Eq("id", leagueID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build select league competition query: %w", err)
	}

	var competitionID string
	if err := r.db.GetContext(ctx, &competitionID, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select league competition: %w", err)
	}

	return competitionID, true, nil
}
