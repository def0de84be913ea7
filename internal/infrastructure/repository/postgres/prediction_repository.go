package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/predictleague/predictor/internal/domain/prediction"
	qb "github.com/predictleague/predictor/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListUnscoredByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("id", "user_id", "match_id", "league_id", "home_score", "away_score", "points").
		From("predictions").
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("points"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select unscored predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select unscored predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			ID:        row.ID,
			UserID:    row.UserID,
			MatchID:   row.MatchID,
			LeagueID:  row.LeagueID,
			HomeScore: row.HomeScore,
			AwayScore: row.AwayScore,
			Points:    nullIntToPtr(row.Points),
		})
	}

	return out, nil
}

func (r *PredictionRepository) SetPoints(ctx context.Context, predictionID string, points int) error {
	query, args, err := qb.Update("predictions").
		Set("points", points).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", predictionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set prediction points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set prediction points %s: %w", predictionID, err)
	}
	return nil
}

func (r *PredictionRepository) ListFinishedMatchIDsWithUnscored(ctx context.Context, competitionID string) ([]string, error) {
	query, args, err := qb.Select("DISTINCT m.id").
		From(`matches m
    JOIN predictions p ON p.match_id = m.id
    JOIN matchdays md ON md.id = m.matchday_id
    JOIN gameweeks gw ON gw.id = md.gameweek_id
    JOIN seasons s ON s.id = gw.season_id`).
		Where(
			qb.Eq("s.competition_id", competitionID),
			qb.Eq("m.status", "finished"),
			qb.Expr("m.home_score IS NOT NULL"),
			qb.Expr("m.away_score IS NOT NULL"),
			qb.IsNull("p.points"),
		).
		OrderBy("m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finished matches with unscored query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select finished matches with unscored: %w", err)
	}

	return ids, nil
}

// RefreshGameweekPoints recomputes the per-gameweek aggregate rows for
// every (league, user) pair holding a prediction on the given match. The
// aggregate table is a write-through cache; this statement is the only
// writer and is safe to repeat.
func (r *PredictionRepository) RefreshGameweekPoints(ctx context.Context, matchID string) error {
	const query = `
WITH target AS (
    SELECT md.gameweek_id
    FROM matches m
    JOIN matchdays md ON md.id = m.matchday_id
    WHERE m.id = $1
), affected AS (
    SELECT DISTINCT p.league_id, p.user_id
    FROM predictions p
    WHERE p.match_id = $1
)
INSERT INTO user_gameweek_points (league_id, user_id, gameweek_id, points, calculated_at)
SELECT a.league_id, a.user_id, t.gameweek_id, COALESCE(SUM(p.points), 0), NOW()
FROM affected a
CROSS JOIN target t
LEFT JOIN matchdays md ON md.gameweek_id = t.gameweek_id
LEFT JOIN matches m ON m.matchday_id = md.id
LEFT JOIN predictions p
    ON p.match_id = m.id
    AND p.league_id = a.league_id
    AND p.user_id = a.user_id
    AND p.points IS NOT NULL
GROUP BY a.league_id, a.user_id, t.gameweek_id
ON CONFLICT (league_id, user_id, gameweek_id) DO UPDATE SET
    points = EXCLUDED.points,
    calculated_at = EXCLUDED.calculated_at`

	if _, err := r.db.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("refresh gameweek points for match %s: %w", matchID, err)
	}
	return nil
}
