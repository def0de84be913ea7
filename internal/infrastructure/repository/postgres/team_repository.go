package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/predictleague/predictor/internal/domain/team"
	qb "github.com/predictleague/predictor/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByCompetition(ctx context.Context, competitionID string) ([]team.Team, error) {
	query, args, err := qb.Select("id", "competition_id", "name", "short_name", "code", "crest_url").
		From("teams").
		Where(qb.Eq("competition_id", competitionID)).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by competition query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by competition: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:            row.ID,
			CompetitionID: row.CompetitionID,
			Name:          row.Name,
			ShortName:     row.ShortName,
			Code:          row.Code,
			CrestURL:      row.CrestURL,
		})
	}

	return out, nil
}

func (r *TeamRepository) UpsertAll(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}

	for _, t := range teams {
		model := teamTableModel{
			ID:            t.ID,
			CompetitionID: t.CompetitionID,
			Name:          t.Name,
			ShortName:     t.ShortName,
			Code:          t.Code,
			CrestURL:      t.CrestURL,
		}
		query, args, err := qb.InsertModel("teams", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    short_name = EXCLUDED.short_name,
    code = EXCLUDED.code,
    crest_url = EXCLUDED.crest_url,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert team query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert team %s: %w", t.ID, err)
		}
	}

	return nil
}
