package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/predictleague/predictor/internal/domain/schedule"
	qb "github.com/predictleague/predictor/internal/platform/querybuilder"
)

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ApplySyncPlan writes the whole plan in one transaction. Legacy cup
// gameweek reclaim, the season current flag flip and every upsert either
// all commit or all roll back, so readers never observe a half-synced
// schedule.
func (r *ScheduleRepository) ApplySyncPlan(ctx context.Context, plan schedule.SyncPlan) (schedule.ApplyStats, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return schedule.ApplyStats{}, fmt.Errorf("begin tx apply sync plan: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stats := schedule.ApplyStats{}

	if plan.ReclaimLegacyGameweeks {
		reclaimed, err := reclaimLegacyGameweeks(ctx, tx, plan.Season.ID)
		if err != nil {
			return schedule.ApplyStats{}, err
		}
		stats.LegacyGameweeks = reclaimed
	}

	if err := upsertSeason(ctx, tx, plan.Season); err != nil {
		return schedule.ApplyStats{}, err
	}

	for _, t := range plan.Teams {
		model := teamTableModel{
			ID:            t.ID,
			CompetitionID: t.CompetitionID,
			Name:          t.Name,
			ShortName:     t.ShortName,
			Code:          t.Code,
			CrestURL:      t.CrestURL,
		}
		query, args, err := qb.InsertModel("teams", model, "ON CONFLICT (id) DO NOTHING")
		if err != nil {
			return schedule.ApplyStats{}, fmt.Errorf("build ensure team query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return schedule.ApplyStats{}, fmt.Errorf("ensure team %s: %w", t.ID, err)
		}
	}

	for _, gwPlan := range plan.Gameweeks {
		if err := upsertGameweek(ctx, tx, gwPlan.Gameweek); err != nil {
			return schedule.ApplyStats{}, err
		}
		stats.GameweeksWritten++

		for _, mdPlan := range gwPlan.Matchdays {
			if err := upsertMatchday(ctx, tx, mdPlan.Matchday); err != nil {
				return schedule.ApplyStats{}, err
			}
			for _, match := range mdPlan.Matches {
				if err := upsertMatch(ctx, tx, match); err != nil {
					return schedule.ApplyStats{}, err
				}
				stats.MatchesSynced++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return schedule.ApplyStats{}, fmt.Errorf("commit apply sync plan tx: %w", err)
	}

	return stats, nil
}

// reclaimLegacyGameweeks removes gameweeks written by the old stage-less
// cup numbering scheme, cascading through their dependents before the
// rows themselves. Matching happens in Go with the same predicate the
// sync planner uses, not with SQL pattern matching.
func reclaimLegacyGameweeks(ctx context.Context, tx *sqlx.Tx, seasonID string) (int, error) {
	query, args, err := qb.Select("id").From("gameweeks").
		Where(qb.Eq("season_id", seasonID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select season gameweek ids query: %w", err)
	}

	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return 0, fmt.Errorf("select season gameweek ids: %w", err)
	}

	legacy := make([]string, 0, len(ids))
	for _, id := range ids {
		if schedule.IsLegacyCupGameweekID(seasonID, id) {
			legacy = append(legacy, id)
		}
	}
	if len(legacy) == 0 {
		return 0, nil
	}

	legacyArgs := stringsToAny(legacy)

	matchdayIDsQuery, matchdayIDsArgs, err := qb.Select("id").From("matchdays").
		Where(qb.In("gameweek_id", legacyArgs)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select legacy matchday ids query: %w", err)
	}
	var matchdayIDs []string
	if err := tx.SelectContext(ctx, &matchdayIDs, matchdayIDsQuery, matchdayIDsArgs...); err != nil {
		return 0, fmt.Errorf("select legacy matchday ids: %w", err)
	}

	if len(matchdayIDs) > 0 {
		matchdayArgs := stringsToAny(matchdayIDs)

		matchIDsQuery, matchIDsArgs, err := qb.Select("id").From("matches").
			Where(qb.In("matchday_id", matchdayArgs)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build select legacy match ids query: %w", err)
		}
		var matchIDs []string
		if err := tx.SelectContext(ctx, &matchIDs, matchIDsQuery, matchIDsArgs...); err != nil {
			return 0, fmt.Errorf("select legacy match ids: %w", err)
		}

		if len(matchIDs) > 0 {
			deletePredictions, deletePredictionsArgs, err := qb.DeleteFrom("predictions").
				Where(qb.In("match_id", stringsToAny(matchIDs))).
				ToSQL()
			if err != nil {
				return 0, fmt.Errorf("build delete legacy predictions query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, deletePredictions, deletePredictionsArgs...); err != nil {
				return 0, fmt.Errorf("delete legacy predictions: %w", err)
			}
		}

		deleteMatches, deleteMatchesArgs, err := qb.DeleteFrom("matches").
			Where(qb.In("matchday_id", matchdayArgs)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build delete legacy matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteMatches, deleteMatchesArgs...); err != nil {
			return 0, fmt.Errorf("delete legacy matches: %w", err)
		}
	}

	deletePoints, deletePointsArgs, err := qb.DeleteFrom("user_gameweek_points").
		Where(qb.In("gameweek_id", legacyArgs)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete legacy gameweek points query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deletePoints, deletePointsArgs...); err != nil {
		return 0, fmt.Errorf("delete legacy gameweek points: %w", err)
	}

	deleteMatchdays, deleteMatchdaysArgs, err := qb.DeleteFrom("matchdays").
		Where(qb.In("gameweek_id", legacyArgs)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete legacy matchdays query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteMatchdays, deleteMatchdaysArgs...); err != nil {
		return 0, fmt.Errorf("delete legacy matchdays: %w", err)
	}

	deleteGameweeks, deleteGameweeksArgs, err := qb.DeleteFrom("gameweeks").
		Where(qb.In("id", legacyArgs)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete legacy gameweeks query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteGameweeks, deleteGameweeksArgs...); err != nil {
		return 0, fmt.Errorf("delete legacy gameweeks: %w", err)
	}

	return len(legacy), nil
}

func upsertSeason(ctx context.Context, tx *sqlx.Tx, season schedule.Season) error {
	if season.IsCurrent {
		// Unset first so the partial unique index on (competition_id)
		// WHERE is_current never sees two current rows.
		clearQuery, clearArgs, err := qb.Update("seasons").
			SetExpr("is_current", "FALSE").
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("competition_id", season.CompetitionID),
				qb.Expr("is_current"),
				qb.Expr("id <> ?", season.ID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build clear current season query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
			return fmt.Errorf("clear current season: %w", err)
		}
	}

	model := seasonTableModel{
		ID:              season.ID,
		CompetitionID:   season.CompetitionID,
		Name:            season.Name,
		StartDate:       season.StartDate,
		EndDate:         season.EndDate,
		IsCurrent:       season.IsCurrent,
		CurrentMatchday: ptrToNullInt(season.CurrentMatchday),
	}
	query, args, err := qb.InsertModel("seasons", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    is_current = EXCLUDED.is_current,
    current_matchday = EXCLUDED.current_matchday,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season %s: %w", season.ID, err)
	}
	return nil
}

func upsertGameweek(ctx context.Context, tx *sqlx.Tx, gw schedule.Gameweek) error {
	model := gameweekTableModel{
		ID:       gw.ID,
		SeasonID: gw.SeasonID,
		Number:   gw.Number,
		Stage:    gw.Stage,
		Name:     gw.Name,
		Deadline: gw.Deadline,
		StartsAt: gw.StartsAt,
		EndsAt:   gw.EndsAt,
		Status:   gw.Status,
	}
	query, args, err := qb.InsertModel("gameweeks", model, `ON CONFLICT (id) DO UPDATE SET
    number = EXCLUDED.number,
    stage = EXCLUDED.stage,
    name = EXCLUDED.name,
    deadline = EXCLUDED.deadline,
    starts_at = EXCLUDED.starts_at,
    ends_at = EXCLUDED.ends_at,
    status = EXCLUDED.status,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert gameweek query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert gameweek %s: %w", gw.ID, err)
	}
	return nil
}

func upsertMatchday(ctx context.Context, tx *sqlx.Tx, md schedule.Matchday) error {
	model := matchdayTableModel{
		ID:         md.ID,
		GameweekID: md.GameweekID,
		Date:       md.Date,
		DayNumber:  md.DayNumber,
	}
	query, args, err := qb.InsertModel("matchdays", model, `ON CONFLICT (id) DO UPDATE SET
    gameweek_id = EXCLUDED.gameweek_id,
    date = EXCLUDED.date,
    day_number = EXCLUDED.day_number`)
	if err != nil {
		return fmt.Errorf("build upsert matchday query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert matchday %s: %w", md.ID, err)
	}
	return nil
}

func upsertMatch(ctx context.Context, tx *sqlx.Tx, match schedule.Match) error {
	model := matchTableModel{
		ID:           match.ID,
		MatchdayID:   match.MatchdayID,
		HomeTeamID:   match.HomeTeamID,
		AwayTeamID:   match.AwayTeamID,
		KickoffAt:    match.KickoffAt,
		HomeScore:    ptrToNullInt(match.HomeScore),
		AwayScore:    ptrToNullInt(match.AwayScore),
		Status:       match.Status,
		Venue:        match.Venue,
		HomeRedCards: match.HomeRedCards,
		AwayRedCards: match.AwayRedCards,
	}
	query, args, err := qb.InsertModel("matches", model, `ON CONFLICT (id) DO UPDATE SET
    matchday_id = EXCLUDED.matchday_id,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    kickoff_at = EXCLUDED.kickoff_at,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    venue = EXCLUDED.venue,
    home_red_cards = EXCLUDED.home_red_cards,
    away_red_cards = EXCLUDED.away_red_cards,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", match.ID, err)
	}
	return nil
}

func (r *ScheduleRepository) GetCurrentSeason(ctx context.Context, competitionID string) (schedule.Season, bool, error) {
	query, args, err := qb.Select("id", "competition_id", "name", "start_date", "end_date", "is_current", "current_matchday").
		From("seasons").
		Where(
			qb.Eq("competition_id", competitionID),
			qb.Expr("is_current"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return schedule.Season{}, false, fmt.Errorf("build select current season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return schedule.Season{}, false, nil
		}
		return schedule.Season{}, false, fmt.Errorf("select current season: %w", err)
	}

	return seasonFromRow(row), true, nil
}

func (r *ScheduleRepository) ListGameweeksBySeason(ctx context.Context, seasonID string) ([]schedule.Gameweek, error) {
	query, args, err := qb.Select("id", "season_id", "number", "stage", "name", "deadline", "starts_at", "ends_at", "status").
		From("gameweeks").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select gameweeks by season query: %w", err)
	}

	var rows []gameweekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select gameweeks by season: %w", err)
	}

	out := make([]schedule.Gameweek, 0, len(rows))
	for _, row := range rows {
		out = append(out, schedule.Gameweek{
			ID:       row.ID,
			SeasonID: row.SeasonID,
			Number:   row.Number,
			Stage:    row.Stage,
			Name:     row.Name,
			Deadline: row.Deadline,
			StartsAt: row.StartsAt,
			EndsAt:   row.EndsAt,
			Status:   row.Status,
		})
	}

	return out, nil
}

func (r *ScheduleRepository) ListGameweekStatusInputs(ctx context.Context, seasonID string) ([]schedule.GameweekStatusInput, error) {
	query, args, err := qb.Select(
		"gw.id AS gameweek_id",
		"gw.number AS number",
		"gw.deadline AS deadline",
		"m.status AS match_status",
	).
		From("gameweeks gw LEFT JOIN matchdays md ON md.gameweek_id = gw.id LEFT JOIN matches m ON m.matchday_id = md.id").
		Where(qb.Eq("gw.season_id", seasonID)).
		OrderBy("gw.number", "gw.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select gameweek status inputs query: %w", err)
	}

	var rows []gameweekStatusRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select gameweek status inputs: %w", err)
	}

	out := make([]schedule.GameweekStatusInput, 0)
	index := map[string]int{}
	for _, row := range rows {
		idx, seen := index[row.GameweekID]
		if !seen {
			out = append(out, schedule.GameweekStatusInput{
				GameweekID: row.GameweekID,
				Deadline:   row.Deadline,
			})
			idx = len(out) - 1
			index[row.GameweekID] = idx
		}
		if row.MatchStatus.Valid {
			out[idx].MatchStatuses = append(out[idx].MatchStatuses, row.MatchStatus.String)
		}
	}

	return out, nil
}

func (r *ScheduleRepository) GetMatch(ctx context.Context, matchID string) (schedule.Match, bool, error) {
	query, args, err := matchSelect().
		Where(qb.Eq("id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return schedule.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return schedule.Match{}, false, nil
		}
		return schedule.Match{}, false, fmt.Errorf("select match: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *ScheduleRepository) ListMatchesByIDs(ctx context.Context, matchIDs []string) ([]schedule.Match, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := matchSelect().
		Where(qb.In("id", stringsToAny(matchIDs))).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by ids query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by ids: %w", err)
	}

	out := make([]schedule.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}

	return out, nil
}

func (r *ScheduleRepository) UpdateMatchResults(ctx context.Context, matches []schedule.Match) error {
	for _, match := range matches {
		query, args, err := qb.Update("matches").
			Set("home_score", ptrToNullInt(match.HomeScore)).
			Set("away_score", ptrToNullInt(match.AwayScore)).
			Set("status", match.Status).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", match.ID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update match result query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update match result %s: %w", match.ID, err)
		}
	}
	return nil
}

func matchSelect() *qb.SelectBuilder {
	return qb.Select(
		"id", "matchday_id", "home_team_id", "away_team_id", "kickoff_at",
		"home_score", "away_score", "status", "venue", "home_red_cards", "away_red_cards",
	).From("matches")
}

func seasonFromRow(row seasonTableModel) schedule.Season {
	return schedule.Season{
		ID:              row.ID,
		CompetitionID:   row.CompetitionID,
		Name:            row.Name,
		StartDate:       row.StartDate,
		EndDate:         row.EndDate,
		IsCurrent:       row.IsCurrent,
		CurrentMatchday: nullIntToPtr(row.CurrentMatchday),
	}
}

func matchFromRow(row matchTableModel) schedule.Match {
	return schedule.Match{
		ID:           row.ID,
		MatchdayID:   row.MatchdayID,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		KickoffAt:    row.KickoffAt,
		HomeScore:    nullIntToPtr(row.HomeScore),
		AwayScore:    nullIntToPtr(row.AwayScore),
		Status:       row.Status,
		Venue:        row.Venue,
		HomeRedCards: row.HomeRedCards,
		AwayRedCards: row.AwayRedCards,
	}
}
