package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/match"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

const matchColumns = "id, external_id, home_team_id, away_team_id, scheduled_at, venue, league_name, league_external_id, status, home_score, away_score, created_at, updated_at"

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	return r.getOne(ctx, "id", strings.TrimSpace(id))
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID int64) (match.Match, bool, error) {
	return r.getOne(ctx, "external_id", externalID)
}

func (r *MatchRepository) getOne(ctx context.Context, column string, value any) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns).From("matches").
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by %s query: %w", column, err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by %s: %w", column, err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Insert(ctx context.Context, m match.Match) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	model := matchInsertModel{
		ID:               m.ID,
		ExternalID:       m.ExternalID,
		HomeTeamID:       m.HomeTeamID,
		AwayTeamID:       m.AwayTeamID,
		ScheduledAt:      m.ScheduledAt.UTC(),
		Venue:            m.Venue,
		LeagueName:       m.LeagueName,
		LeagueExternalID: nullableInt64(m.LeagueExternalID),
		Status:           string(m.Status),
		HomeScore:        nullableInt(m.HomeScore),
		AwayScore:        nullableInt(m.AwayScore),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	query, args, err := qb.InsertModel("matches", model, "ON CONFLICT (external_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert match external_id=%d: %w", m.ExternalID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert match rows affected: %w", err)
	}
	return affected == 1, nil
}

// Update never touches a row that is already FINISHED.
func (r *MatchRepository) Update(ctx context.Context, m match.Match) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}

	query, args, err := qb.Update("matches").
		Set("scheduled_at", m.ScheduledAt.UTC()).
		Set("venue", m.Venue).
		Set("league_name", m.LeagueName).
		Set("league_external_id", nullableInt64(m.LeagueExternalID)).
		Set("status", string(m.Status)).
		Set("home_score", nullableInt(m.HomeScore)).
		Set("away_score", nullableInt(m.AwayScore)).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("id", m.ID),
			qb.InStrings("status", replaceableStatuses(m.Status)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update match id=%s: %w", m.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update match rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *MatchRepository) List(ctx context.Context, listQuery match.ListQuery) ([]match.Match, error) {
	conditions := make([]qb.Condition, 0, 2)
	if listQuery.Status != nil {
		conditions = append(conditions, qb.Eq("status", string(*listQuery.Status)))
	}
	if cursor := strings.TrimSpace(listQuery.Cursor); cursor != "" {
		conditions = append(conditions, qb.Expr("(scheduled_at, id) >= (SELECT scheduled_at, id FROM matches WHERE id = ?)", cursor))
	}

	query, args, err := qb.Select(matchColumns).From("matches").
		Where(conditions...).
		OrderBy("scheduled_at ASC", "id ASC").
		Limit(fetchLimit(listQuery.Limit, 100)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}
	return r.selectMatches(ctx, "list matches", query, args)
}

func (r *MatchRepository) ListUpcoming(ctx context.Context, from, to time.Time, limit int) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns).From("matches").
		Where(
			qb.EqLiteral("status", string(match.StatusScheduled)),
			qb.Gt("scheduled_at", from.UTC()),
			qb.Lte("scheduled_at", to.UTC()),
		).
		OrderBy("scheduled_at ASC", "id ASC").
		Limit(fetchLimit(limit, 100)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list upcoming matches query: %w", err)
	}
	return r.selectMatches(ctx, "list upcoming matches", query, args)
}

func (r *MatchRepository) ListSettleable(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns).From("matches m").
		Where(
			qb.EqLiteral("m.status", string(match.StatusFinished)),
			qb.IsNotNull("m.home_score"),
			qb.IsNotNull("m.away_score"),
			qb.Expr("EXISTS (SELECT 1 FROM predictions p WHERE p.match_id = m.id AND p.result_status = 'PENDING')"),
		).
		OrderBy("m.scheduled_at ASC", "m.id ASC").
		Limit(fetchLimit(limit, 200)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list settleable matches query: %w", err)
	}
	return r.selectMatches(ctx, "list settleable matches", query, args)
}

func (r *MatchRepository) selectMatches(ctx context.Context, op, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:               row.ID,
		ExternalID:       row.ExternalID,
		HomeTeamID:       row.HomeTeamID,
		AwayTeamID:       row.AwayTeamID,
		ScheduledAt:      row.ScheduledAt.UTC(),
		Venue:            row.Venue,
		LeagueName:       row.LeagueName,
		LeagueExternalID: nullInt64ToInt64(row.LeagueExternalID),
		Status:           match.Status(row.Status),
		HomeScore:        nullInt32ToIntPtr(row.HomeScore),
		AwayScore:        nullInt32ToIntPtr(row.AwayScore),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func replaceableStatuses(s match.Status) []string {
	allowed := match.ReplaceableStatuses(s)
	out := make([]string, len(allowed))
	for i, st := range allowed {
		out[i] = string(st)
	}
	return out
}
