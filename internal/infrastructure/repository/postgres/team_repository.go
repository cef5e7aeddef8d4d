package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/team"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

const teamColumns = "id, external_id, name, short_code, logo_url, country_id, reserved_handle, created_at, updated_at"

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	return r.getOne(ctx, "id", strings.TrimSpace(id))
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID int64) (team.Team, bool, error) {
	return r.getOne(ctx, "external_id", externalID)
}

func (r *TeamRepository) getOne(ctx context.Context, column string, value any) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns).From("teams").
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by %s query: %w", column, err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by %s: %w", column, err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) ListByIDs(ctx context.Context, ids []string) ([]team.Team, error) {
	if len(ids) == 0 {
		return []team.Team{}, nil
	}

	query, args, err := qb.Select(teamColumns).From("teams").
		Where(qb.InStrings("id", ids)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by ids query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by ids: %w", err)
	}

	byID := make(map[string]team.Team, len(rows))
	for _, row := range rows {
		byID[row.ID] = teamFromRow(row)
	}
	out := make([]team.Team, 0, len(rows))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *TeamRepository) List(ctx context.Context, listQuery team.ListQuery) ([]team.Team, error) {
	conditions := make([]qb.Condition, 0, 1)
	if cursor := strings.TrimSpace(listQuery.Cursor); cursor != "" {
		conditions = append(conditions, qb.Expr("(name, id) >= (SELECT name, id FROM teams WHERE id = ?)", cursor))
	}

	query, args, err := qb.Select(teamColumns).From("teams").
		Where(conditions...).
		OrderBy("name ASC", "id ASC").
		Limit(fetchLimit(listQuery.Limit, 100)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

// HandleTaken checks both team handles and registered usernames.
func (r *TeamRepository) HandleTaken(ctx context.Context, handle string) (bool, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	if handle == "" {
		return false, nil
	}

	var taken bool
	const query = `SELECT EXISTS (SELECT 1 FROM teams WHERE LOWER(reserved_handle) = $1)
    OR EXISTS (SELECT 1 FROM users WHERE LOWER(username) = $1)`
	if err := r.db.GetContext(ctx, &taken, query, handle); err != nil {
		return false, fmt.Errorf("check handle taken: %w", err)
	}
	return taken, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (team.Team, bool, error) {
	if err := t.Validate(); err != nil {
		return team.Team{}, false, err
	}

	now := time.Now().UTC()
	model := teamInsertModel{
		ID:             t.ID,
		ExternalID:     t.ExternalID,
		Name:           t.Name,
		ShortCode:      t.ShortCode,
		LogoURL:        t.LogoURL,
		CountryID:      nullableInt64(t.CountryID),
		ReservedHandle: t.ReservedHandle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query, args, err := qb.InsertModel("teams", model, "ON CONFLICT (external_id) DO NOTHING RETURNING "+teamColumns)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build insert team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		switch {
		case isNotFound(err):
			existing, found, getErr := r.GetByExternalID(ctx, t.ExternalID)
			if getErr != nil {
				return team.Team{}, false, getErr
			}
			if !found {
				return team.Team{}, false, fmt.Errorf("team external_id=%d vanished after conflict", t.ExternalID)
			}
			return existing, false, nil
		case isUniqueViolation(err, teamsReservedHandleKey):
			return team.Team{}, false, team.ErrHandleTaken
		default:
			return team.Team{}, false, fmt.Errorf("insert team external_id=%d: %w", t.ExternalID, err)
		}
	}
	return teamFromRow(row), true, nil
}

// Update refreshes provider fields. The reserved handle is never rewritten.
func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	query, args, err := qb.Update("teams").
		Set("name", t.Name).
		Set("short_code", t.ShortCode).
		Set("logo_url", t.LogoURL).
		Set("country_id", nullableInt64(t.CountryID)).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", t.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team id=%s: %w", t.ID, err)
	}
	return nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:             row.ID,
		ExternalID:     row.ExternalID,
		Name:           row.Name,
		ShortCode:      row.ShortCode,
		LogoURL:        row.LogoURL,
		CountryID:      nullInt64ToInt64(row.CountryID),
		ReservedHandle: row.ReservedHandle,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}
