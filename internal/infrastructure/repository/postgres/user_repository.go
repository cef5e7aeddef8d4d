package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/user"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

const userColumns = `u.id, u.username, u.display_name, u.avatar_url, u.is_verified, u.total_points, u.email, u.created_at,
    (SELECT COUNT(*) FROM predictions p WHERE p.user_id = u.id) AS prediction_count`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns).From("users u").
		Where(qb.Eq("u.id", strings.TrimSpace(id))).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build select user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("select user: %w", err)
	}
	return userFromRow(row), true, nil
}

// EnsureExists inserts a placeholder username derived from the id.
func (r *UserRepository) EnsureExists(ctx context.Context, principal user.Principal) error {
	userID := strings.TrimSpace(principal.UserID)
	if userID == "" {
		return fmt.Errorf("principal user id is required")
	}

	now := time.Now().UTC()
	model := userInsertModel{
		ID:        userID,
		Username:  "user-" + userID,
		Email:     optionalString(strings.TrimSpace(principal.Email)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query, args, err := qb.InsertModel("users", model, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build ensure user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, usersUsernameKey) {
			return fmt.Errorf("ensure user id=%s: username already registered: %w", userID, err)
		}
		return fmt.Errorf("ensure user id=%s: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) ListTopPredictors(ctx context.Context, limit int) ([]user.User, error) {
	query, args, err := qb.Select(userColumns).From("users u").
		Where(qb.Gt("u.total_points", 0)).
		OrderBy("u.total_points DESC", "u.id ASC").
		Limit(fetchLimit(limit, 50)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list top predictors query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list top predictors: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:              row.ID,
		Username:        row.Username,
		DisplayName:     row.DisplayName,
		AvatarURL:       row.AvatarURL,
		IsVerified:      row.IsVerified,
		TotalPoints:     row.TotalPoints,
		PredictionCount: row.PredictionCount,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}
