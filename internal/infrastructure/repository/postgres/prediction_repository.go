package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

const predictionColumns = "id, user_id, match_id, predicted_home_score, predicted_away_score, caption, result_status, points_awarded, settled_at, created_at"

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, p prediction.Prediction) error {
	if err := p.Validate(); err != nil {
		return err
	}

	createdAt := p.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := predictionInsertModel{
		ID:                 p.ID,
		UserID:             p.UserID,
		MatchID:            p.MatchID,
		PredictedHomeScore: p.PredictedHomeScore,
		PredictedAwayScore: p.PredictedAwayScore,
		Caption:            p.Caption,
		ResultStatus:       string(prediction.ResultPending),
		CreatedAt:          createdAt,
	}

	query, args, err := qb.InsertModel("predictions", model, "")
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, predictionsUserMatchKey) {
			return prediction.ErrDuplicate
		}
		return fmt.Errorf("insert prediction user_id=%s match_id=%s: %w", p.UserID, p.MatchID, err)
	}
	return nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, id string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select(predictionColumns).From("predictions").
		Where(qb.Eq("id", strings.TrimSpace(id))).
		Limit(1).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build select prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("select prediction: %w", err)
	}
	return predictionFromRow(row), true, nil
}

// List is newest first. The cursor row is included in the page.
func (r *PredictionRepository) List(ctx context.Context, listQuery prediction.ListQuery) ([]prediction.Prediction, error) {
	conditions := make([]qb.Condition, 0, 3)
	if listQuery.MatchID != "" {
		conditions = append(conditions, qb.Eq("match_id", listQuery.MatchID))
	}
	if listQuery.UserID != "" {
		conditions = append(conditions, qb.Eq("user_id", listQuery.UserID))
	}
	if cursor := strings.TrimSpace(listQuery.Cursor); cursor != "" {
		conditions = append(conditions, qb.Expr("(created_at, id) <= (SELECT created_at, id FROM predictions WHERE id = ?)", cursor))
	}

	query, args, err := qb.Select(predictionColumns).From("predictions").
		Where(conditions...).
		OrderBy("created_at DESC", "id DESC").
		Limit(fetchLimit(listQuery.Limit, 101)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}
	return r.selectPredictions(ctx, "list predictions", query, args)
}

func (r *PredictionRepository) ListPendingByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns).From("predictions").
		Where(
			qb.Eq("match_id", matchID),
			qb.EqLiteral("result_status", string(prediction.ResultPending)),
		).
		OrderBy("created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending predictions query: %w", err)
	}
	return r.selectPredictions(ctx, "list pending predictions", query, args)
}

func (r *PredictionRepository) selectPredictions(ctx context.Context, op, query string, args []any) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:                 row.ID,
		UserID:             row.UserID,
		MatchID:            row.MatchID,
		PredictedHomeScore: row.PredictedHomeScore,
		PredictedAwayScore: row.PredictedAwayScore,
		Caption:            row.Caption,
		ResultStatus:       prediction.ResultStatus(row.ResultStatus),
		PointsAwarded:      nullInt32ToIntPtr(row.PointsAwarded),
		SettledAt:          nullTimeToPtr(row.SettledAt),
		CreatedAt:          row.CreatedAt.UTC(),
	}
}
