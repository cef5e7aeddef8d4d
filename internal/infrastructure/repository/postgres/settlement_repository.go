package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/ledger"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

// SettlementRepository commits the PENDING compare-and-set and the ledger
// credit in one transaction.
type SettlementRepository struct {
	db *sqlx.DB
}

func NewSettlementRepository(db *sqlx.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

var _ prediction.Settler = (*SettlementRepository)(nil)

func (r *SettlementRepository) Settle(ctx context.Context, s prediction.Settlement) (bool, error) {
	if !s.Result.Terminal() {
		return false, fmt.Errorf("settle prediction id=%s: result %q is not terminal", s.PredictionID, s.Result)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin settlement tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("predictions").
		Set("result_status", string(s.Result)).
		Set("points_awarded", s.Points).
		Set("settled_at", s.SettledAt.UTC()).
		Where(
			qb.Eq("id", s.PredictionID),
			qb.EqLiteral("result_status", string(prediction.ResultPending)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build settle prediction query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("settle prediction id=%s: %w", s.PredictionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("settle prediction rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := (txLedger{tx: tx}).Increment(ctx, s.UserID, s.Points); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit settlement tx: %w", err)
	}
	return true, nil
}

// txLedger credits points inside a caller-owned transaction.
type txLedger struct {
	tx *sqlx.Tx
}

var _ ledger.Ledger = txLedger{}

func (l txLedger) Increment(ctx context.Context, userID string, delta int) error {
	query, args, err := qb.Update("users").
		SetExpr("total_points", "total_points + ?", delta).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build ledger increment query: %w", err)
	}

	res, err := l.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment ledger user_id=%s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("increment ledger user_id=%s: %w", userID, ledger.ErrAccountNotFound)
	}
	return nil
}
