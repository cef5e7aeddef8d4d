package postgres

import (
	"database/sql"
	"time"
)

type predictionTableModel struct {
	ID                 string        `db:"id"`
	UserID             string        `db:"user_id"`
	MatchID            string        `db:"match_id"`
	PredictedHomeScore int           `db:"predicted_home_score"`
	PredictedAwayScore int           `db:"predicted_away_score"`
	Caption            string        `db:"caption"`
	ResultStatus       string        `db:"result_status"`
	PointsAwarded      sql.NullInt32 `db:"points_awarded"`
	SettledAt          sql.NullTime  `db:"settled_at"`
	CreatedAt          time.Time     `db:"created_at"`
}

type predictionInsertModel struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	MatchID            string    `db:"match_id"`
	PredictedHomeScore int       `db:"predicted_home_score"`
	PredictedAwayScore int       `db:"predicted_away_score"`
	Caption            string    `db:"caption"`
	ResultStatus       string    `db:"result_status"`
	CreatedAt          time.Time `db:"created_at"`
}
