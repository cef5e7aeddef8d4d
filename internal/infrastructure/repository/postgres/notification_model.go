package postgres

import (
	"database/sql"
	"time"
)

type notificationTableModel struct {
	ID           string         `db:"id"`
	RecipientID  string         `db:"recipient_id"`
	Kind         string         `db:"kind"`
	Message      string         `db:"message"`
	PredictionID sql.NullString `db:"prediction_id"`
	IsRead       bool           `db:"is_read"`
	CreatedAt    time.Time      `db:"created_at"`
}

type notificationInsertModel struct {
	ID           string    `db:"id"`
	RecipientID  string    `db:"recipient_id"`
	Kind         string    `db:"kind"`
	Message      string    `db:"message"`
	PredictionID *string   `db:"prediction_id"`
	IsRead       bool      `db:"is_read"`
	CreatedAt    time.Time `db:"created_at"`
}
