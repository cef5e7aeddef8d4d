package postgres

import (
	"database/sql"
	"time"
)

type userTableModel struct {
	ID              string         `db:"id"`
	Username        string         `db:"username"`
	DisplayName     string         `db:"display_name"`
	AvatarURL       string         `db:"avatar_url"`
	IsVerified      bool           `db:"is_verified"`
	TotalPoints     int            `db:"total_points"`
	PredictionCount int            `db:"prediction_count"`
	Email           sql.NullString `db:"email"`
	CreatedAt       time.Time      `db:"created_at"`
}

type userInsertModel struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Email     *string   `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
