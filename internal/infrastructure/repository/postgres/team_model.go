package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID             string        `db:"id"`
	ExternalID     int64         `db:"external_id"`
	Name           string        `db:"name"`
	ShortCode      string        `db:"short_code"`
	LogoURL        string        `db:"logo_url"`
	CountryID      sql.NullInt64 `db:"country_id"`
	ReservedHandle string        `db:"reserved_handle"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

type teamInsertModel struct {
	ID             string    `db:"id"`
	ExternalID     int64     `db:"external_id"`
	Name           string    `db:"name"`
	ShortCode      string    `db:"short_code"`
	LogoURL        string    `db:"logo_url"`
	CountryID      *int64    `db:"country_id"`
	ReservedHandle string    `db:"reserved_handle"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
