package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

const (
	uniqueViolation = pq.ErrorCode("23505")

	predictionsUserMatchKey = "predictions_user_match_key"
	teamsReservedHandleKey  = "teams_reserved_handle_key"
	teamsExternalIDKey      = "teams_external_id_key"
	usersUsernameKey        = "users_username_lower_key"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports a 23505 error, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nullableInt64(value int64) *int64 {
	if value <= 0 {
		return nil
	}
	return &value
}

func nullableInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func nullableTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	v := value.UTC()
	return &v
}

func nullInt64ToInt64(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

func nullStringToString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullInt32ToIntPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int32)
	return &out
}

func nullTimeToPtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time.UTC()
	return &out
}

// fetchLimit clamps non-positive limits so callers never issue unbounded scans.
func fetchLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
