package usecase

import "fmt"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func normalizeLimit(limit, fallback, max int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	}
	if limit == 0 {
		return fallback, nil
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}

// splitPage trims a limit+1 result set. The popped item is the first item
// of the next page, so its id becomes the cursor.
func splitPage[T any](items []T, limit int, idOf func(T) string) ([]T, string) {
	if len(items) <= limit {
		return items, ""
	}
	return items[:limit], idOf(items[limit])
}
