package aggregates

import (
	"strings"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
)

// RequireCASSuccess turns a lost compare-and-set into a conflict.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}

// RequireFound reports a nil row as not_found. Repos return nil, nil for
// absent rows, so this is where absence becomes an error.
func RequireFound[T any](row *T, op, message string) error {
	if row != nil {
		return nil
	}
	return domainagg.NewError(domainagg.CodeNotFound, op, message, nil)
}
