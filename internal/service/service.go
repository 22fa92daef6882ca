package service

import (
	"errors"
	"strings"

	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page is offset pagination for list queries.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// normalizeLabel trims and lower-cases an open category or activity type.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// lookupError maps a gorm lookup failure to the error taxonomy.
func lookupError(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Persistence("failed to load "+what, err)
}
