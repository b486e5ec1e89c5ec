package postgres

import (
	"context"

	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/errors"

	"gorm.io/gorm"
)

type healthChecker struct {
	db *gorm.DB
}

// NewHealthChecker returns a probe that round-trips a trivial query.
func NewHealthChecker(db *gorm.DB) repository.HealthChecker {
	return &healthChecker{db: db}
}

func (h *healthChecker) Ping(ctx context.Context) error {
	var one int
	if err := h.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "health probe failed")
	}
	if one != 1 {
		return domainerrors.NewDatabaseExecuteError(errors.Errorf("unexpected probe result %d", one), "health probe failed")
	}

	return nil
}
