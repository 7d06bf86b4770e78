package repository

import (
	"context"
	"time"

	"gatekeep-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlacklistRepository stores revoked refresh-token fingerprints in
// postgres. Expired rows are dropped by DeleteExpired, which the scheduler
// runs periodically; Contains filters on expiry so a stale row that has not
// been swept yet never resurrects a token.
type BlacklistRepository struct {
	db *gorm.DB
}

func NewBlacklistRepository(db *gorm.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// Add records a fingerprint. Inserting the same fingerprint twice is a
// no-op, which makes revocation idempotent for callers.
func (r *BlacklistRepository) Add(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	entry := &models.BlacklistedToken{
		TokenHash: fingerprint,
		ExpiresAt: expiresAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)

	if result.Error != nil {
		log.Error().Err(result.Error).Msg("Failed to blacklist token")
		return result.Error
	}
	return nil
}

func (r *BlacklistRepository) Contains(ctx context.Context, fingerprint string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.BlacklistedToken{}).
		Where("token_hash = ? AND expires_at > ?", fingerprint, time.Now()).
		Count(&count)

	if result.Error != nil {
		log.Error().Err(result.Error).Msg("Failed to check token blacklist")
		return false, result.Error
	}
	return count > 0, nil
}

// DeleteExpired removes entries whose tokens have already expired on their
// own.
func (r *BlacklistRepository) DeleteExpired(ctx context.Context) error {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.BlacklistedToken{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Debug().Int64("count", result.RowsAffected).Msg("Swept expired blacklist entries")
	}
	return nil
}
