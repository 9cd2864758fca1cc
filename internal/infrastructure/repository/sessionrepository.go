package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/infrastructure/persistence/mappers"
	"github.com/entry-inc/entry/internal/infrastructure/persistence/models"
	"github.com/entry-inc/entry/internal/shared/errors"
)

type SessionRepository struct {
	db     *gorm.DB
	mapper mappers.SessionMapper
}

func NewSessionRepository(db *gorm.DB) user.SessionRepository {
	return &SessionRepository{
		db:     db,
		mapper: mappers.NewSessionMapper(),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *user.Session) error {
	model := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*user.Session, error) {
	var model models.SessionModel
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("session not found")
		}
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *SessionRepository) GetActiveByUserID(ctx context.Context, userID uint) ([]*user.Session, error) {
	var sessionModels []models.SessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, time.Now().UTC()).
		Order("created_at DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by user ID: %w", err)
	}

	sessions := make([]*user.Session, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = r.mapper.ToDomain(&sessionModels[i])
	}
	return sessions, nil
}

// Revoke flips a live record to revoked with a single conditional UPDATE.
// RowsAffected tells whether this call won the flip: a concurrent rotation
// that lost the race observes false and must treat the token as reused.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("id = ? AND is_revoked = ?", sessionID, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to revoke session: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke sessions by user ID: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.SessionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
