package confirmation

import (
	"context"
	"errors"

	"github.com/akeren/waitlist-funnel/internal/models"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"gorm.io/gorm"
)

// ConfirmationRepository tracks issued tokens for auditing. Token validity is
// decided by the HMAC signature alone, so records here are best-effort.
type ConfirmationRepository interface {
	// CreateRecord stores an issued-token record.
	CreateRecord(ctx context.Context, record *models.ConfirmationRecord) error
	// MarkRecordConfirmed flags the record for a token as used.
	MarkRecordConfirmed(ctx context.Context, token string) error
	// FindRecordByToken retrieves a stored token record.
	FindRecordByToken(ctx context.Context, token string) (*models.ConfirmationRecord, error)
}

type confirmationRepository struct {
	db *gorm.DB
}

func NewConfirmationRepository(db *gorm.DB) ConfirmationRepository {
	return &confirmationRepository{db: db}
}

func (cr *confirmationRepository) CreateRecord(ctx context.Context, record *models.ConfirmationRecord) error {
	if err := cr.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.NewDatabaseError("unable to store confirmation record", err)
	}

	return nil
}

func (cr *confirmationRepository) MarkRecordConfirmed(ctx context.Context, token string) error {
	result := cr.db.WithContext(ctx).
		Model(&models.ConfirmationRecord{}).
		Where("token = ?", token).
		Update("confirmed", true)

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to update confirmation record", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("confirmation record not found", nil)
	}

	return nil
}

func (cr *confirmationRepository) FindRecordByToken(ctx context.Context, token string) (*models.ConfirmationRecord, error) {
	var record models.ConfirmationRecord

	if err := cr.db.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("confirmation record not found", err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch confirmation record", err)
	}

	return &record, nil
}
