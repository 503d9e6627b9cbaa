package signup

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/waitlist-funnel/internal/models"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"gorm.io/gorm"
)

type SignupRepository interface {
	// CreateEntry persists a new waitlist entry to the database.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// FindEntryByEmail retrieves a waitlist entry by its normalized email.
	FindEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	// NextPosition atomically increments the position counter and returns
	// the new value. Positions are never reused, even across failed signups.
	NextPosition(ctx context.Context) (int, error)
	// CountEntries returns the number of waitlist entries. Display use only;
	// positions come from NextPosition.
	CountEntries(ctx context.Context) (int64, error)
	// RecordEmailSent bumps the sent counter and timestamp for an entry.
	RecordEmailSent(ctx context.Context, email string, sentAt time.Time) error
	// MarkConfirmed flags the entry for the given email as confirmed.
	MarkConfirmed(ctx context.Context, email string) error
}

type signupRepository struct {
	db *gorm.DB
}

func NewSignupRepository(db *gorm.DB) SignupRepository {
	return &signupRepository{db: db}
}

func (sr *signupRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := sr.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("waitlist entry with this email already exists", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return entry, nil
}

func (sr *signupRepository) FindEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	if err := sr.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("waitlist entry not found", err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch waitlist entry", err)
	}

	return &entry, nil
}

func (sr *signupRepository) NextPosition(ctx context.Context) (int, error) {
	var position int

	// Single-statement increment so concurrent signups can never observe the
	// same position. RETURNING is supported by postgres and modern sqlite.
	err := sr.db.WithContext(ctx).Raw(
		"UPDATE waitlist_counters SET count = count + 1, last_updated = ? WHERE id = ? RETURNING count",
		time.Now(), models.CounterID,
	).Scan(&position).Error
	if err != nil {
		return 0, apperrors.NewDatabaseError("unable to advance position counter", err)
	}

	if position == 0 {
		return 0, apperrors.NewDatabaseError("position counter row is missing; run migrations", nil)
	}

	return position, nil
}

func (sr *signupRepository) CountEntries(ctx context.Context) (int64, error) {
	var count int64

	if err := sr.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	return count, nil
}

func (sr *signupRepository) RecordEmailSent(ctx context.Context, email string, sentAt time.Time) error {
	result := sr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"emails_sent":     gorm.Expr("emails_sent + 1"),
			"last_email_sent": sentAt,
		})

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to record sent email", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("waitlist entry not found", nil)
	}

	return nil
}

func (sr *signupRepository) MarkConfirmed(ctx context.Context, email string) error {
	result := sr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ?", email).
		Update("confirmed", true)

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to mark entry confirmed", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("waitlist entry not found", nil)
	}

	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
