//go:generate go run go.uber.org/mock/mockgen -source=profile_repository.go -destination=../mocks/mock_profile_repository.go -package=mocks
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gamelounge/domain"
	errs "gamelounge/errors"
)

type IProfileRepository interface {
	Get(ctx context.Context, userID string) (domain.DisplayIdentity, error)
	Upsert(ctx context.Context, identity domain.DisplayIdentity) error
}

// ProfileRepository serves display-identity hydration. It may be slow or
// unavailable; callers treat the result as optional decoration.
type ProfileRepository struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewProfileRepository(db *gorm.DB, log *slog.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, log: log}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (domain.DisplayIdentity, error) {
	var row ProfileRow
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DisplayIdentity{}, fmt.Errorf("%w: profile %s", errs.ErrNotFound, userID)
		}
		return domain.DisplayIdentity{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return domain.DisplayIdentity{
		UserID:     row.UserID,
		Username:   row.Username,
		AvatarURL:  row.AvatarURL,
		RoleBadges: row.RoleBadges,
	}, nil
}

// Upsert is used by the portal's profile sync, not by the messaging
// pipeline itself.
func (r *ProfileRepository) Upsert(ctx context.Context, identity domain.DisplayIdentity) error {
	row := ProfileRow{
		UserID:     identity.UserID,
		Username:   identity.Username,
		AvatarURL:  identity.AvatarURL,
		RoleBadges: identity.RoleBadges,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return nil
}
