package profiles

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
)

// Repository encapsulates profile and badge persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profile repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads one profile.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts the profile row.
func (r *Repository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Update persists the full profile row.
func (r *Repository) Update(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// BumpDealStats applies one posted deal to the author's counters inside a
// transaction and returns the updated row. The level is recomputed from the
// new XP total.
func (r *Repository) BumpDealStats(ctx context.Context, userID uuid.UUID, moneySaved decimal.Decimal) (*models.Profile, error) {
	var updated models.Profile

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.First(&profile, "id = ?", userID).Error; err != nil {
			return err
		}

		profile.XPPoints += XPPerDeal
		profile.TotalDealsPosted++
		profile.TotalMoneySaved = profile.TotalMoneySaved.Add(moneySaved)
		profile.Level = levelForXP(profile.XPPoints)

		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListBadges returns all badge definitions ordered by their threshold.
func (r *Repository) ListBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).
		Order("requirement_value ASC").
		Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

// ListUserBadges returns the badges a user has earned, newest first, with the
// definitions preloaded.
func (r *Repository) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	var earned []models.UserBadge
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error; err != nil {
		return nil, err
	}
	return earned, nil
}

// AwardBadge records an unlock and ignores duplicates.
func (r *Repository) AwardBadge(ctx context.Context, userID, badgeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO user_badges (id, user_id, badge_id, earned_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, badge_id) DO NOTHING`, uuid.New(), userID, badgeID).
		Error
}

// levelForXP derives the display level from total experience.
func levelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/100 + 1
}
