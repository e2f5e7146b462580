package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
)

// Repository encapsulates media metadata persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the media row.
func (r *Repository) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// FindByID loads one media row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// Delete removes the media row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Media{}, "id = ?", id).Error
}
