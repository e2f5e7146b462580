package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a user remark attached to a deal.
type Comment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID    uuid.UUID `gorm:"column:deal_id;type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Content   string    `gorm:"column:content;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
