package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBadge marks a badge as earned by a user.
type UserBadge struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_badges_user_badge"`
	BadgeID  uuid.UUID `gorm:"column:badge_id;type:uuid;not null;uniqueIndex:idx_user_badges_user_badge"`
	Badge    *Badge    `gorm:"foreignKey:BadgeID"`
	EarnedAt time.Time `gorm:"column:earned_at;autoCreateTime"`
}
