package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fooddealsberlin/backend/pkg/enums"
)

// Profile is the public identity and progression record for a user. The row is
// keyed by the auth provider's user id.
type Profile struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Username           string         `gorm:"column:username;not null;uniqueIndex"`
	AvatarURL          *string        `gorm:"column:avatar_url"`
	LanguagePreference enums.Language `gorm:"column:language_preference;not null;default:en"`
	Level              int            `gorm:"column:level;not null;default:1"`
	XPPoints           int            `gorm:"column:xp_points;not null;default:0"`
	TotalDealsPosted   int            `gorm:"column:total_deals_posted;not null;default:0"`
	TotalMoneySaved    decimal.Decimal `gorm:"column:total_money_saved;type:numeric(10,2);not null;default:0"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
