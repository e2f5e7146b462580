package profiles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fooddealsberlin/backend/pkg/db/models"
)

// XPPerDeal is the experience credited for every posted deal.
const XPPerDeal = 25

// ProfileDTO is the full profile payload returned to its owner.
type ProfileDTO struct {
	ID                 uuid.UUID       `json:"id"`
	Username           string          `json:"username"`
	AvatarURL          *string         `json:"avatar_url,omitempty"`
	LanguagePreference string          `json:"language_preference"`
	Level              int             `json:"level"`
	XPPoints           int             `json:"xp_points"`
	TotalDealsPosted   int             `json:"total_deals_posted"`
	TotalMoneySaved    decimal.Decimal `json:"total_money_saved"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PublicProfileDTO is the reduced payload other users see.
type PublicProfileDTO struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	AvatarURL        *string   `json:"avatar_url,omitempty"`
	Level            int       `json:"level"`
	TotalDealsPosted int       `json:"total_deals_posted"`
	CreatedAt        time.Time `json:"created_at"`
}

// UpdateProfileInput carries partial profile edits. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	Username           *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	AvatarURL          *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	LanguagePreference *string `json:"language_preference,omitempty" validate:"omitempty,oneof=en de"`
}

// BadgeDTO is one badge definition.
type BadgeDTO struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	IconName         string    `json:"icon_name"`
	RequirementType  string    `json:"requirement_type"`
	RequirementValue int       `json:"requirement_value"`
}

// UserBadgeDTO is one unlocked badge on a profile.
type UserBadgeDTO struct {
	Badge    BadgeDTO  `json:"badge"`
	EarnedAt time.Time `json:"earned_at"`
}

// NewProfileDTO maps the persisted model onto the owner payload.
func NewProfileDTO(profile *models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:                 profile.ID,
		Username:           profile.Username,
		AvatarURL:          profile.AvatarURL,
		LanguagePreference: profile.LanguagePreference.String(),
		Level:              profile.Level,
		XPPoints:           profile.XPPoints,
		TotalDealsPosted:   profile.TotalDealsPosted,
		TotalMoneySaved:    profile.TotalMoneySaved,
		CreatedAt:          profile.CreatedAt,
	}
}

// NewPublicProfileDTO maps the persisted model onto the public payload.
func NewPublicProfileDTO(profile *models.Profile) PublicProfileDTO {
	return PublicProfileDTO{
		ID:               profile.ID,
		Username:         profile.Username,
		AvatarURL:        profile.AvatarURL,
		Level:            profile.Level,
		TotalDealsPosted: profile.TotalDealsPosted,
		CreatedAt:        profile.CreatedAt,
	}
}

// NewBadgeDTO maps a badge definition onto the response payload.
func NewBadgeDTO(badge *models.Badge) BadgeDTO {
	return BadgeDTO{
		ID:               badge.ID,
		Name:             badge.Name,
		Description:      badge.Description,
		IconName:         badge.IconName,
		RequirementType:  badge.RequirementType.String(),
		RequirementValue: badge.RequirementValue,
	}
}
