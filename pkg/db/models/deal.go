package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fooddealsberlin/backend/pkg/enums"
)

// Deal represents a time-bounded restaurant offer on the feed.
type Deal struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Title              string           `gorm:"column:title;not null"`
	Description        *string          `gorm:"column:description"`
	RestaurantName     string           `gorm:"column:restaurant_name;not null"`
	Address            string           `gorm:"column:address;not null"`
	Latitude           float64          `gorm:"column:latitude;type:numeric(9,6);not null"`
	Longitude          float64          `gorm:"column:longitude;type:numeric(9,6);not null"`
	DealPrice          decimal.Decimal  `gorm:"column:deal_price;type:numeric(10,2);not null"`
	OriginalPrice      *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	DiscountPercentage *int             `gorm:"column:discount_percentage"`
	CuisineType        enums.CuisineType `gorm:"column:cuisine_type;not null"`
	DealType           enums.DealType   `gorm:"column:deal_type;not null"`
	DietaryTags        pq.StringArray   `gorm:"column:dietary_tags;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURL           *string          `gorm:"column:image_url"`
	Upvotes            int              `gorm:"column:upvotes;not null;default:0"`
	Downvotes          int              `gorm:"column:downvotes;not null;default:0"`
	VoteScore          int              `gorm:"column:vote_score;not null;default:0"`
	IsActive           bool             `gorm:"column:is_active;not null;default:true"`
	ExpiresAt          *time.Time       `gorm:"column:expires_at"`
	Comments           []Comment        `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	Votes              []Vote           `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Expired reports whether the deal's expiry has passed at the given instant.
func (d Deal) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}
