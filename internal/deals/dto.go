package deals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
)

// DealDTO is the deal payload returned on feed and detail reads.
type DealDTO struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	Title              string           `json:"title"`
	Description        *string          `json:"description,omitempty"`
	RestaurantName     string           `json:"restaurant_name"`
	Address            string           `json:"address"`
	Latitude           float64          `json:"latitude"`
	Longitude          float64          `json:"longitude"`
	DealPrice          decimal.Decimal  `json:"deal_price"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercentage *int             `json:"discount_percentage,omitempty"`
	CuisineType        string           `json:"cuisine_type"`
	DealType           string           `json:"deal_type"`
	DietaryTags        []string         `json:"dietary_tags"`
	ImageURL           *string          `json:"image_url,omitempty"`
	Upvotes            int              `json:"upvotes"`
	Downvotes          int              `json:"downvotes"`
	VoteScore          int              `json:"vote_score"`
	IsActive           bool             `json:"is_active"`
	ExpiresAt          *time.Time       `json:"expires_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// AuthorDTO surfaces limited profile data on deal detail responses.
type AuthorDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Level     int       `json:"level"`
}

// DealDetailDTO is the detail payload including the author summary.
type DealDetailDTO struct {
	Deal   DealDTO    `json:"deal"`
	Author *AuthorDTO `json:"author,omitempty"`
}

// FeedPagination carries cursor metadata alongside a feed page.
type FeedPagination struct {
	Total   int    `json:"total"`
	Current string `json:"current,omitempty"`
	Next    string `json:"next,omitempty"`
}

// FeedPageDTO is one cursor page of the deal feed.
type FeedPageDTO struct {
	Items      []DealDTO      `json:"items"`
	Pagination FeedPagination `json:"pagination"`
}

// CreateDealInput is the validated payload for posting a deal.
type CreateDealInput struct {
	Title          string           `json:"title" validate:"required,min=3,max=120"`
	Description    *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	RestaurantName string           `json:"restaurant_name" validate:"required,min=2,max=120"`
	Address        string           `json:"address" validate:"required,min=5,max=255"`
	Latitude       *float64         `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64         `json:"longitude,omitempty" validate:"omitempty,longitude"`
	DealPrice      decimal.Decimal  `json:"deal_price" validate:"required"`
	OriginalPrice  *decimal.Decimal `json:"original_price,omitempty"`
	CuisineType    string           `json:"cuisine_type" validate:"required"`
	DealType       string           `json:"deal_type" validate:"required"`
	DietaryTags    []string         `json:"dietary_tags,omitempty" validate:"omitempty,max=10,dive,min=2,max=30"`
	ImageURL       *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// UpdateDealInput carries partial owner edits. Nil fields are left untouched.
type UpdateDealInput struct {
	Title          *string          `json:"title,omitempty" validate:"omitempty,min=3,max=120"`
	Description    *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	RestaurantName *string          `json:"restaurant_name,omitempty" validate:"omitempty,min=2,max=120"`
	DealPrice      *decimal.Decimal `json:"deal_price,omitempty"`
	OriginalPrice  *decimal.Decimal `json:"original_price,omitempty"`
	DealType       *string          `json:"deal_type,omitempty"`
	DietaryTags    *[]string        `json:"dietary_tags,omitempty" validate:"omitempty,max=10,dive,min=2,max=30"`
	ImageURL       *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// FeedSort selects the feed ordering.
type FeedSort string

const (
	// SortNewest orders by creation time descending.
	SortNewest FeedSort = "newest"
	// SortTop orders by vote score descending, creation time as tiebreak.
	SortTop FeedSort = "top"
)

// GeoFilter restricts the feed to deals within a radius of a point.
type GeoFilter struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// FeedFilters are the optional feed query constraints.
type FeedFilters struct {
	MaxPrice    *decimal.Decimal
	Cuisines    []enums.CuisineType
	DealTypes   []enums.DealType
	DietaryTags []string
	Near        *GeoFilter
}

// NewDealDTO maps the persisted model onto the response payload.
func NewDealDTO(deal *models.Deal) DealDTO {
	return DealDTO{
		ID:                 deal.ID,
		UserID:             deal.UserID,
		Title:              deal.Title,
		Description:        deal.Description,
		RestaurantName:     deal.RestaurantName,
		Address:            deal.Address,
		Latitude:           deal.Latitude,
		Longitude:          deal.Longitude,
		DealPrice:          deal.DealPrice,
		OriginalPrice:      deal.OriginalPrice,
		DiscountPercentage: deal.DiscountPercentage,
		CuisineType:        deal.CuisineType.String(),
		DealType:           deal.DealType.String(),
		DietaryTags:        append([]string{}, deal.DietaryTags...),
		ImageURL:           deal.ImageURL,
		Upvotes:            deal.Upvotes,
		Downvotes:          deal.Downvotes,
		VoteScore:          deal.VoteScore,
		IsActive:           deal.IsActive,
		ExpiresAt:          deal.ExpiresAt,
		CreatedAt:          deal.CreatedAt,
		UpdatedAt:          deal.UpdatedAt,
	}
}

// NewAuthorDTO maps a profile row onto the author summary.
func NewAuthorDTO(profile *models.Profile) *AuthorDTO {
	if profile == nil {
		return nil
	}
	return &AuthorDTO{
		ID:        profile.ID,
		Username:  profile.Username,
		AvatarURL: profile.AvatarURL,
		Level:     profile.Level,
	}
}
