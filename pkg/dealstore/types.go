package dealstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fooddealsberlin/backend/pkg/enums"
)

// Deal is the wire shape of a deal as served by the feed and detail endpoints.
type Deal struct {
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

// Author is the poster summary attached to a deal detail.
type Author struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Level     int       `json:"level"`
}

// DealDetail pairs a deal with its author summary.
type DealDetail struct {
	Deal   Deal    `json:"deal"`
	Author *Author `json:"author,omitempty"`
}

// FeedPagination carries cursor state for a feed page.
type FeedPagination struct {
	Total   int    `json:"total"`
	Current string `json:"current,omitempty"`
	Next    string `json:"next,omitempty"`
}

// FeedPage is one page of the deal feed.
type FeedPage struct {
	Items      []Deal         `json:"items"`
	Pagination FeedPagination `json:"pagination"`
}

// FeedQuery narrows and pages the feed listing.
type FeedQuery struct {
	Limit        int
	Cursor       string
	Sort         string
	MaxPrice     *decimal.Decimal
	Cuisines     []string
	DealTypes    []string
	DietaryTags  []string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters *float64
}

// CreateDealRequest is the payload for posting a deal.
type CreateDealRequest struct {
	Title          string           `json:"title"`
	Description    *string          `json:"description,omitempty"`
	RestaurantName string           `json:"restaurant_name"`
	Address        string           `json:"address"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	DealPrice      decimal.Decimal  `json:"deal_price"`
	OriginalPrice  *decimal.Decimal `json:"original_price,omitempty"`
	CuisineType    string           `json:"cuisine_type"`
	DealType       string           `json:"deal_type"`
	DietaryTags    []string         `json:"dietary_tags,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// UpdateDealRequest is the partial payload for editing an owned deal.
type UpdateDealRequest struct {
	Title          *string          `json:"title,omitempty"`
	Description    *string          `json:"description,omitempty"`
	RestaurantName *string          `json:"restaurant_name,omitempty"`
	DealPrice      *decimal.Decimal `json:"deal_price,omitempty"`
	OriginalPrice  *decimal.Decimal `json:"original_price,omitempty"`
	DealType       *string          `json:"deal_type,omitempty"`
	DietaryTags    *[]string        `json:"dietary_tags,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// Vote is one of the session user's recorded votes.
type Vote struct {
	DealID    uuid.UUID `json:"deal_id"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteResult is the server's answer to a vote cast, carrying fresh aggregates.
type VoteResult struct {
	DealID    uuid.UUID `json:"deal_id"`
	Action    string    `json:"action"`
	Direction *string   `json:"direction,omitempty"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	VoteScore int       `json:"vote_score"`
}

// Comment is one comment on a deal thread.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	DealID    uuid.UUID `json:"deal_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentsPage is one page of a deal's comment thread, oldest first.
type CommentsPage struct {
	Items []Comment `json:"items"`
	Next  string    `json:"next,omitempty"`
	Total int       `json:"total"`
}

// Profile is the session user's own profile view.
type Profile struct {
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

// PublicProfile is the reduced view served for other users.
type PublicProfile struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	AvatarURL        *string   `json:"avatar_url,omitempty"`
	Level            int       `json:"level"`
	TotalDealsPosted int       `json:"total_deals_posted"`
	CreatedAt        time.Time `json:"created_at"`
}

// UpdateProfileRequest edits the session user's profile.
type UpdateProfileRequest struct {
	Username           *string `json:"username,omitempty"`
	AvatarURL          *string `json:"avatar_url,omitempty"`
	LanguagePreference *string `json:"language_preference,omitempty"`
}

// Badge describes an unlockable badge definition.
type Badge struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	IconName         string    `json:"icon_name"`
	RequirementType  string    `json:"requirement_type"`
	RequirementValue int       `json:"requirement_value"`
}

// UserBadge is an earned badge with its timestamp.
type UserBadge struct {
	Badge    Badge     `json:"badge"`
	EarnedAt time.Time `json:"earned_at"`
}

// Media is the stored upload record returned after a successful upload.
type Media struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	GCSKey    string    `json:"gcs_key"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// GeocodeResult is the resolved location for a free-text address.
type GeocodeResult struct {
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// Event is a change notification pushed over the websocket stream.
type Event struct {
	Type       enums.EventType `json:"type"`
	DealID     uuid.UUID       `json:"deal_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
