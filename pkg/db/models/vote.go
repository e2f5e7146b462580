package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/enums"
)

// Vote records a single user's standing vote on a deal. A user holds at most
// one row per deal; retracting a vote deletes the row.
type Vote struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID    uuid.UUID           `gorm:"column:deal_id;type:uuid;not null;uniqueIndex:idx_votes_deal_user"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_votes_deal_user"`
	VoteType  enums.VoteDirection `gorm:"column:vote_type;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
