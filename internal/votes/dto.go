package votes

import (
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/db/models"
)

// VoteAction labels what a cast actually did to the stored row.
type VoteAction string

const (
	ActionInserted  VoteAction = "inserted"
	ActionUpdated   VoteAction = "updated"
	ActionRetracted VoteAction = "retracted"
)

// CastVoteInput is the request body for the vote endpoint.
type CastVoteInput struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// VoteDTO is one standing vote row, returned by the bulk lookup.
type VoteDTO struct {
	DealID    uuid.UUID `json:"deal_id"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteResultDTO reports the outcome of a cast together with fresh aggregate
// counts so clients can drop their optimistic overlay.
type VoteResultDTO struct {
	DealID    uuid.UUID  `json:"deal_id"`
	Action    VoteAction `json:"action"`
	Direction *string    `json:"direction,omitempty"`
	Upvotes   int        `json:"upvotes"`
	Downvotes int        `json:"downvotes"`
	VoteScore int        `json:"vote_score"`
}

// NewVoteDTO maps a persisted vote row onto the response payload.
func NewVoteDTO(vote *models.Vote) VoteDTO {
	return VoteDTO{
		DealID:    vote.DealID,
		Direction: vote.VoteType.String(),
		CreatedAt: vote.CreatedAt,
	}
}
