package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/enums"
)

// Event is one change notification pushed to connected clients. Payload holds
// the DTO of the changed entity when one exists; deletions carry only the ids.
type Event struct {
	Type       enums.EventType `json:"type"`
	DealID     uuid.UUID       `json:"deal_id"`
	Payload    any             `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
