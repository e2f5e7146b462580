package enums

// EventType labels the change events pushed over the realtime stream.
type EventType string

const (
	EventDealCreated    EventType = "deal_created"
	EventDealUpdated    EventType = "deal_updated"
	EventDealDeleted    EventType = "deal_deleted"
	EventVoteChanged    EventType = "vote_changed"
	EventCommentCreated EventType = "comment_created"
	EventCommentDeleted EventType = "comment_deleted"
)

func (e EventType) String() string {
	return string(e)
}
