package feedsync

import (
	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/dealstore"
)

// DealView is what the presentation layer renders: server truth with the
// session's unconfirmed vote overlay already applied.
type DealView struct {
	Deal      dealstore.Deal
	Direction Direction
	Score     int
}

// Feed returns the current cached feed, newest first, with overlay deltas
// applied. An empty slice is a valid state, not an error.
func (s *Session) Feed() []DealView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]DealView, 0, len(s.deals))
	for _, deal := range s.deals {
		views = append(views, s.viewLocked(deal))
	}
	return views
}

// SelectedDeal projects one deal for a detail view by looking it up live in
// the cache. ok is false when the deal has vanished since selection, which
// tells the caller to close the view. Because the projection is recomputed
// on every call, background refreshes show up without extra wiring.
func (s *Session) SelectedDeal(dealID uuid.UUID) (DealView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[dealID]
	if !ok {
		return DealView{}, false
	}
	return s.viewLocked(s.deals[idx]), true
}

func (s *Session) viewLocked(deal dealstore.Deal) DealView {
	view := DealView{Deal: deal, Score: deal.VoteScore}
	if entry, ok := s.overlay[deal.ID]; ok {
		view.Direction = entry.direction
		view.Score += entry.delta
	}
	return view
}
