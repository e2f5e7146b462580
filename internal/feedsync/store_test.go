package feedsync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/dealstore"
)

// fakeStore mimics the remote API: cast votes mutate its deal aggregates the
// same way the server does, and tests can override individual calls to
// inject failures, blocking, or racing responses.
type fakeStore struct {
	mu    sync.Mutex
	deals []dealstore.Deal
	votes map[uuid.UUID]string

	listFn  func(ctx context.Context) (*dealstore.FeedPage, error)
	castFn  func(dealID uuid.UUID, direction string) (*dealstore.VoteResult, error)
	watchFn func(ctx context.Context) (<-chan dealstore.Event, error)

	events  chan dealstore.Event
	listErr error
}

func newFakeStore(deals ...dealstore.Deal) *fakeStore {
	return &fakeStore{
		deals:  deals,
		votes:  make(map[uuid.UUID]string),
		events: make(chan dealstore.Event, 16),
	}
}

func (f *fakeStore) ListDeals(ctx context.Context, _ dealstore.FeedQuery) (*dealstore.FeedPage, error) {
	f.mu.Lock()
	listFn := f.listFn
	f.mu.Unlock()
	if listFn != nil {
		return listFn(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	items := make([]dealstore.Deal, len(f.deals))
	copy(items, f.deals)
	return &dealstore.FeedPage{
		Items:      items,
		Pagination: dealstore.FeedPagination{Total: len(items)},
	}, nil
}

func (f *fakeStore) ListMyVotes(_ context.Context, dealIDs []uuid.UUID) ([]dealstore.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []dealstore.Vote
	for _, id := range dealIDs {
		if direction, ok := f.votes[id]; ok {
			rows = append(rows, dealstore.Vote{DealID: id, Direction: direction, CreatedAt: time.Now()})
		}
	}
	return rows, nil
}

func (f *fakeStore) CastVote(_ context.Context, dealID uuid.UUID, direction string) (*dealstore.VoteResult, error) {
	f.mu.Lock()
	castFn := f.castFn
	f.mu.Unlock()
	if castFn != nil {
		return castFn(dealID, direction)
	}
	return f.applyCast(dealID, direction)
}

// applyCast mirrors the server's upsert semantics: none inserts, the same
// direction retracts, the opposite flips; aggregates follow.
func (f *fakeStore) applyCast(dealID uuid.UUID, direction string) (*dealstore.VoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, voted := f.votes[dealID]
	switch {
	case !voted:
		f.votes[dealID] = direction
	case existing == direction:
		delete(f.votes, dealID)
	default:
		f.votes[dealID] = direction
	}

	for i := range f.deals {
		if f.deals[i].ID != dealID {
			continue
		}
		up, down := f.deals[i].Upvotes, f.deals[i].Downvotes
		switch {
		case !voted && direction == "up":
			up++
		case !voted && direction == "down":
			down++
		case voted && existing == direction && direction == "up":
			up--
		case voted && existing == direction && direction == "down":
			down--
		case voted && existing == "up":
			up, down = up-1, down+1
		case voted && existing == "down":
			up, down = up+1, down-1
		}
		f.deals[i].Upvotes, f.deals[i].Downvotes = up, down
		f.deals[i].VoteScore = up - down
		return &dealstore.VoteResult{
			DealID:    dealID,
			Upvotes:   up,
			Downvotes: down,
			VoteScore: up - down,
		}, nil
	}
	return &dealstore.VoteResult{DealID: dealID}, nil
}

func (f *fakeStore) Watch(ctx context.Context) (<-chan dealstore.Event, error) {
	f.mu.Lock()
	watchFn := f.watchFn
	f.mu.Unlock()
	if watchFn != nil {
		return watchFn(ctx)
	}
	return f.events, nil
}

func (f *fakeStore) setListError(err error) {
	f.mu.Lock()
	f.listErr = err
	f.mu.Unlock()
}

func (f *fakeStore) setDeals(deals ...dealstore.Deal) {
	f.mu.Lock()
	f.deals = deals
	f.mu.Unlock()
}

func testDeal(score int) dealstore.Deal {
	up := 0
	down := 0
	if score >= 0 {
		up = score
	} else {
		down = -score
	}
	return dealstore.Deal{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Mittagsmenü für 6,90",
		RestaurantName: "Pho Bar",
		Address:        "Kantstrasse 30, 10623 Berlin",
		Upvotes:        up,
		Downvotes:      down,
		VoteScore:      score,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
}

func newTestSession(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, store Store) *Session {
	t.Helper()
	session, err := NewSession(SessionParams{Store: store})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}
