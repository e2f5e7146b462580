package feedsync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddealsberlin/backend/pkg/dealstore"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
)

// freezeRefresh makes every refresh after the initial one fail so optimistic
// deltas accumulate against a fixed server baseline.
func freezeRefresh(store *fakeStore) {
	store.setListError(errors.New("network down"))
}

func TestTapChainEndsOnLastDirection(t *testing.T) {
	deal := testDeal(5)
	store := newFakeStore(deal)
	session := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, session.Refresh(ctx))
	freezeRefresh(store)
	store.mu.Lock()
	store.castFn = func(uuid.UUID, string) (*dealstore.VoteResult, error) {
		return &dealstore.VoteResult{}, nil
	}
	store.mu.Unlock()

	require.NoError(t, session.Tap(ctx, deal.ID, VotedUp))
	view, ok := session.SelectedDeal(deal.ID)
	require.True(t, ok)
	assert.Equal(t, VotedUp, view.Direction)
	assert.Equal(t, 6, view.Score)

	require.NoError(t, session.Tap(ctx, deal.ID, VotedDown))
	view, _ = session.SelectedDeal(deal.ID)
	assert.Equal(t, VotedDown, view.Direction)
	assert.Equal(t, 4, view.Score)

	require.NoError(t, session.Tap(ctx, deal.ID, VotedDown))
	view, _ = session.SelectedDeal(deal.ID)
	assert.Equal(t, Unvoted, view.Direction)
	assert.Equal(t, 5, view.Score)
}

func TestDoubleTapSameDirectionIsIdempotent(t *testing.T) {
	deal := testDeal(3)
	store := newFakeStore(deal)
	session := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, session.Refresh(ctx))
	freezeRefresh(store)
	store.mu.Lock()
	store.castFn = func(uuid.UUID, string) (*dealstore.VoteResult, error) {
		return &dealstore.VoteResult{}, nil
	}
	store.mu.Unlock()

	require.NoError(t, session.Tap(ctx, deal.ID, VotedUp))
	require.NoError(t, session.Tap(ctx, deal.ID, VotedUp))

	view, ok := session.SelectedDeal(deal.ID)
	require.True(t, ok)
	assert.Equal(t, Unvoted, view.Direction)
	assert.Equal(t, 3, view.Score)
}

func TestSuccessfulVoteRoundTripConsumesOverlay(t *testing.T) {
	deal := testDeal(0)
	store := newFakeStore(deal)
	session := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, session.Refresh(ctx))
	require.NoError(t, session.Tap(ctx, deal.ID, VotedUp))

	// The tap's refresh replaced server truth; the displayed score must be
	// exactly the fresh server count with no residual delta.
	view, ok := session.SelectedDeal(deal.ID)
	require.True(t, ok)
	assert.Equal(t, 1, view.Score)
	assert.Equal(t, 1, view.Deal.VoteScore)
	assert.Equal(t, VotedUp, view.Direction)
}

func TestFailedVoteRollsBackExactly(t *testing.T) {
	deal := testDeal(7)
	store := newFakeStore(deal)
	session := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, session.Refresh(ctx))
	store.mu.Lock()
	store.castFn = func(uuid.UUID, string) (*dealstore.VoteResult, error) {
		return nil, errors.New("connection reset")
	}
	store.mu.Unlock()

	err := session.Tap(ctx, deal.ID, VotedDown)
	require.Error(t, err)

	view, ok := session.SelectedDeal(deal.ID)
	require.True(t, ok)
	assert.Equal(t, Unvoted, view.Direction)
	assert.Equal(t, 7, view.Score)
}

func TestTapRefusedWithoutSession(t *testing.T) {
	deal := testDeal(2)
	store := newFakeStore(deal)
	session := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, session.Refresh(ctx))
	store.mu.Lock()
	store.castFn = func(uuid.UUID, string) (*dealstore.VoteResult, error) {
		return nil, dealstore.ErrNoSession
	}
	store.mu.Unlock()

	err := session.Tap(ctx, deal.ID, VotedUp)
	require.ErrorIs(t, err, dealstore.ErrNoSession)

	view, _ := session.SelectedDeal(deal.ID)
	assert.Equal(t, Unvoted, view.Direction)
	assert.Equal(t, 2, view.Score)
}

func TestTapUnknownDealResolvesNotFound(t *testing.T) {
	store := newFakeStore(testDeal(0))
	session := newTestSession(t, store)
	require.NoError(t, session.Refresh(context.Background()))

	err := session.Tap(context.Background(), uuid.New(), VotedUp)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSupersededCompletionIsDiscarded(t *testing.T) {
	deal := testDeal(0)
	store := newFakeStore(deal)
	session := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, session.Refresh(ctx))
	freezeRefresh(store)

	started := make(chan int, 2)
	release := []chan error{make(chan error), make(chan error)}
	var call int
	var callMu sync.Mutex
	store.mu.Lock()
	store.castFn = func(uuid.UUID, string) (*dealstore.VoteResult, error) {
		callMu.Lock()
		idx := call
		call++
		callMu.Unlock()
		started <- idx
		if err := <-release[idx]; err != nil {
			return nil, err
		}
		return &dealstore.VoteResult{}, nil
	}
	store.mu.Unlock()

	var wg sync.WaitGroup
	results := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = session.Tap(ctx, deal.ID, VotedUp)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = session.Tap(ctx, deal.ID, VotedDown)
	}()
	<-started

	// The second (latest) tap settles first and wins; the first tap's
	// failure arrives late and must be ignored, not rolled back.
	release[1] <- nil
	release[0] <- errors.New("timeout")
	wg.Wait()

	assert.NoError(t, results[0])
	assert.NoError(t, results[1])

	view, ok := session.SelectedDeal(deal.ID)
	require.True(t, ok)
	assert.Equal(t, VotedDown, view.Direction)
	assert.Equal(t, -1, view.Score)
}
