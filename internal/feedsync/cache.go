package feedsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/dealstore"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

const (
	defaultRefreshInterval = 30 * time.Second
	defaultPageSize        = 100

	watchRedialDelay = 2 * time.Second
)

// Store is the remote surface the session consumes. *dealstore.Client
// satisfies it.
type Store interface {
	ListDeals(ctx context.Context, query dealstore.FeedQuery) (*dealstore.FeedPage, error)
	ListMyVotes(ctx context.Context, dealIDs []uuid.UUID) ([]dealstore.Vote, error)
	CastVote(ctx context.Context, dealID uuid.UUID, direction string) (*dealstore.VoteResult, error)
	Watch(ctx context.Context) (<-chan dealstore.Event, error)
}

// SessionParams configures a feed session.
type SessionParams struct {
	Store           Store
	Logger          *logger.Logger
	Query           dealstore.FeedQuery
	RefreshInterval time.Duration
}

// Session owns one user's live view of the deal feed: the cached server
// truth plus the optimistic vote overlay layered on top of it. One mutex
// guards both; network calls always happen outside it.
type Session struct {
	store       Store
	logg        *logger.Logger
	query       dealstore.FeedQuery
	interval    time.Duration
	redialDelay time.Duration

	mu          sync.Mutex
	deals       []dealstore.Deal
	byID        map[uuid.UUID]int
	overlay     map[uuid.UUID]*overlayEntry
	lastErr     error
	refreshedAt time.Time
}

// NewSession builds a session. Sessions are single-user and never shared
// across logins.
func NewSession(params SessionParams) (*Session, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	interval := params.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}

	query := params.Query
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}

	return &Session{
		store:       params.Store,
		logg:        params.Logger,
		query:       query,
		interval:    interval,
		redialDelay: watchRedialDelay,
		byID:        make(map[uuid.UUID]int),
		overlay:     make(map[uuid.UUID]*overlayEntry),
	}, nil
}

// Refresh fetches the feed and the session user's vote rows, then replaces
// the cached server truth wholesale. On failure the previous cache stays
// intact and the error is both recorded and returned. A successful refresh
// consumes every settled overlay delta; deltas with a write still in flight
// survive untouched.
func (s *Session) Refresh(ctx context.Context) error {
	page, err := s.store.ListDeals(ctx, s.query)
	if err != nil {
		s.recordError(err)
		return err
	}

	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, deal := range page.Items {
		ids = append(ids, deal.ID)
	}

	votes, err := s.store.ListMyVotes(ctx, ids)
	if err != nil && !errors.Is(err, dealstore.ErrNoSession) {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deals = page.Items
	s.byID = make(map[uuid.UUID]int, len(page.Items))
	for i, deal := range page.Items {
		s.byID[deal.ID] = i
	}

	// Settled entries are reseeded from server truth; pending ones keep
	// their optimistic direction and delta until their write completes.
	for id, entry := range s.overlay {
		if entry.pending() {
			continue
		}
		delete(s.overlay, id)
	}
	for _, vote := range votes {
		if _, ok := s.overlay[vote.DealID]; ok {
			continue
		}
		s.overlay[vote.DealID] = &overlayEntry{direction: directionFromWire(vote.Direction)}
	}

	s.lastErr = nil
	s.refreshedAt = time.Now()
	return nil
}

// Run polls the feed on a fixed interval until the context is cancelled.
// Errors are recorded as session state, logged, and otherwise swallowed so
// one bad poll never stops the loop.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logRefreshFailure(ctx, err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logRefreshFailure(ctx, err)
			}
		}
	}
}

// Watch consumes the push stream instead of polling, funnelling every change
// event into the same wholesale-replacement path Refresh uses. The
// subscription redials on stream loss until the context is cancelled; the
// redial delay applies after every lost stream, not just failed dials, so a
// flapping server is never hammered.
func (s *Session) Watch(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logRefreshFailure(ctx, err)
	}

	for {
		events, err := s.store.Watch(ctx)
		if err != nil {
			s.recordError(err)
			if s.logg != nil {
				s.logg.Warn(ctx, "feedsync.watch_dial_failed")
			}
		} else {
			for range events {
				if err := s.Refresh(ctx); err != nil {
					s.logRefreshFailure(ctx, err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.redialDelay):
		}
	}
}

// LastError reports the most recent refresh failure, cleared by the next
// successful refresh.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastRefreshedAt reports when the cache last replaced server truth.
func (s *Session) LastRefreshedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshedAt
}

func (s *Session) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Session) logRefreshFailure(ctx context.Context, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, "feedsync.refresh_failed", err)
}
