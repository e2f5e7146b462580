package feedsync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
)

// Direction is the per-deal vote state the session believes in right now.
type Direction int

const (
	Unvoted   Direction = 0
	VotedUp   Direction = 1
	VotedDown Direction = -1
)

func (d Direction) String() string {
	switch d {
	case VotedUp:
		return "up"
	case VotedDown:
		return "down"
	default:
		return "none"
	}
}

func directionFromWire(direction string) Direction {
	switch direction {
	case "up":
		return VotedUp
	case "down":
		return VotedDown
	default:
		return Unvoted
	}
}

// overlayEntry tracks one deal's optimistic vote state: the believed
// direction, the unconfirmed delta against the last-fetched server count,
// and a version pair that lets late write completions be discarded.
type overlayEntry struct {
	direction Direction
	delta     int
	issued    uint64
	settled   uint64
}

func (e *overlayEntry) pending() bool {
	return e.issued > e.settled
}

// Tap applies one up/down press on a deal: the local state machine advances
// immediately (same direction retracts, opposite flips, none adopts), the
// delta lands on the displayed count before any network happens, and the
// press is then mirrored to the server. A failed mirror rolls the tap back
// exactly and surfaces the error; no automatic retry. A successful mirror
// triggers a refresh so server aggregates absorb the delta.
//
// Rapid taps chain against the locally held state. Each tap bumps the
// deal's issued version and only the completion carrying the latest version
// is applied; earlier in-flight outcomes are discarded as superseded.
func (s *Session) Tap(ctx context.Context, dealID uuid.UUID, pressed Direction) error {
	if pressed != VotedUp && pressed != VotedDown {
		return fmt.Errorf("pressed direction must be up or down")
	}

	s.mu.Lock()

	if _, ok := s.byID[dealID]; !ok {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "deal is no longer in the feed")
	}

	entry, ok := s.overlay[dealID]
	if !ok {
		entry = &overlayEntry{}
		s.overlay[dealID] = entry
	}

	prevDirection := entry.direction
	prevDelta := entry.delta

	next := pressed
	if pressed == prevDirection {
		next = Unvoted
	}
	delta := int(next) - int(prevDirection)

	entry.direction = next
	entry.delta += delta
	entry.issued++
	version := entry.issued

	s.mu.Unlock()

	_, writeErr := s.store.CastVote(ctx, dealID, pressed.String())

	s.mu.Lock()
	if version != entry.issued {
		// A newer tap superseded this write; only the latest outcome counts.
		s.mu.Unlock()
		return nil
	}
	entry.settled = version

	if writeErr != nil {
		entry.direction = prevDirection
		entry.delta = prevDelta
		s.mu.Unlock()
		return writeErr
	}
	s.mu.Unlock()

	// Server aggregates now include this vote; a refresh replaces the base
	// count and consumes the delta.
	if err := s.Refresh(ctx); err != nil {
		s.logRefreshFailure(ctx, err)
	}
	return nil
}

// VoteDirection reports the session's believed direction for a deal.
func (s *Session) VoteDirection(dealID uuid.UUID) Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.overlay[dealID]; ok {
		return entry.direction
	}
	return Unvoted
}
