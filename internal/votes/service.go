package votes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/internal/realtime"
	"github.com/fooddealsberlin/backend/pkg/db"
	"github.com/fooddealsberlin/backend/pkg/enums"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/metrics"
)

// EventPublisher pushes change events to connected realtime clients.
type EventPublisher interface {
	Publish(event realtime.Event)
}

// ServiceParams groups dependencies for the vote service.
type ServiceParams struct {
	VoteRepo *Repository
	Events   EventPublisher
	Metrics  *metrics.APIMetrics
}

// Service exposes business rules for voting.
type Service interface {
	CastVote(ctx context.Context, userID, dealID uuid.UUID, input CastVoteInput) (VoteResultDTO, error)
	ListMyVotes(ctx context.Context, userID uuid.UUID, dealIDs []uuid.UUID) ([]VoteDTO, error)
}

type service struct {
	voteRepo *Repository
	events   EventPublisher
	metrics  *metrics.APIMetrics
}

// NewService builds a vote service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.VoteRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vote repo is required")
	}
	return &service{
		voteRepo: params.VoteRepo,
		events:   params.Events,
		metrics:  params.Metrics,
	}, nil
}

// CastVote applies one tap and returns the fresh aggregates.
func (s *service) CastVote(ctx context.Context, userID, dealID uuid.UUID, input CastVoteInput) (VoteResultDTO, error) {
	if userID == uuid.Nil {
		return VoteResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if dealID == uuid.Nil {
		return VoteResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal id is required")
	}
	direction, err := enums.ParseVoteDirection(input.Direction)
	if err != nil {
		return VoteResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vote direction")
	}

	outcome, err := s.voteRepo.Cast(ctx, dealID, userID, direction)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return VoteResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "deal not found")
		case db.IsUniqueViolation(err, ""):
			// Two taps from the same user raced; the client re-reads and
			// retries with current state.
			return VoteResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vote already recorded")
		default:
			return VoteResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cast vote")
		}
	}

	s.metrics.IncVotesCast(string(outcome.Action))

	result := VoteResultDTO{
		DealID:    dealID,
		Action:    outcome.Action,
		Upvotes:   outcome.Upvotes,
		Downvotes: outcome.Downvotes,
		VoteScore: outcome.VoteScore,
	}
	if outcome.Direction != nil {
		value := outcome.Direction.String()
		result.Direction = &value
	}

	if s.events != nil {
		s.events.Publish(realtime.Event{
			Type:       enums.EventVoteChanged,
			DealID:     dealID,
			Payload:    result,
			OccurredAt: time.Now().UTC(),
		})
	}
	return result, nil
}

// ListMyVotes returns the caller's standing votes, optionally narrowed to a
// set of deals. Feed clients use it to seed their vote-direction state.
func (s *service) ListMyVotes(ctx context.Context, userID uuid.UUID, dealIDs []uuid.UUID) ([]VoteDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.voteRepo.ListByUser(ctx, userID, dealIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list votes")
	}
	out := make([]VoteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewVoteDTO(&rows[i]))
	}
	return out, nil
}
