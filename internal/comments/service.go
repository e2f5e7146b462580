package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/internal/realtime"
	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/metrics"
)

// DealChecker verifies a deal is live before a comment attaches to it.
type DealChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
}

// EventPublisher pushes change events to connected realtime clients.
type EventPublisher interface {
	Publish(event realtime.Event)
}

// ServiceParams groups dependencies for the comment service.
type ServiceParams struct {
	CommentRepo *Repository
	Deals       DealChecker
	Events      EventPublisher
	Metrics     *metrics.APIMetrics
}

// Service exposes business rules for comment threads.
type Service interface {
	ListComments(ctx context.Context, dealID uuid.UUID, cursor string, limit int) (CommentsPageDTO, error)
	CreateComment(ctx context.Context, userID, dealID uuid.UUID, input CreateCommentInput) (CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type service struct {
	commentRepo *Repository
	deals       DealChecker
	events      EventPublisher
	metrics     *metrics.APIMetrics
}

// NewService builds a comment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CommentRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment repo is required")
	}
	if params.Deals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal checker is required")
	}
	return &service{
		commentRepo: params.CommentRepo,
		deals:       params.Deals,
		events:      params.Events,
		metrics:     params.Metrics,
	}, nil
}

// ListComments returns one page of a deal's thread.
func (s *service) ListComments(ctx context.Context, dealID uuid.UUID, cursor string, limit int) (CommentsPageDTO, error) {
	if dealID == uuid.Nil {
		return CommentsPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal id is required")
	}
	page, err := s.commentRepo.ListByDeal(ctx, dealID, cursor, limit)
	if err != nil {
		return CommentsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return page, nil
}

// CreateComment attaches a comment to a live deal.
func (s *service) CreateComment(ctx context.Context, userID, dealID uuid.UUID, input CreateCommentInput) (CommentDTO, error) {
	if userID == uuid.Nil {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if dealID == uuid.Nil {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal id is required")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "comment content is required")
	}
	if len([]rune(content)) > MaxContentLength {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "comment exceeds 1000 characters")
	}

	deal, err := s.deals.FindByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "deal not found")
		}
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if !deal.IsActive {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}

	created, err := s.commentRepo.Create(ctx, &models.Comment{
		DealID:  dealID,
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}

	s.metrics.IncCommentsPosted()

	dto := CommentDTO{
		ID:        created.ID,
		DealID:    created.DealID,
		UserID:    created.UserID,
		Content:   created.Content,
		CreatedAt: created.CreatedAt,
	}
	s.publish(enums.EventCommentCreated, dealID, dto)
	return dto, nil
}

// DeleteComment removes a comment its author posted.
func (s *service) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if commentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment id is required")
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "comment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comment")
	}
	if comment.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the comment author may delete it")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}

	s.publish(enums.EventCommentDeleted, comment.DealID, map[string]uuid.UUID{"comment_id": commentID})
	return nil
}

func (s *service) publish(eventType enums.EventType, dealID uuid.UUID, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.Event{
		Type:       eventType,
		DealID:     dealID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
}
