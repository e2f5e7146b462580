package deals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/internal/realtime"
	"github.com/fooddealsberlin/backend/pkg/config"
	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
	"github.com/fooddealsberlin/backend/pkg/maps"
	"github.com/fooddealsberlin/backend/pkg/metrics"
	"github.com/fooddealsberlin/backend/pkg/moderation"
	"github.com/fooddealsberlin/backend/pkg/pagination"
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error)
}

// StatsRecorder is how the deal service reports a successful post upstream so
// the author's progression counters move.
type StatsRecorder interface {
	RecordDealPosted(ctx context.Context, userID uuid.UUID, moneySaved decimal.Decimal) error
}

// EventPublisher pushes change events to connected realtime clients.
type EventPublisher interface {
	Publish(event realtime.Event)
}

// FeedParams bundles the feed read inputs coming from the controller.
type FeedParams struct {
	Limit   int
	Cursor  string
	Sort    FeedSort
	Filters FeedFilters
}

// ServiceParams groups dependencies for the deal service.
type ServiceParams struct {
	DealRepo   *Repository
	Stats      StatsRecorder
	Geocoder   Geocoder
	Moderation moderation.Checker
	Events     EventPublisher
	Metrics    *metrics.APIMetrics
	Logger     *logger.Logger
	Feed       config.FeedConfig
}

// Service exposes business rules for the deal feed.
type Service interface {
	GetFeed(ctx context.Context, params FeedParams) (FeedPageDTO, error)
	GetDeal(ctx context.Context, id uuid.UUID) (DealDetailDTO, error)
	CreateDeal(ctx context.Context, userID uuid.UUID, input CreateDealInput) (DealDTO, error)
	UpdateDeal(ctx context.Context, userID, dealID uuid.UUID, input UpdateDealInput) (DealDTO, error)
	DeleteDeal(ctx context.Context, userID, dealID uuid.UUID) error
}

type service struct {
	dealRepo   *Repository
	stats      StatsRecorder
	geocoder   Geocoder
	moderation moderation.Checker
	events     EventPublisher
	metrics    *metrics.APIMetrics
	logg       *logger.Logger
	feed       config.FeedConfig
	now        func() time.Time
}

// NewService builds a deal service. Geocoder, moderation, events and metrics
// are optional; the service degrades gracefully without them.
func NewService(params ServiceParams) (Service, error) {
	if params.DealRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal repo is required")
	}
	if params.Stats == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stats recorder is required")
	}
	if params.Logger == nil {
		params.Logger = logger.New(logger.Options{})
	}
	return &service{
		dealRepo:   params.DealRepo,
		stats:      params.Stats,
		geocoder:   params.Geocoder,
		moderation: params.Moderation,
		events:     params.Events,
		metrics:    params.Metrics,
		logg:       params.Logger,
		feed:       params.Feed,
		now:        time.Now,
	}, nil
}

// GetFeed returns one page of active, unexpired deals.
func (s *service) GetFeed(ctx context.Context, params FeedParams) (FeedPageDTO, error) {
	sort := params.Sort
	if sort == "" {
		sort = SortNewest
	}
	page, err := s.dealRepo.ListFeed(ctx, feedQuery{
		Pagination: pagination.Params{Limit: params.Limit, Cursor: params.Cursor},
		Filters:    params.Filters,
		Sort:       sort,
		Now:        s.now(),
	})
	if err != nil {
		return FeedPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deal feed")
	}
	return page, nil
}

// GetDeal returns one deal with its author summary. Inactive and expired deals
// resolve as not found so stale detail views close.
func (s *service) GetDeal(ctx context.Context, id uuid.UUID) (DealDetailDTO, error) {
	if id == uuid.Nil {
		return DealDetailDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal id is required")
	}
	deal, profile, err := s.dealRepo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DealDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "deal not found")
		}
		return DealDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if !deal.IsActive || deal.Expired(s.now()) {
		return DealDetailDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}
	return DealDetailDTO{
		Deal:   NewDealDTO(deal),
		Author: NewAuthorDTO(profile),
	}, nil
}

// CreateDeal validates, geocodes, moderates and persists a new deal, then bumps
// the author's stats.
func (s *service) CreateDeal(ctx context.Context, userID uuid.UUID, input CreateDealInput) (DealDTO, error) {
	if userID == uuid.Nil {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	cuisine, err := enums.ParseCuisineType(input.CuisineType)
	if err != nil {
		return DealDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cuisine type")
	}
	dealType, err := enums.ParseDealType(input.DealType)
	if err != nil {
		return DealDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal type")
	}
	if err := validateDietaryTags(input.DietaryTags); err != nil {
		return DealDTO{}, err
	}
	if !input.DealPrice.IsPositive() {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal price must be positive")
	}
	if input.OriginalPrice != nil && input.DealPrice.GreaterThanOrEqual(*input.OriginalPrice) {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal price must be below the original price")
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(s.now()) {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	if err := s.rejectSpam(ctx, input); err != nil {
		return DealDTO{}, err
	}

	lat, lng := s.resolveCoordinates(ctx, input)

	row := &models.Deal{
		UserID:             userID,
		Title:              strings.TrimSpace(input.Title),
		Description:        trimPtr(input.Description),
		RestaurantName:     strings.TrimSpace(input.RestaurantName),
		Address:            strings.TrimSpace(input.Address),
		Latitude:           lat,
		Longitude:          lng,
		DealPrice:          input.DealPrice,
		OriginalPrice:      input.OriginalPrice,
		DiscountPercentage: discountPercentage(input.DealPrice, input.OriginalPrice),
		CuisineType:        cuisine,
		DealType:           dealType,
		DietaryTags:        tagArray(input.DietaryTags),
		ImageURL:           input.ImageURL,
		IsActive:           true,
		ExpiresAt:          input.ExpiresAt,
	}

	created, err := s.dealRepo.Create(ctx, row)
	if err != nil {
		return DealDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
	}

	if err := s.stats.RecordDealPosted(ctx, userID, moneySaved(input.DealPrice, input.OriginalPrice)); err != nil {
		// The deal is already live; progression lag is acceptable.
		s.logg.Error(s.logg.WithDealID(ctx, created.ID.String()), "deal.stats_bump_failed", err)
	}

	s.metrics.IncDealsCreated()
	dto := NewDealDTO(created)
	s.publish(enums.EventDealCreated, created.ID, dto)
	return dto, nil
}

// UpdateDeal applies owner edits to an existing deal.
func (s *service) UpdateDeal(ctx context.Context, userID, dealID uuid.UUID, input UpdateDealInput) (DealDTO, error) {
	deal, err := s.loadOwned(ctx, userID, dealID)
	if err != nil {
		return DealDTO{}, err
	}

	if input.DietaryTags != nil {
		if err := validateDietaryTags(*input.DietaryTags); err != nil {
			return DealDTO{}, err
		}
	}

	applyUpdateToDeal(deal, input)

	if !deal.DealPrice.IsPositive() {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal price must be positive")
	}
	if deal.OriginalPrice != nil && deal.DealPrice.GreaterThanOrEqual(*deal.OriginalPrice) {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "deal price must be below the original price")
	}
	deal.DiscountPercentage = discountPercentage(deal.DealPrice, deal.OriginalPrice)

	updated, err := s.dealRepo.Update(ctx, deal)
	if err != nil {
		return DealDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal")
	}

	dto := NewDealDTO(updated)
	s.publish(enums.EventDealUpdated, updated.ID, dto)
	return dto, nil
}

// DeleteDeal soft-deletes a deal the caller owns.
func (s *service) DeleteDeal(ctx context.Context, userID, dealID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, dealID); err != nil {
		return err
	}
	if err := s.dealRepo.Deactivate(ctx, dealID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate deal")
	}
	s.publish(enums.EventDealDeleted, dealID, nil)
	return nil
}

func (s *service) loadOwned(ctx context.Context, userID, dealID uuid.UUID) (*models.Deal, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id is required")
	}
	deal, err := s.dealRepo.FindByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if !deal.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}
	if deal.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the deal owner may modify it")
	}
	return deal, nil
}

// rejectSpam asks the moderation checker for a verdict. Checker failures are
// treated as "not spam".
func (s *service) rejectSpam(ctx context.Context, input CreateDealInput) error {
	if s.moderation == nil {
		return nil
	}
	description := ""
	if input.Description != nil {
		description = *input.Description
	}
	verdict, err := s.moderation.CheckDeal(ctx, input.Title, description, input.RestaurantName)
	if err != nil {
		s.logg.Warn(ctx, "deal.moderation_unavailable")
		return nil
	}
	if verdict.IsSpam {
		s.metrics.IncSpamFlagged()
		return pkgerrors.New(pkgerrors.CodeValidation, "this deal looks like spam").
			WithDetails(map[string]string{"reason": verdict.Reason})
	}
	return nil
}

// resolveCoordinates prefers geocoding the address, then client-supplied
// coordinates, then the configured city-center fallback.
func (s *service) resolveCoordinates(ctx context.Context, input CreateDealInput) (float64, float64) {
	if s.geocoder != nil {
		result, err := s.geocoder.Geocode(ctx, input.Address)
		if err == nil {
			return result.Location.Latitude, result.Location.Longitude
		}
		if !errors.Is(err, maps.ErrNoResults) {
			s.logg.Warn(ctx, "deal.geocode_unavailable")
		}
	}
	if input.Latitude != nil && input.Longitude != nil {
		return *input.Latitude, *input.Longitude
	}
	return s.feed.FallbackLat, s.feed.FallbackLng
}

func (s *service) publish(eventType enums.EventType, dealID uuid.UUID, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.Event{
		Type:    eventType,
		DealID:  dealID,
		Payload: payload,
	})
}

func applyUpdateToDeal(deal *models.Deal, input UpdateDealInput) {
	if input.Title != nil {
		deal.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		deal.Description = trimPtr(input.Description)
	}
	if input.RestaurantName != nil {
		deal.RestaurantName = strings.TrimSpace(*input.RestaurantName)
	}
	if input.DealPrice != nil {
		deal.DealPrice = *input.DealPrice
	}
	if input.OriginalPrice != nil {
		deal.OriginalPrice = input.OriginalPrice
	}
	if input.DealType != nil {
		if parsed, err := enums.ParseDealType(*input.DealType); err == nil {
			deal.DealType = parsed
		}
	}
	if input.DietaryTags != nil {
		deal.DietaryTags = tagArray(*input.DietaryTags)
	}
	if input.ImageURL != nil {
		deal.ImageURL = input.ImageURL
	}
	if input.ExpiresAt != nil {
		deal.ExpiresAt = input.ExpiresAt
	}
}

// discountPercentage derives the stored discount from the two prices. Nil when
// there is no original price to compare against.
func discountPercentage(dealPrice decimal.Decimal, originalPrice *decimal.Decimal) *int {
	if originalPrice == nil || !originalPrice.IsPositive() {
		return nil
	}
	ratio := dealPrice.Div(*originalPrice)
	pct := int(decimal.NewFromInt(100).Sub(ratio.Mul(decimal.NewFromInt(100))).Round(0).IntPart())
	if pct < 0 {
		pct = 0
	}
	return &pct
}

// moneySaved is the stat credited to the author on a successful post.
func moneySaved(dealPrice decimal.Decimal, originalPrice *decimal.Decimal) decimal.Decimal {
	if originalPrice == nil {
		return decimal.Zero
	}
	saved := originalPrice.Sub(dealPrice)
	if saved.IsNegative() {
		return decimal.Zero
	}
	return saved
}

func validateDietaryTags(tags []string) error {
	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	if _, err := enums.ParseDietaryTags(trimmed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dietary tags")
	}
	return nil
}

func tagArray(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
