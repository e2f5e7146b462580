package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fooddealsberlin/backend/api/middleware"
	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/api/validators"
	"github.com/fooddealsberlin/backend/internal/deals"
	"github.com/fooddealsberlin/backend/pkg/enums"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

const (
	feedDefaultLimit = 20
	feedMaxLimit     = 100

	feedDefaultRadiusMeters = 2000.0
	feedMaxRadiusMeters     = 50000.0
)

// DealFeed serves the public deal feed with filters and cursor paging.
func DealFeed(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		params, err := parseFeedParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.GetFeed(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// DealDetail serves one deal with its author summary.
func DealDetail(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		dealID, err := uuid.Parse(chi.URLParam(r, "dealId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal id"))
			return
		}

		detail, err := svc.GetDeal(ctx, dealID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// DealCreate posts a new deal for the authenticated user.
func DealCreate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input deals.CreateDealInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.Title = validators.SanitizeString(input.Title, 120)
		input.RestaurantName = validators.SanitizeString(input.RestaurantName, 120)
		input.Address = validators.SanitizeString(input.Address, 255)

		created, err := svc.CreateDeal(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DealUpdate edits a deal; the service enforces ownership.
func DealUpdate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dealID, err := uuid.Parse(chi.URLParam(r, "dealId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal id"))
			return
		}

		var input deals.UpdateDealInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		sanitizePtr(input.Title, 120)
		sanitizePtr(input.RestaurantName, 120)

		updated, err := svc.UpdateDeal(ctx, userID, dealID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// DealDelete soft-deletes a deal; the service enforces ownership.
func DealDelete(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dealID, err := uuid.Parse(chi.URLParam(r, "dealId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal id"))
			return
		}

		if err := svc.DeleteDeal(ctx, userID, dealID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseFeedParams(r *http.Request) (deals.FeedParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", feedDefaultLimit, 1, feedMaxLimit)
	if err != nil {
		return deals.FeedParams{}, err
	}

	params := deals.FeedParams{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	switch sort := strings.TrimSpace(r.URL.Query().Get("sort")); sort {
	case "", string(deals.SortNewest):
		params.Sort = deals.SortNewest
	case string(deals.SortTop):
		params.Sort = deals.SortTop
	default:
		return deals.FeedParams{}, pkgerrors.New(pkgerrors.CodeValidation, "sort must be newest or top")
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("max_price")); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil || maxPrice.IsNegative() {
			return deals.FeedParams{}, pkgerrors.New(pkgerrors.CodeValidation, "max_price must be a non-negative number")
		}
		params.Filters.MaxPrice = &maxPrice
	}

	for _, value := range splitCSV(r.URL.Query().Get("cuisines")) {
		cuisine, err := enums.ParseCuisineType(value)
		if err != nil {
			return deals.FeedParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cuisine filter")
		}
		params.Filters.Cuisines = append(params.Filters.Cuisines, cuisine)
	}
	for _, value := range splitCSV(r.URL.Query().Get("deal_types")) {
		dealType, err := enums.ParseDealType(value)
		if err != nil {
			return deals.FeedParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal type filter")
		}
		params.Filters.DealTypes = append(params.Filters.DealTypes, dealType)
	}
	dietaryTags, err := enums.ParseDietaryTags(splitCSV(r.URL.Query().Get("dietary_tags")))
	if err != nil {
		return deals.FeedParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dietary tag filter")
	}
	for _, tag := range dietaryTags {
		params.Filters.DietaryTags = append(params.Filters.DietaryTags, tag.String())
	}

	if strings.TrimSpace(r.URL.Query().Get("lat")) != "" || strings.TrimSpace(r.URL.Query().Get("lng")) != "" {
		lat, err := validators.ParseQueryFloat(r, "lat", 0, -90, 90)
		if err != nil {
			return deals.FeedParams{}, err
		}
		lng, err := validators.ParseQueryFloat(r, "lng", 0, -180, 180)
		if err != nil {
			return deals.FeedParams{}, err
		}
		radius, err := validators.ParseQueryFloat(r, "radius", feedDefaultRadiusMeters, 1, feedMaxRadiusMeters)
		if err != nil {
			return deals.FeedParams{}, err
		}
		params.Filters.Near = &deals.GeoFilter{Latitude: lat, Longitude: lng, RadiusMeters: radius}
	}

	return params, nil
}

func sanitizePtr(value *string, maxLen int) {
	if value != nil {
		*value = validators.SanitizeString(*value, maxLen)
	}
}

func splitCSV(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func requireUserID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return userID, nil
}
