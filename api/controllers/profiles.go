package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/api/middleware"
	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/api/validators"
	"github.com/fooddealsberlin/backend/internal/profiles"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// ProfileMe returns the caller's profile, creating it on first sight.
func ProfileMe(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := svc.EnsureProfile(ctx, userID, middleware.UsernameFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdateMe edits the caller's profile.
func ProfileUpdateMe(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input profiles.UpdateProfileInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.UpdateMe(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ProfileBadges lists the caller's earned badges.
func ProfileBadges(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		badges, err := svc.ListMyBadges(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, badges)
	}
}

// ProfilePublic serves the reduced profile view for any user.
func ProfilePublic(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		profileID, err := uuid.Parse(chi.URLParam(r, "profileId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id"))
			return
		}

		profile, err := svc.GetProfile(ctx, profileID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
