package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/api/validators"
	"github.com/fooddealsberlin/backend/internal/votes"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// VoteCast applies one vote tap to a deal and returns fresh aggregates.
func VoteCast(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vote service unavailable"))
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

		var input votes.CastVoteInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CastVote(ctx, userID, dealID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// VoteList returns the caller's vote rows, optionally narrowed by deal_ids.
func VoteList(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vote service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var dealIDs []uuid.UUID
		for _, raw := range splitCSV(r.URL.Query().Get("deal_ids")) {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal id in deal_ids"))
				return
			}
			dealIDs = append(dealIDs, id)
		}

		rows, err := svc.ListMyVotes(ctx, userID, dealIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
