package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/api/validators"
	"github.com/fooddealsberlin/backend/internal/comments"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

const (
	commentsDefaultLimit = 50
	commentsMaxLimit     = 200
)

// CommentList serves a deal's thread, oldest first.
func CommentList(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		dealID, err := uuid.Parse(chi.URLParam(r, "dealId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal id"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", commentsDefaultLimit, 1, commentsMaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.ListComments(ctx, dealID, cursor, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CommentCreate posts a comment on a deal.
func CommentCreate(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
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

		var input comments.CreateCommentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.Content = validators.SanitizeString(input.Content, 0)

		created, err := svc.CreateComment(ctx, userID, dealID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CommentDelete removes the caller's own comment.
func CommentDelete(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		commentID, err := uuid.Parse(chi.URLParam(r, "commentId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid comment id"))
			return
		}

		if err := svc.DeleteComment(ctx, userID, commentID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
