package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/internal/media"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// Multipart form memory ceiling; larger parts spill to disk before the
// service's own size check rejects them.
const mediaFormMemoryLimit = 8 << 20

// MediaUpload accepts a multipart image upload and stores it publicly.
func MediaUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(mediaFormMemoryLimit); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part is required"))
			return
		}
		defer func() { _ = file.Close() }()

		uploaded, err := svc.Upload(ctx, userID, media.UploadInput{
			FileName:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Body:      file,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, uploaded)
	}
}

// MediaDelete removes the caller's own upload and its stored object.
func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		mediaID, err := uuid.Parse(chi.URLParam(r, "mediaId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media id"))
			return
		}

		if err := svc.Delete(ctx, userID, mediaID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
