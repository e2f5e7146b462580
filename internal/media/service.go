package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
)

const maxUploadBytes = 5 * 1024 * 1024

// Deal photos only; anything else is rejected up front.
var allowedMimeTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type mediaRepository interface {
	Create(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type objectStore interface {
	ObjectKey(parts ...string) string
	UploadObject(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// Service exposes deal-image upload semantics.
type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*MediaDTO, error)
	Delete(ctx context.Context, userID, mediaID uuid.UUID) error
}

type service struct {
	repo  mediaRepository
	store objectStore
}

// NewService constructs a media service backed by the provided repository and object store.
func NewService(repo mediaRepository, store objectStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	return &service{repo: repo, store: store}, nil
}

// UploadInput models a direct image upload.
type UploadInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

func (s *service) Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*MediaDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}

	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be ≤ %d bytes", maxUploadBytes))
	}

	mimeType := strings.ToLower(strings.TrimSpace(input.MimeType))
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type must be image/png, image/jpeg or image/webp")
	}

	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload body is required")
	}

	mediaID := uuid.New()
	key := s.store.ObjectKey("deals", mediaID.String()+objectExt(fileName, ext))

	// SizeBytes is a client claim checked above; the LimitReader enforces it.
	publicURL, err := s.store.UploadObject(ctx, key, mimeType, io.LimitReader(input.Body, maxUploadBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload object")
	}

	created, err := s.repo.Create(ctx, &models.Media{
		ID:        mediaID,
		UserID:    userID,
		GCSKey:    key,
		URL:       publicURL,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: input.SizeBytes,
	})
	if err != nil {
		// Best effort: don't leave an orphaned object behind the failed row.
		_ = s.store.DeleteObject(ctx, key)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media record")
	}

	dto := NewMediaDTO(created)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, mediaID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if mediaID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}

	row, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "media not found")
	}
	if row.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "media belongs to another user")
	}

	if err := s.store.DeleteObject(ctx, row.GCSKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	return s.repo.Delete(ctx, mediaID)
}

// objectExt picks the stored object extension, preferring the original file
// name when it matches the declared mime type.
func objectExt(fileName, mimeExt string) string {
	ext := strings.ToLower(path.Ext(fileName))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext
	}
	return mimeExt
}
