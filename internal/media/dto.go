package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/db/models"
)

// MediaDTO is the API shape of an uploaded image.
type MediaDTO struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	GCSKey    string    `json:"gcs_key"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMediaDTO maps the persistence model onto the API shape.
func NewMediaDTO(media *models.Media) MediaDTO {
	return MediaDTO{
		ID:        media.ID,
		URL:       media.URL,
		GCSKey:    media.GCSKey,
		FileName:  media.FileName,
		MimeType:  media.MimeType,
		SizeBytes: media.SizeBytes,
		CreatedAt: media.CreatedAt,
	}
}
