package comments

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength bounds a comment body. Longer bodies are rejected before
// anything is written.
const MaxContentLength = 1000

// CreateCommentInput is the request body for posting a comment.
type CreateCommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CommentDTO is one comment with its author's display data.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	DealID    uuid.UUID `json:"deal_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentsPageDTO is one cursor page of a deal's comment thread, oldest first.
type CommentsPageDTO struct {
	Items []CommentDTO `json:"items"`
	Next  string       `json:"next,omitempty"`
	Total int          `json:"total"`
}
