package comments

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/pagination"
)

// Repository encapsulates comment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a comment repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the comment row.
func (r *Repository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// FindByID loads one comment.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes the comment row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}

type commentRecord struct {
	ID        uuid.UUID      `gorm:"column:id"`
	DealID    uuid.UUID      `gorm:"column:deal_id"`
	UserID    uuid.UUID      `gorm:"column:user_id"`
	Username  sql.NullString `gorm:"column:username"`
	AvatarURL sql.NullString `gorm:"column:avatar_url"`
	Content   string         `gorm:"column:content"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

// ListByDeal returns one page of a deal's thread, oldest first, with author
// display data joined in. Authors without a profile row still show up.
func (r *Repository) ListByDeal(ctx context.Context, dealID uuid.UUID, cursor string, limit int) (CommentsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return CommentsPageDTO{}, err
	}

	query := r.db.WithContext(ctx).
		Table("comments c").
		Select("c.id, c.deal_id, c.user_id, p.username, p.avatar_url, c.content, c.created_at").
		Joins("LEFT JOIN profiles p ON p.id = c.user_id").
		Where("c.deal_id = ?", dealID)

	if decodedCursor != nil {
		query = query.Where(
			"((c.created_at > ?) OR (c.created_at = ? AND c.id > ?))",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var records []commentRecord
	if err := query.Order("c.created_at ASC").Order("c.id ASC").
		Limit(limitWithBuffer).Scan(&records).Error; err != nil {
		return CommentsPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("deal_id = ?", dealID).
		Count(&total).Error; err != nil {
		return CommentsPageDTO{}, err
	}

	items := make([]CommentDTO, 0, len(resultRows))
	for _, record := range resultRows {
		item := CommentDTO{
			ID:        record.ID,
			DealID:    record.DealID,
			UserID:    record.UserID,
			Content:   record.Content,
			CreatedAt: record.CreatedAt,
		}
		if record.Username.Valid {
			item.Username = record.Username.String
		}
		if record.AvatarURL.Valid {
			avatar := record.AvatarURL.String
			item.AvatarURL = &avatar
		}
		items = append(items, item)
	}

	return CommentsPageDTO{Items: items, Next: nextCursor, Total: int(total)}, nil
}
