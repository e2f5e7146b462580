package votes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
)

// CastOutcome is what one transactional cast produced.
type CastOutcome struct {
	Action    VoteAction
	Direction *enums.VoteDirection
	Upvotes   int
	Downvotes int
	VoteScore int
}

// Repository encapsulates vote persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vote repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Cast applies one user's tap to their standing vote row inside a single
// transaction: a first tap inserts, the same direction retracts (deletes), the
// opposite direction flips. The deal's denormalized counters are recounted
// from the vote rows before commit, so the returned aggregates are authoritative.
func (r *Repository) Cast(ctx context.Context, dealID, userID uuid.UUID, direction enums.VoteDirection) (CastOutcome, error) {
	var outcome CastOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deal models.Deal
		if err := tx.First(&deal, "id = ? AND is_active = ?", dealID, true).Error; err != nil {
			return err
		}

		var existing models.Vote
		err := tx.Where("deal_id = ? AND user_id = ?", dealID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{
				ID:       uuid.New(),
				DealID:   dealID,
				UserID:   userID,
				VoteType: direction,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			outcome.Action = ActionInserted
			outcome.Direction = &direction
		case err != nil:
			return err
		case existing.VoteType == direction:
			if err := tx.Delete(&models.Vote{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			outcome.Action = ActionRetracted
			outcome.Direction = nil
		default:
			if err := tx.Model(&models.Vote{}).
				Where("id = ?", existing.ID).
				Update("vote_type", direction).Error; err != nil {
				return err
			}
			outcome.Action = ActionUpdated
			outcome.Direction = &direction
		}

		up, down, err := r.countVotes(tx, dealID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Deal{}).
			Where("id = ?", dealID).
			Updates(map[string]any{
				"upvotes":    up,
				"downvotes":  down,
				"vote_score": up - down,
			}).Error; err != nil {
			return err
		}

		outcome.Upvotes = up
		outcome.Downvotes = down
		outcome.VoteScore = up - down
		return nil
	})
	if err != nil {
		return CastOutcome{}, err
	}
	return outcome, nil
}

// ListByUser returns the caller's standing votes for the given deals.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, dealIDs []uuid.UUID) ([]models.Vote, error) {
	var rows []models.Vote
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(dealIDs) > 0 {
		query = query.Where("deal_id IN ?", dealIDs)
	}
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) countVotes(tx *gorm.DB, dealID uuid.UUID) (int, int, error) {
	var up, down int64
	if err := tx.Model(&models.Vote{}).
		Where("deal_id = ? AND vote_type = ?", dealID, enums.VoteUp).
		Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err := tx.Model(&models.Vote{}).
		Where("deal_id = ? AND vote_type = ?", dealID, enums.VoteDown).
		Count(&down).Error; err != nil {
		return 0, 0, err
	}
	return int(up), int(down), nil
}
