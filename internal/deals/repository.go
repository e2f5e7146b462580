package deals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/pagination"
)

// haversineExpr computes meters between a deal row and a query point. The
// placeholders bind as (lat, lat, lng). Postgres only; sqlite lacks the trig
// functions.
const haversineExpr = `(12742000 * asin(sqrt(
	pow(sin(radians((latitude - ?) / 2)), 2) +
	cos(radians(?)) * cos(radians(latitude)) *
	pow(sin(radians((longitude - ?) / 2)), 2))))`

// Repository encapsulates deal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a deal repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the deal row.
func (r *Repository) Create(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// FindByID loads one deal regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// FindDetail loads a deal together with its author profile. A missing profile
// row is tolerated; the author comes back nil.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Deal, *models.Profile, error) {
	deal, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var profile models.Profile
	err = r.db.WithContext(ctx).First(&profile, "id = ?", deal.UserID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return deal, nil, nil
		}
		return nil, nil, err
	}
	return deal, &profile, nil
}

// Update persists the full deal row.
func (r *Repository) Update(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Save(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// Deactivate flips the active flag off; the row stays for history.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", id).
		Update("is_active", false).
		Error
}

// feedQuery bundles the inputs of one feed page read.
type feedQuery struct {
	Pagination pagination.Params
	Filters    FeedFilters
	Sort       FeedSort
	Now        time.Time
}

// ListFeed returns one cursor page of active, unexpired deals.
func (r *Repository) ListFeed(ctx context.Context, query feedQuery) (FeedPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	cursorValue := strings.TrimSpace(query.Pagination.Cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return FeedPageDTO{}, err
	}

	base := r.feedBase(ctx, query.Filters, query.Now)

	dataQuery := base.Session(&gorm.Session{})
	switch query.Sort {
	case SortTop:
		if decodedCursor != nil && decodedCursor.Score != nil {
			dataQuery = dataQuery.Where(
				"((vote_score < ?) OR (vote_score = ? AND created_at < ?) OR (vote_score = ? AND created_at = ? AND id < ?))",
				*decodedCursor.Score,
				*decodedCursor.Score, decodedCursor.CreatedAt,
				*decodedCursor.Score, decodedCursor.CreatedAt, decodedCursor.ID,
			)
		}
		dataQuery = dataQuery.Order("vote_score DESC").Order("created_at DESC").Order("id DESC")
	default:
		if decodedCursor != nil {
			dataQuery = dataQuery.Where(
				"((created_at < ?) OR (created_at = ? AND id < ?))",
				decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
			)
		}
		dataQuery = dataQuery.Order("created_at DESC").Order("id DESC")
	}

	var rows []models.Deal
	if err := dataQuery.Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return FeedPageDTO{}, err
	}

	resultRows := rows
	nextCursor := ""
	if len(rows) > normalizedLimit {
		resultRows = rows[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		cursor := pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		if query.Sort == SortTop {
			score := last.VoteScore
			cursor.Score = &score
		}
		nextCursor = pagination.EncodeCursor(cursor)
	}

	var total int64
	if err := r.feedBase(ctx, query.Filters, query.Now).Count(&total).Error; err != nil {
		return FeedPageDTO{}, err
	}

	items := make([]DealDTO, 0, len(resultRows))
	for i := range resultRows {
		items = append(items, NewDealDTO(&resultRows[i]))
	}

	return FeedPageDTO{
		Items: items,
		Pagination: FeedPagination{
			Total:   int(total),
			Current: cursorValue,
			Next:    nextCursor,
		},
	}, nil
}

func (r *Repository) feedBase(ctx context.Context, filters FeedFilters, now time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("is_active = ?", true).
		Where("(expires_at IS NULL OR expires_at >= ?)", now)

	if filters.MaxPrice != nil {
		query = query.Where("deal_price <= ?", *filters.MaxPrice)
	}
	if len(filters.Cuisines) > 0 {
		query = query.Where("cuisine_type IN ?", filters.Cuisines)
	}
	if len(filters.DealTypes) > 0 {
		query = query.Where("deal_type IN ?", filters.DealTypes)
	}
	for _, tag := range filters.DietaryTags {
		query = query.Where("? = ANY(dietary_tags)", tag)
	}
	if near := filters.Near; near != nil {
		query = query.Where(haversineExpr+" <= ?",
			near.Latitude, near.Latitude, near.Longitude, near.RadiusMeters)
	}
	return query
}
