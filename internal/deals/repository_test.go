package deals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/pagination"
)

func TestListFeedExcludesInactiveAndExpired(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	author := mustCreateTestProfile(t, conn)
	fresh := mustCreateTestDeal(t, conn, author.ID, now.Add(-time.Minute), nil)
	_ = mustCreateTestDeal(t, conn, author.ID, now.Add(-2*time.Minute), func(d *models.Deal) {
		d.IsActive = false
	})
	_ = mustCreateTestDeal(t, conn, author.ID, now.Add(-3*time.Minute), func(d *models.Deal) {
		expired := now.Add(-time.Hour)
		d.ExpiresAt = &expired
	})
	future := mustCreateTestDeal(t, conn, author.ID, now.Add(-4*time.Minute), func(d *models.Deal) {
		expires := now.Add(time.Hour)
		d.ExpiresAt = &expires
	})

	page, err := repo.ListFeed(ctx, feedQuery{Sort: SortNewest, Now: now})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, fresh.ID, page.Items[0].ID)
	assert.Equal(t, future.ID, page.Items[1].ID)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Empty(t, page.Pagination.Next)
}

func TestListFeedCursorPaging(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	author := mustCreateTestProfile(t, conn)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		deal := mustCreateTestDeal(t, conn, author.ID, now.Add(-time.Duration(i)*time.Minute), nil)
		ids = append(ids, deal.ID)
	}

	first, err := repo.ListFeed(ctx, feedQuery{
		Pagination: pagination.Params{Limit: 2},
		Sort:       SortNewest,
		Now:        now,
	})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Pagination.Next)
	assert.Equal(t, ids[0], first.Items[0].ID)
	assert.Equal(t, ids[1], first.Items[1].ID)
	assert.Equal(t, 5, first.Pagination.Total)

	second, err := repo.ListFeed(ctx, feedQuery{
		Pagination: pagination.Params{Limit: 2, Cursor: first.Pagination.Next},
		Sort:       SortNewest,
		Now:        now,
	})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, ids[2], second.Items[0].ID)
	assert.Equal(t, ids[3], second.Items[1].ID)

	third, err := repo.ListFeed(ctx, feedQuery{
		Pagination: pagination.Params{Limit: 2, Cursor: second.Pagination.Next},
		Sort:       SortNewest,
		Now:        now,
	})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.Equal(t, ids[4], third.Items[0].ID)
	assert.Empty(t, third.Pagination.Next)
}

func TestListFeedTopSortOrdersByScore(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	author := mustCreateTestProfile(t, conn)
	low := mustCreateTestDeal(t, conn, author.ID, now.Add(-time.Minute), func(d *models.Deal) {
		d.Upvotes, d.Downvotes, d.VoteScore = 3, 2, 1
	})
	high := mustCreateTestDeal(t, conn, author.ID, now.Add(-2*time.Minute), func(d *models.Deal) {
		d.Upvotes, d.VoteScore = 9, 9
	})
	// Same score as low but older; creation time breaks the tie.
	older := mustCreateTestDeal(t, conn, author.ID, now.Add(-3*time.Minute), func(d *models.Deal) {
		d.Upvotes, d.VoteScore = 1, 1
	})

	page, err := repo.ListFeed(ctx, feedQuery{Sort: SortTop, Now: now})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, high.ID, page.Items[0].ID)
	assert.Equal(t, low.ID, page.Items[1].ID)
	assert.Equal(t, older.ID, page.Items[2].ID)
}

func TestListFeedMaxPriceFilter(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	author := mustCreateTestProfile(t, conn)
	cheap := mustCreateTestDeal(t, conn, author.ID, now.Add(-time.Minute), func(d *models.Deal) {
		d.DealPrice = decimal.NewFromFloat(4.90)
	})
	_ = mustCreateTestDeal(t, conn, author.ID, now.Add(-2*time.Minute), func(d *models.Deal) {
		d.DealPrice = decimal.NewFromFloat(18.00)
	})

	maxPrice := decimal.NewFromInt(10)
	page, err := repo.ListFeed(ctx, feedQuery{
		Filters: FeedFilters{MaxPrice: &maxPrice},
		Sort:    SortNewest,
		Now:     now,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, cheap.ID, page.Items[0].ID)
}

func TestFindDetailReturnsAuthor(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	author := mustCreateTestProfile(t, conn)
	deal := mustCreateTestDeal(t, conn, author.ID, now, nil)

	found, profile, err := repo.FindDetail(ctx, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, deal.ID, found.ID)
	assert.Equal(t, author.Username, profile.Username)
}

func TestFindDetailToleratesMissingProfile(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orphanOwner := uuid.New()
	deal := mustCreateTestDeal(t, conn, orphanOwner, time.Now().UTC(), nil)

	found, profile, err := repo.FindDetail(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, deal.ID, found.ID)
	assert.Nil(t, profile)
}

func TestDeactivateRemovesFromFeed(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	author := mustCreateTestProfile(t, conn)
	deal := mustCreateTestDeal(t, conn, author.ID, now, nil)

	require.NoError(t, repo.Deactivate(ctx, deal.ID))

	reloaded, err := repo.FindByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	page, err := repo.ListFeed(ctx, feedQuery{Sort: SortNewest, Now: now})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
