package votes

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	deals := `
CREATE TABLE IF NOT EXISTS deals (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  restaurant_name TEXT NOT NULL,
  address TEXT NOT NULL,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  deal_price NUMERIC NOT NULL,
  original_price NUMERIC,
  discount_percentage INTEGER,
  cuisine_type TEXT NOT NULL,
  deal_type TEXT NOT NULL,
  dietary_tags TEXT NOT NULL DEFAULT '{}',
  image_url TEXT,
  upvotes INTEGER NOT NULL DEFAULT 0,
  downvotes INTEGER NOT NULL DEFAULT 0,
  vote_score INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	votes := `
CREATE TABLE IF NOT EXISTS votes (
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  vote_type TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT idx_votes_deal_user UNIQUE (deal_id, user_id)
);`
	require.NoError(t, conn.Exec(deals).Error)
	require.NoError(t, conn.Exec(votes).Error)
	return conn
}

func mustCreateVotableDeal(t *testing.T, tx *gorm.DB) *models.Deal {
	t.Helper()
	deal := &models.Deal{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Two-for-one pho",
		RestaurantName: "Hanoi Corner",
		Address:        "Kantstrasse 30, 10623 Berlin",
		Latitude:       52.5066,
		Longitude:      13.3162,
		DealPrice:      decimal.NewFromFloat(8.90),
		CuisineType:    enums.CuisineAsian,
		DealType:       enums.DealTypeDaily,
		DietaryTags:    pq.StringArray{},
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tx.Create(deal).Error; err != nil {
		t.Fatalf("create deal: %v", err)
	}
	return deal
}
