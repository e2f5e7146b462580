package comments

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
	comments := `
CREATE TABLE IF NOT EXISTS comments (
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	profiles := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  avatar_url TEXT,
  language_preference TEXT NOT NULL DEFAULT 'en',
  level INTEGER NOT NULL DEFAULT 1,
  xp_points INTEGER NOT NULL DEFAULT 0,
  total_deals_posted INTEGER NOT NULL DEFAULT 0,
  total_money_saved NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(deals).Error)
	require.NoError(t, conn.Exec(comments).Error)
	require.NoError(t, conn.Exec(profiles).Error)
	return conn
}

func mustCreateThreadDeal(t *testing.T, tx *gorm.DB) *models.Deal {
	t.Helper()
	deal := &models.Deal{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Falafel plate happy hour",
		RestaurantName: "Maroush",
		Address:        "Adalbertstrasse 93, 10999 Berlin",
		Latitude:       52.4996,
		Longitude:      13.4183,
		DealPrice:      decimal.NewFromFloat(6.00),
		CuisineType:    enums.CuisineOther,
		DealType:       enums.DealTypeHappyHour,
		DietaryTags:    pq.StringArray{"vegetarian"},
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tx.Create(deal).Error; err != nil {
		t.Fatalf("create deal: %v", err)
	}
	return deal
}

func mustCreateCommenter(t *testing.T, tx *gorm.DB) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:       uuid.New(),
		Username: fmt.Sprintf("commenter_%s", uuid.NewString()[:8]),
	}
	if err := tx.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}
