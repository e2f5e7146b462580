package deals

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB opens a per-test in-memory database. Feed queries that depend on
// postgres-only SQL (array membership, haversine distance) are not exercised
// here.
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
	require.NoError(t, conn.Exec(profiles).Error)
	return conn
}
