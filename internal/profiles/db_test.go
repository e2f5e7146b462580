package profiles

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
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
	badges := `
CREATE TABLE IF NOT EXISTS badges (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  icon_name TEXT NOT NULL,
  requirement_type TEXT NOT NULL,
  requirement_value INTEGER NOT NULL,
  created_at DATETIME
);`
	userBadges := `
CREATE TABLE IF NOT EXISTS user_badges (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  badge_id TEXT NOT NULL,
  earned_at DATETIME,
  CONSTRAINT idx_user_badges_user_badge UNIQUE (user_id, badge_id)
);`
	require.NoError(t, conn.Exec(profiles).Error)
	require.NoError(t, conn.Exec(badges).Error)
	require.NoError(t, conn.Exec(userBadges).Error)
	return conn
}

func mustCreateBadge(t *testing.T, tx *gorm.DB, requirement enums.BadgeRequirement, threshold int) *models.Badge {
	t.Helper()
	badge := &models.Badge{
		ID:               uuid.New(),
		Name:             fmt.Sprintf("badge_%s", uuid.NewString()[:8]),
		IconName:         "trophy",
		RequirementType:  requirement,
		RequirementValue: threshold,
	}
	if err := tx.Create(badge).Error; err != nil {
		t.Fatalf("create badge: %v", err)
	}
	return badge
}
