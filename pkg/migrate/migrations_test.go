package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fooddealsberlin/backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestVotesMigrationEnforcesOneVotePerUser(t *testing.T) {
	content := readMigration(t, "*_create_votes_comments.sql")

	checks := []string{
		"CONSTRAINT idx_votes_deal_user UNIQUE (deal_id, user_id)",
		"CHECK (vote_type IN ('up', 'down'))",
		"CHECK (char_length(content) <= 1000)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDealsMigrationIndexesFeedOrderings(t *testing.T) {
	content := readMigration(t, "*_create_deals.sql")

	checks := []string{
		"CREATE INDEX idx_deals_active_created ON deals (is_active, created_at DESC)",
		"CREATE INDEX idx_deals_active_score ON deals (is_active, vote_score DESC)",
		"dietary_tags text[] NOT NULL DEFAULT ARRAY[]::text[]",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
