package deals

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
)

func mustCreateTestProfile(t *testing.T, tx *gorm.DB) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:                 uuid.New(),
		Username:           fmt.Sprintf("tester_%s", uuid.NewString()[:8]),
		Level:              2,
		XPPoints:           150,
		LanguagePreference: enums.LanguageEnglish,
	}
	if err := tx.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func mustCreateTestDeal(t *testing.T, tx *gorm.DB, userID uuid.UUID, createdAt time.Time, mutate func(*models.Deal)) *models.Deal {
	t.Helper()
	deal := &models.Deal{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          "Half-price lunch plates",
		RestaurantName: "Imbiss am Kanal",
		Address:        "Kottbusser Damm 1, 10967 Berlin",
		Latitude:       52.4935,
		Longitude:      13.4180,
		DealPrice:      decimal.NewFromFloat(5.50),
		CuisineType:    enums.CuisineDoner,
		DealType:       enums.DealTypeLunch,
		DietaryTags:    pq.StringArray{},
		IsActive:       true,
	}
	if mutate != nil {
		mutate(deal)
	}
	if err := tx.Create(deal).Error; err != nil {
		t.Fatalf("create deal: %v", err)
	}
	// sqlite keeps the autoCreateTime value; steer it explicitly so ordering
	// assertions are deterministic.
	if err := tx.Model(&models.Deal{}).Where("id = ?", deal.ID).
		Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("set created_at: %v", err)
	}
	deal.CreatedAt = createdAt
	return deal
}
