package deals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddealsberlin/backend/internal/realtime"
	"github.com/fooddealsberlin/backend/pkg/config"
	"github.com/fooddealsberlin/backend/pkg/db/models"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/maps"
	"github.com/fooddealsberlin/backend/pkg/moderation"
)

type fakeStats struct {
	recorded []decimal.Decimal
	err      error
}

func (f *fakeStats) RecordDealPosted(_ context.Context, _ uuid.UUID, moneySaved decimal.Decimal) error {
	f.recorded = append(f.recorded, moneySaved)
	return f.err
}

type fakeGeocoder struct {
	result *maps.GeocodeResult
	err    error
}

func (f *fakeGeocoder) Geocode(context.Context, string) (*maps.GeocodeResult, error) {
	return f.result, f.err
}

type fakeChecker struct {
	result moderation.Result
	err    error
}

func (f *fakeChecker) CheckDeal(context.Context, string, string, string) (moderation.Result, error) {
	return f.result, f.err
}

type fakeEvents struct {
	events []realtime.Event
}

func (f *fakeEvents) Publish(event realtime.Event) {
	f.events = append(f.events, event)
}

type serviceFixture struct {
	svc    Service
	stats  *fakeStats
	events *fakeEvents
}

func newTestService(t *testing.T, mutate func(*ServiceParams)) serviceFixture {
	t.Helper()
	conn := openTestDB(t)
	stats := &fakeStats{}
	events := &fakeEvents{}
	params := ServiceParams{
		DealRepo: NewRepository(conn),
		Stats:    stats,
		Events:   events,
		Feed:     config.FeedConfig{FallbackLat: 52.5200, FallbackLng: 13.4050},
	}
	if mutate != nil {
		mutate(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return serviceFixture{svc: svc, stats: stats, events: events}
}

func validCreateInput() CreateDealInput {
	return CreateDealInput{
		Title:          "Schnitzel Tuesday",
		RestaurantName: "Zur Linde",
		Address:        "Karl-Marx-Allee 99, 10243 Berlin",
		DealPrice:      decimal.NewFromFloat(7.50),
		CuisineType:    "german",
		DealType:       "daily_special",
	}
}

func TestCreateDealPriceOrdering(t *testing.T) {
	fx := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("equalPricesRejected", func(t *testing.T) {
		input := validCreateInput()
		price := decimal.NewFromFloat(7.50)
		input.OriginalPrice = &price
		_, err := fx.svc.CreateDeal(ctx, userID, input)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})

	t.Run("centBelowAccepted", func(t *testing.T) {
		input := validCreateInput()
		original := decimal.NewFromFloat(7.51)
		input.OriginalPrice = &original
		created, err := fx.svc.CreateDeal(ctx, userID, input)
		require.NoError(t, err)
		assert.Equal(t, userID, created.UserID)
		require.NotNil(t, created.DiscountPercentage)
	})
}

func TestCreateDealDietaryTags(t *testing.T) {
	fx := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("unknownTagRejected", func(t *testing.T) {
		input := validCreateInput()
		input.DietaryTags = []string{"vegan", "keto"}
		_, err := fx.svc.CreateDeal(ctx, userID, input)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})

	t.Run("canonicalTagsAccepted", func(t *testing.T) {
		input := validCreateInput()
		input.DietaryTags = []string{" vegan ", "halal"}
		created, err := fx.svc.CreateDeal(ctx, userID, input)
		require.NoError(t, err)
		assert.Equal(t, []string{"vegan", "halal"}, created.DietaryTags)
	})

	t.Run("unknownTagRejectedOnUpdate", func(t *testing.T) {
		created, err := fx.svc.CreateDeal(ctx, userID, validCreateInput())
		require.NoError(t, err)

		bad := []string{"paleo"}
		_, err = fx.svc.UpdateDeal(ctx, userID, created.ID, UpdateDealInput{DietaryTags: &bad})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})
}

func TestCreateDealCreditsStats(t *testing.T) {
	fx := newTestService(t, nil)
	ctx := context.Background()

	input := validCreateInput()
	original := decimal.NewFromFloat(12.50)
	input.OriginalPrice = &original

	_, err := fx.svc.CreateDeal(ctx, uuid.New(), input)
	require.NoError(t, err)

	require.Len(t, fx.stats.recorded, 1)
	assert.True(t, fx.stats.recorded[0].Equal(decimal.NewFromFloat(5.00)),
		"expected 5.00 saved, got %s", fx.stats.recorded[0])
}

func TestCreateDealSpamVerdict(t *testing.T) {
	t.Run("spamRejected", func(t *testing.T) {
		fx := newTestService(t, func(p *ServiceParams) {
			p.Moderation = &fakeChecker{result: moderation.Result{IsSpam: true, Reason: "gibberish"}}
		})
		_, err := fx.svc.CreateDeal(context.Background(), uuid.New(), validCreateInput())
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})

	t.Run("checkerFailureFailsOpen", func(t *testing.T) {
		fx := newTestService(t, func(p *ServiceParams) {
			p.Moderation = &fakeChecker{err: errors.New("model unavailable")}
		})
		_, err := fx.svc.CreateDeal(context.Background(), uuid.New(), validCreateInput())
		require.NoError(t, err)
	})
}

func TestCreateDealCoordinateResolution(t *testing.T) {
	lat, lng := 52.4871, 13.4249

	t.Run("geocoderWins", func(t *testing.T) {
		fx := newTestService(t, func(p *ServiceParams) {
			p.Geocoder = &fakeGeocoder{result: &maps.GeocodeResult{
				Location: maps.LatLng{Latitude: 52.5033, Longitude: 13.4247},
			}}
		})
		input := validCreateInput()
		input.Latitude, input.Longitude = &lat, &lng
		created, err := fx.svc.CreateDeal(context.Background(), uuid.New(), input)
		require.NoError(t, err)
		assert.InDelta(t, 52.5033, created.Latitude, 1e-9)
	})

	t.Run("clientCoordinatesOnNoResults", func(t *testing.T) {
		fx := newTestService(t, func(p *ServiceParams) {
			p.Geocoder = &fakeGeocoder{err: maps.ErrNoResults}
		})
		input := validCreateInput()
		input.Latitude, input.Longitude = &lat, &lng
		created, err := fx.svc.CreateDeal(context.Background(), uuid.New(), input)
		require.NoError(t, err)
		assert.InDelta(t, lat, created.Latitude, 1e-9)
		assert.InDelta(t, lng, created.Longitude, 1e-9)
	})

	t.Run("cityCenterFallback", func(t *testing.T) {
		fx := newTestService(t, func(p *ServiceParams) {
			p.Geocoder = &fakeGeocoder{err: errors.New("places down")}
		})
		created, err := fx.svc.CreateDeal(context.Background(), uuid.New(), validCreateInput())
		require.NoError(t, err)
		assert.InDelta(t, 52.5200, created.Latitude, 1e-9)
		assert.InDelta(t, 13.4050, created.Longitude, 1e-9)
	})
}

func TestUpdateDealOwnerOnly(t *testing.T) {
	fx := newTestService(t, nil)
	ctx := context.Background()
	owner := uuid.New()

	created, err := fx.svc.CreateDeal(ctx, owner, validCreateInput())
	require.NoError(t, err)

	title := "Updated Title"
	_, err = fx.svc.UpdateDeal(ctx, uuid.New(), created.ID, UpdateDealInput{Title: &title})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	updated, err := fx.svc.UpdateDeal(ctx, owner, created.ID, UpdateDealInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)
}

func TestDeleteDealSoftDeletes(t *testing.T) {
	fx := newTestService(t, nil)
	ctx := context.Background()
	owner := uuid.New()

	created, err := fx.svc.CreateDeal(ctx, owner, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteDeal(ctx, owner, created.ID))

	_, err = fx.svc.GetDeal(ctx, created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// create + delete
	require.Len(t, fx.events.events, 2)
	assert.Equal(t, "deal_deleted", fx.events.events[1].Type.String())
}

func TestDiscountPercentage(t *testing.T) {
	original := decimal.NewFromInt(10)
	pct := discountPercentage(decimal.NewFromFloat(7.50), &original)
	require.NotNil(t, pct)
	assert.Equal(t, 25, *pct)

	assert.Nil(t, discountPercentage(decimal.NewFromInt(5), nil))
}

func TestMoneySaved(t *testing.T) {
	original := decimal.NewFromInt(10)
	assert.True(t, moneySaved(decimal.NewFromFloat(7.50), &original).Equal(decimal.NewFromFloat(2.50)))
	assert.True(t, moneySaved(decimal.NewFromInt(5), nil).IsZero())
}

func TestGetDealExpiredResolvesNotFound(t *testing.T) {
	conn := openTestDB(t)
	stats := &fakeStats{}
	svc, err := NewService(ServiceParams{DealRepo: NewRepository(conn), Stats: stats})
	require.NoError(t, err)

	author := mustCreateTestProfile(t, conn)
	expired := time.Now().UTC().Add(-time.Hour)
	deal := mustCreateTestDeal(t, conn, author.ID, time.Now().UTC(), func(d *models.Deal) {
		d.ExpiresAt = &expired
	})

	_, err = svc.GetDeal(context.Background(), deal.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
