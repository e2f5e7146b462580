package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/fooddealsberlin/backend/api/controllers"
	"github.com/fooddealsberlin/backend/api/routes"
	"github.com/fooddealsberlin/backend/internal/comments"
	"github.com/fooddealsberlin/backend/internal/deals"
	"github.com/fooddealsberlin/backend/internal/media"
	"github.com/fooddealsberlin/backend/internal/profiles"
	"github.com/fooddealsberlin/backend/internal/realtime"
	"github.com/fooddealsberlin/backend/internal/votes"
	"github.com/fooddealsberlin/backend/pkg/config"
	"github.com/fooddealsberlin/backend/pkg/db"
	"github.com/fooddealsberlin/backend/pkg/logger"
	"github.com/fooddealsberlin/backend/pkg/maps"
	"github.com/fooddealsberlin/backend/pkg/metrics"
	"github.com/fooddealsberlin/backend/pkg/migrate"
	"github.com/fooddealsberlin/backend/pkg/moderation"
	"github.com/fooddealsberlin/backend/pkg/redis"
	"github.com/fooddealsberlin/backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (runErr error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		runErr = multierr.Append(runErr, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		runErr = multierr.Append(runErr, redisClient.Close())
	}()

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return err
		}
		defer func() {
			runErr = multierr.Append(runErr, gcsClient.Close())
		}()
	} else {
		logg.Warn(ctx, "media uploads disabled: no gcs bucket configured")
	}

	var mapsClient *maps.Client
	if cfg.Maps.APIKey != "" {
		mapsClient, err = maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
	} else {
		logg.Warn(ctx, "geocoding disabled: no google maps api key configured")
	}

	moderationChecker, err := moderation.NewChecker(ctx, cfg.Moderation, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(registry)

	hub := realtime.NewHub(logg, apiMetrics)

	gormDB := dbClient.DB()

	profileService, err := profiles.NewService(profiles.ServiceParams{
		ProfileRepo: profiles.NewRepository(gormDB),
		Logger:      logg,
	})
	if err != nil {
		return err
	}

	var dealGeocoder deals.Geocoder
	if mapsClient != nil {
		dealGeocoder = mapsClient
	}

	dealRepo := deals.NewRepository(gormDB)
	dealService, err := deals.NewService(deals.ServiceParams{
		DealRepo:   dealRepo,
		Stats:      profileService,
		Geocoder:   dealGeocoder,
		Moderation: moderationChecker,
		Events:     hub,
		Metrics:    apiMetrics,
		Logger:     logg,
		Feed:       cfg.Feed,
	})
	if err != nil {
		return err
	}

	voteService, err := votes.NewService(votes.ServiceParams{
		VoteRepo: votes.NewRepository(gormDB),
		Events:   hub,
		Metrics:  apiMetrics,
	})
	if err != nil {
		return err
	}

	commentService, err := comments.NewService(comments.ServiceParams{
		CommentRepo: comments.NewRepository(gormDB),
		Deals:       dealRepo,
		Events:      hub,
		Metrics:     apiMetrics,
	})
	if err != nil {
		return err
	}

	var mediaService media.Service
	if gcsClient != nil {
		mediaService, err = media.NewService(media.NewRepository(gormDB), gcsClient)
		if err != nil {
			return err
		}
	}

	var geocoder controllers.AddressGeocoder
	if mapsClient != nil {
		geocoder = mapsClient
	}

	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		GCS:         gcsPinger,
		Registry:    registry,
		Hub:         hub,
		Deals:       dealService,
		Votes:       voteService,
		Comments:    commentService,
		Profiles:    profileService,
		Media:       mediaService,
		Geocoder:    geocoder,
		Idempotency: redisClient,
		RateLimiter: redisClient,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(startCtx, "starting api server")

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		hub.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logg.Info(ctx, "api server stopped")
	return err
}
