package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fooddealsberlin/backend/api/controllers"
	"github.com/fooddealsberlin/backend/api/middleware"
	"github.com/fooddealsberlin/backend/internal/comments"
	"github.com/fooddealsberlin/backend/internal/deals"
	"github.com/fooddealsberlin/backend/internal/media"
	"github.com/fooddealsberlin/backend/internal/profiles"
	"github.com/fooddealsberlin/backend/internal/realtime"
	"github.com/fooddealsberlin/backend/internal/votes"
	"github.com/fooddealsberlin/backend/pkg/config"
	"github.com/fooddealsberlin/backend/pkg/db"
	"github.com/fooddealsberlin/backend/pkg/logger"
	"github.com/fooddealsberlin/backend/pkg/metrics"
	"github.com/fooddealsberlin/backend/pkg/redis"
	"github.com/fooddealsberlin/backend/pkg/storage/gcs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	GCS      gcs.Pinger
	Registry *prometheus.Registry

	Hub      *realtime.Hub
	Deals    deals.Service
	Votes    votes.Service
	Comments comments.Service
	Profiles profiles.Service
	Media    media.Service
	Geocoder controllers.AddressGeocoder

	Idempotency redis.IdempotencyStore
	RateLimiter middleware.FixedWindowLimiter
}

// NewRouter assembles the API surface: public feed reads, authenticated
// writes, the websocket event stream, and the health/metrics endpoints.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.GCS))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public reads. OptionalAuth lets signed-in callers carry identity
		// without blocking anonymous browsing.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Use(middleware.RateLimit(cfg.RateLimit, logg))

			r.Get("/deals", controllers.DealFeed(deps.Deals, logg))
			r.Get("/deals/{dealId}", controllers.DealDetail(deps.Deals, logg))
			r.Get("/deals/{dealId}/comments", controllers.CommentList(deps.Comments, logg))
			r.Get("/profiles/{profileId}", controllers.ProfilePublic(deps.Profiles, logg))
			r.Get("/geocode", controllers.GeocodeAddress(deps.Geocoder, logg))
			r.Get("/geocode/autocomplete", controllers.GeocodeAutocomplete(deps.Geocoder, logg))
		})

		r.Get("/deals/ws", realtime.ServeWS(deps.Hub, logg))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.AccountRateLimit(cfg.RateLimit, deps.RateLimiter, logg))
			r.Use(middleware.Idempotency(deps.Idempotency, logg))

			r.Post("/deals", controllers.DealCreate(deps.Deals, logg))
			r.Patch("/deals/{dealId}", controllers.DealUpdate(deps.Deals, logg))
			r.Delete("/deals/{dealId}", controllers.DealDelete(deps.Deals, logg))

			r.Put("/deals/{dealId}/vote", controllers.VoteCast(deps.Votes, logg))
			r.Get("/votes", controllers.VoteList(deps.Votes, logg))

			r.Post("/deals/{dealId}/comments", controllers.CommentCreate(deps.Comments, logg))
			r.Delete("/comments/{commentId}", controllers.CommentDelete(deps.Comments, logg))

			r.Route("/profiles/me", func(r chi.Router) {
				r.Get("/", controllers.ProfileMe(deps.Profiles, logg))
				r.Patch("/", controllers.ProfileUpdateMe(deps.Profiles, logg))
				r.Get("/badges", controllers.ProfileBadges(deps.Profiles, logg))
			})

			r.Post("/media", controllers.MediaUpload(deps.Media, logg))
			r.Delete("/media/{mediaId}", controllers.MediaDelete(deps.Media, logg))
		})
	})

	return r
}
