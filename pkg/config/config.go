package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "FOODDEALS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	Feed         FeedConfig
	Media        MediaConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Maps         MapsConfig
	Moderation   ModerationConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODDEALS_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODDEALS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FOODDEALS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODDEALS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOODDEALS_DB_DSN"`
	Driver string `envconfig:"FOODDEALS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FOODDEALS_DB_HOST"`
	Port     int    `envconfig:"FOODDEALS_DB_PORT" default:"5432"`
	User     string `envconfig:"FOODDEALS_DB_USER"`
	Password string `envconfig:"FOODDEALS_DB_PASSWORD"`
	Name     string `envconfig:"FOODDEALS_DB_NAME"`
	SSLMode  string `envconfig:"FOODDEALS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODDEALS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODDEALS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODDEALS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODDEALS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("either FOODDEALS_DB_DSN or FOODDEALS_DB_HOST, FOODDEALS_DB_USER, FOODDEALS_DB_NAME are required")
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODDEALS_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"FOODDEALS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODDEALS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODDEALS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODDEALS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODDEALS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"FOODDEALS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"FOODDEALS_JWT_ISSUER" default:"fooddeals-auth"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"FOODDEALS_RATE_LIMIT_RPS" default:"10"`
	Burst             int     `envconfig:"FOODDEALS_RATE_LIMIT_BURST" default:"20"`
}

type FeedConfig struct {
	// DefaultRadiusMeters bounds the nearby query when the client omits one.
	DefaultRadiusMeters int `envconfig:"FOODDEALS_FEED_DEFAULT_RADIUS_METERS" default:"5000"`
	// FallbackLat/FallbackLng anchor deals whose address cannot be geocoded.
	FallbackLat float64 `envconfig:"FOODDEALS_FEED_FALLBACK_LAT" default:"52.5200"`
	FallbackLng float64 `envconfig:"FOODDEALS_FEED_FALLBACK_LNG" default:"13.4050"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"FOODDEALS_MEDIA_MAX_UPLOAD_MB" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FOODDEALS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FOODDEALS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FOODDEALS_GCP_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"FOODDEALS_GCS_BUCKET_NAME"`
	KeyPrefix  string `envconfig:"FOODDEALS_GCS_KEY_PREFIX" default:"deal-images"`
}

type MapsConfig struct {
	APIKey string `envconfig:"FOODDEALS_GOOGLE_MAPS_API_KEY"`
}

type ModerationConfig struct {
	GeminiAPIKey string `envconfig:"FOODDEALS_GEMINI_API_KEY"`
	Model        string `envconfig:"FOODDEALS_GEMINI_MODEL" default:"gemini-2.0-flash"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODDEALS_AUTO_MIGRATE" default:"false"`
	UseSQLite   bool `envconfig:"FOODDEALS_USE_SQLITE" default:"false"`
}
