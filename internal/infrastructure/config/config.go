package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	// AuthFetchTimeout bounds each auth state refresh.
	AuthFetchTimeout time.Duration `env:"AUTH_FETCH_TIMEOUT, default=10s"`

	Appwrite AppwriteConfig
	Redis    RedisConfig
}

// AppwriteConfig binds the backend client and names its resources. Every id
// is required: a missing one is fatal at startup.
type AppwriteConfig struct {
	Endpoint   string        `env:"APPWRITE_ENDPOINT, required"`
	Platform   string        `env:"APPWRITE_PLATFORM, required"`
	PlatformOS string        `env:"APPWRITE_PLATFORM_OS, default=android"`
	ProjectID  string        `env:"APPWRITE_PROJECT_ID, required"`
	Timeout    time.Duration `env:"APPWRITE_TIMEOUT, default=15s"`
	MaxRetries uint64        `env:"APPWRITE_MAX_RETRIES, default=2"`
	RetryBase  time.Duration `env:"APPWRITE_RETRY_BASE, default=200ms"`

	DatabaseID                     string `env:"APPWRITE_DATABASE_ID, required"`
	UserCollectionID               string `env:"APPWRITE_USER_COLLECTION_ID, required"`
	CategoriesCollectionID         string `env:"APPWRITE_CATEGORIES_COLLECTION_ID, required"`
	MenuCollectionID               string `env:"APPWRITE_MENU_COLLECTION_ID, required"`
	CustomizationsCollectionID     string `env:"APPWRITE_CUSTOMIZATIONS_COLLECTION_ID, required"`
	MenuCustomizationsCollectionID string `env:"APPWRITE_MENU_CUSTOMIZATIONS_COLLECTION_ID, required"`
	BucketID                       string `env:"APPWRITE_BUCKET_ID, required"`
}

type RedisConfig struct {
	Enabled  bool          `env:"CACHE_ENABLED,     default=true"`
	Addr     string        `env:"REDIS_ADDR,        default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,          default=0"`
	TTL      time.Duration `env:"CATALOG_CACHE_TTL, default=5m"`
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the environment, after merging any .env files
// given (missing files are skipped; variables already set win).
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for process startup: any error panics.
func MustLoad(ctx context.Context, envFiles ...string) *Config {
	cfg, err := Load(ctx, envFiles...)
	if err != nil {
		panic(err)
	}
	return cfg
}
