package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":                                 "secret",
		"APPWRITE_ENDPOINT":                          "https://cloud.appwrite.io/v1",
		"APPWRITE_PLATFORM":                          "com.jsm.foodordering",
		"APPWRITE_PROJECT_ID":                        "proj",
		"APPWRITE_DATABASE_ID":                       "db",
		"APPWRITE_USER_COLLECTION_ID":                "users",
		"APPWRITE_CATEGORIES_COLLECTION_ID":          "categories",
		"APPWRITE_MENU_COLLECTION_ID":                "menu",
		"APPWRITE_CUSTOMIZATIONS_COLLECTION_ID":      "customizations",
		"APPWRITE_MENU_CUSTOMIZATIONS_COLLECTION_ID": "menu_customizations",
		"APPWRITE_BUCKET_ID":                         "assets",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(requiredEnv()))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.AuthFetchTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: ttl=%s fetch=%s", cfg.TokenTTL, cfg.AuthFetchTimeout)
	}
	if cfg.Appwrite.PlatformOS != "android" || cfg.Appwrite.Timeout != 15*time.Second {
		t.Fatalf("unexpected appwrite defaults: %+v", cfg.Appwrite)
	}
	if cfg.Appwrite.MaxRetries != 2 || cfg.Appwrite.RetryBase != 200*time.Millisecond {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Appwrite)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != 5*time.Minute {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Appwrite.MenuCustomizationsCollectionID != "menu_customizations" || cfg.Appwrite.BucketID != "assets" {
		t.Fatalf("ids not loaded: %+v", cfg.Appwrite)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development environment")
	}
}

func TestLoadWith_MissingRequired(t *testing.T) {
	for key := range requiredEnv() {
		t.Run(key, func(t *testing.T) {
			env := requiredEnv()
			delete(env, key)

			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			if err == nil {
				t.Fatalf("expected error when %s is missing", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error to name %s, got %v", key, err)
			}
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	var b strings.Builder
	for k, v := range requiredEnv() {
		if k == "APPWRITE_BUCKET_ID" {
			continue
		}
		t.Setenv(k, v)
	}
	b.WriteString("APPWRITE_BUCKET_ID=from-dotenv\n")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("APPWRITE_BUCKET_ID") })

	cfg, err := Load(context.Background(), path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Appwrite.BucketID != "from-dotenv" {
		t.Fatalf("expected bucket from .env, got %q", cfg.Appwrite.BucketID)
	}
}
