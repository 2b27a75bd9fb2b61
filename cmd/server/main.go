// @title        Food Ordering API
// @version      1.0
// @description  Headless food-ordering client core: sessions, auth state and menu over an Appwrite backend.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsmfood/food-ordering/internal/api"
	"github.com/jsmfood/food-ordering/internal/api/handler"
	"github.com/jsmfood/food-ordering/internal/app"
	"github.com/jsmfood/food-ordering/internal/core/authstore"
	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
	"github.com/jsmfood/food-ordering/internal/core/service"
	"github.com/jsmfood/food-ordering/internal/infrastructure/appwrite"
	"github.com/jsmfood/food-ordering/internal/infrastructure/config"
	redisdb "github.com/jsmfood/food-ordering/internal/infrastructure/db/redis"
	"github.com/jsmfood/food-ordering/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx, ".env")

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "food-ordering",
		Env:     cfg.Env,
	})

	client, err := appwrite.New(appwrite.Config{
		Endpoint:   cfg.Appwrite.Endpoint,
		ProjectID:  cfg.Appwrite.ProjectID,
		Platform:   cfg.Appwrite.Platform,
		PlatformOS: cfg.Appwrite.PlatformOS,
		Timeout:    cfg.Appwrite.Timeout,
		MaxRetries: cfg.Appwrite.MaxRetries,
		RetryBase:  cfg.Appwrite.RetryBase,
	}, logger.Component("appwrite"))
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}
	gw := client.Gateway()

	// The catalog cache is optional: without Redis every listing hits the backend.
	var cache ports.CatalogCache
	checks := map[string]handler.Check{}
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, catalog cache disabled")
		} else {
			defer rdb.Close()
			cache = redisdb.NewCatalogCache(rdb)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	cols := service.Collections{
		DatabaseID:             cfg.Appwrite.DatabaseID,
		UserCollectionID:       cfg.Appwrite.UserCollectionID,
		CategoriesCollectionID: cfg.Appwrite.CategoriesCollectionID,
		MenuCollectionID:       cfg.Appwrite.MenuCollectionID,
		BucketID:               cfg.Appwrite.BucketID,
	}
	sessions := service.NewSessionService(gw, cols, logger.Component("session"))
	menu := service.NewMenuService(gw, cols, cache, cfg.Redis.TTL, logger.Component("menu"))
	store := authstore.New(sessions,
		authstore.WithFetchTimeout(cfg.AuthFetchTimeout),
		authstore.WithLogger(logger.Component("authstore")),
	)

	var gate app.Gate
	e := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Menu:      menu,
		Store:     store,
		Gate:      &gate,
		Checks:    checks,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Log:       logger.Component("http"),
	})
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return app.Preload(gctx, &gate, logger.Component("startup"),
			app.Task{Name: "categories", Run: func(ctx context.Context) error {
				_, err := menu.GetCategories(ctx)
				return err
			}},
			app.Task{Name: "menu", Run: func(ctx context.Context) error {
				_, err := menu.GetMenu(ctx, domain.MenuQuery{})
				return err
			}},
			app.Task{Name: "auth", Run: func(ctx context.Context) error {
				store.FetchAuthenticatedUser(ctx)
				return nil
			}},
		)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
