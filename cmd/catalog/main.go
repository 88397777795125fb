// Command catalog serves the product catalog: CRUD, cached reads, search
// and atomic stock moves.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/storefront/commerce/docs"
	"github.com/storefront/commerce/internal/api"
	"github.com/storefront/commerce/internal/api/handler"
	"github.com/storefront/commerce/internal/core/service"
	"github.com/storefront/commerce/internal/infrastructure/config"
	mongodb "github.com/storefront/commerce/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/commerce/internal/infrastructure/db/redis"
	httpserver "github.com/storefront/commerce/internal/infrastructure/http"
	"github.com/storefront/commerce/internal/infrastructure/http/handlers"
	"github.com/storefront/commerce/internal/infrastructure/search"
	"github.com/storefront/commerce/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "catalog",
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("catalog exited")
	}
	log.Info().Msg("catalog stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()

	products := mongodb.NewProductRepository(db)
	if err := products.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	es, err := search.Connect(ctx, search.Config{URL: cfg.Search.URL, Index: cfg.Search.Index})
	if err != nil {
		return err
	}
	index := search.NewProductIndex(es, cfg.Search.Index)
	if err := index.EnsureIndex(ctx); err != nil {
		return err
	}

	productService := service.NewProductService(products, redisdb.NewProductCache(rdb), index, cfg.Redis.CacheTTL, log)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	e := httpserver.NewRouter(httpserver.Options{
		Service:       "catalog",
		Logger:        log,
		ErrorHandler:  api.NewHTTPErrorHandler(log),
		Validator:     handler.NewValidator(),
		EnableSwagger: cfg.EnableSwagger,
		Dependencies: []handlers.Dependency{
			{Name: "mongodb", Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
			{Name: "elasticsearch", Ping: func(ctx context.Context) error {
				res, err := es.Ping(es.Ping.WithContext(ctx))
				if err != nil {
					return err
				}
				defer res.Body.Close()
				if res.IsError() {
					return fmt.Errorf("elasticsearch ping: %s", res.Status())
				}
				return nil
			}},
		},
	})
	api.Register(e, service.NewAuthorizer(tokens), api.CatalogRoutes(api.CatalogDeps{
		Products: productService,
		Stock:    productService,
	}))

	return httpserver.Run(ctx, e, net.JoinHostPort("", cfg.Port), log)
}
