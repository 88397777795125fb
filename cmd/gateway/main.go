// Command gateway serves the public REST and GraphQL API: authentication,
// users, carts and orders, with product calls forwarded to the catalog.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/storefront/commerce/docs"
	"github.com/storefront/commerce/internal/api"
	"github.com/storefront/commerce/internal/api/gql"
	"github.com/storefront/commerce/internal/api/handler"
	"github.com/storefront/commerce/internal/core/service"
	"github.com/storefront/commerce/internal/infrastructure/catalogclient"
	"github.com/storefront/commerce/internal/infrastructure/config"
	"github.com/storefront/commerce/internal/infrastructure/db/postgres"
	redisdb "github.com/storefront/commerce/internal/infrastructure/db/redis"
	httpserver "github.com/storefront/commerce/internal/infrastructure/http"
	"github.com/storefront/commerce/internal/infrastructure/http/handlers"
	"github.com/storefront/commerce/internal/infrastructure/queue"
	"github.com/storefront/commerce/pkg/logger"
)

// @title        Storefront gateway API
// @version      1.0
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in           header
// @name         Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "gateway",
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("gateway exited")
	}
	log.Info().Msg("gateway stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	publisher := queue.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()
	dispatcher := queue.NewDispatcher(cfg.Kafka.Workers, publisher, log)
	dispatcher.Start()
	defer func() {
		if err := dispatcher.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("event dispatcher did not drain")
		}
	}()

	// --- Core services ---
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	authorizer := service.NewAuthorizer(tokens)
	hasher := service.NewBcryptHasher(0)
	catalog := catalogclient.New(catalogclient.Config{BaseURL: cfg.Catalog.URL, Timeout: cfg.Catalog.Timeout}, tokens)

	users := postgres.NewUserRepository(db)
	authService := service.NewAuthService(users, hasher, tokens, log)
	userService := service.NewUserService(users, hasher, log)
	cartService := service.NewCartService(postgres.NewCartRepository(db), users, catalog, dispatcher, log)
	orderService := service.NewOrderService(
		postgres.NewOrderRepository(db),
		postgres.NewCartRepository(db),
		catalog,
		redisdb.NewIdempotencyStore(rdb),
		dispatcher,
		cfg.Limits.IdempotencyTTL,
		log,
	)

	// --- HTTP ---
	e := httpserver.NewRouter(httpserver.Options{
		Service:       "gateway",
		Logger:        log,
		ErrorHandler:  api.NewHTTPErrorHandler(log),
		Validator:     handler.NewValidator(),
		EnableSwagger: cfg.EnableSwagger,
		Dependencies: []handlers.Dependency{
			{Name: "postgres", Ping: func(ctx context.Context) error { return postgres.Ping(ctx, db) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
			{Name: "catalog", Ping: catalog.Ping},
		},
	})

	deps := api.GatewayDeps{
		Auth:       authService,
		Users:      userService,
		Products:   catalog,
		Carts:      cartService,
		Orders:     orderService,
		LoginRate:  cfg.Limits.LoginRate,
		LoginBurst: cfg.Limits.LoginBurst,
	}
	if cfg.EnableGraphQL {
		schema, err := gql.NewSchema(gql.Deps{
			Authorizer: authorizer,
			Auth:       authService,
			Users:      userService,
			Products:   catalog,
			Carts:      cartService,
			Orders:     orderService,
			Logger:     log,
		})
		if err != nil {
			return err
		}
		deps.GraphQL = gql.NewHandler(schema, log).Serve
	}
	api.Register(e, authorizer, api.GatewayRoutes(deps))

	return httpserver.Run(ctx, e, net.JoinHostPort("", cfg.Port), log)
}
