package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shop-service/internal/api/http"
	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/cache"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/observability"
	"github.com/spec-kit/shop-service/internal/persistence"
	"github.com/spec-kit/shop-service/internal/repository"
	"github.com/spec-kit/shop-service/internal/repository/memory"
	"github.com/spec-kit/shop-service/internal/service"
	"github.com/spec-kit/shop-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users      repository.UserRepository
	accounts   repository.AccountRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	profiles   repository.ProfileRepository
	posts      repository.PostRepository
	transactor repository.Transactor
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos repositories
	var storeCheck handlers.Dependency
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pool := pg.PoolHandle()
		repos = repositories{
			users:      repository.NewUserRepository(pool),
			accounts:   repository.NewAccountRepository(pool),
			products:   repository.NewProductRepository(pool),
			orders:     repository.NewOrderRepository(pool),
			profiles:   repository.NewProfileRepository(pool),
			posts:      repository.NewPostRepository(pool),
			transactor: repository.NewTransactor(pool),
		}
		storeCheck = handlers.Dependency{Name: "postgres", Check: pg}
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users:      store.Users(),
			accounts:   store.Accounts(),
			products:   store.Products(),
			orders:     store.Orders(),
			profiles:   store.Profiles(),
			posts:      store.Posts(),
			transactor: store,
		}
		storeCheck = handlers.Dependency{Name: "memory", Check: store}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var idempotency service.IdempotencyStore
	if redis.Available() {
		idempotency = cache.NewRedisIdempotencyStore(redis.Client, cfg.Idempotency.TTL())
	} else {
		logger.Warn("redis unavailable, Idempotency-Key headers are ignored")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, metrics))

	var publisher *events.KafkaPublisher
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka, logger), logger)
		worker.StartEventPublisher(dispatcher, publisher, logger)
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    repos.users,
		AccountRepo: repos.accounts,
		Transactor:  repos.transactor,
	})
	ledgerService := service.NewLedgerService(service.LedgerDependencies{
		AccountRepo: repos.accounts,
		Transactor:  repos.transactor,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{ProductRepo: repos.products})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   repos.orders,
		ProductRepo: repos.products,
		UserRepo:    repos.users,
		Transactor:  repos.transactor,
		Dispatcher:  dispatcher,
		Idempotency: idempotency,
		Logger:      logger,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{ProfileRepo: repos.profiles})
	postService := service.NewPostService(service.PostDependencies{
		PostRepo:    repos.posts,
		ProfileRepo: repos.profiles,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			storeCheck,
			handlers.Dependency{Name: "redis", Check: redis, Optional: true},
		),
		Auth:           handlers.NewAuthHandler(authService),
		Products:       handlers.NewProductsHandler(catalogService),
		Account:        handlers.NewAccountHandler(ledgerService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Profiles:       handlers.NewProfilesHandler(profileService),
		Posts:          handlers.NewPostsHandler(postService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
