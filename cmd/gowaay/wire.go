package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/middleware"
	appoutbox "gowaay/internal/app/outbox"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/retry"
	authsvc "gowaay/internal/app/services/auth"
	"gowaay/internal/app/uow"
	domainauth "gowaay/internal/domain/auth"
	"gowaay/internal/domain/pricing"
	domainuser "gowaay/internal/domain/user"
	kafkabroker "gowaay/internal/infra/broker/kafka"
	"gowaay/internal/infra/config"
	mongostore "gowaay/internal/infra/db/mongo"
	"gowaay/internal/infra/gateway/sslcommerz"
	ginserver "gowaay/internal/infra/http/gin"
	"gowaay/internal/infra/imageproc"
	"gowaay/internal/infra/obs"
	infraoutbox "gowaay/internal/infra/outbox"
	"gowaay/internal/infra/ratelimit"
	"gowaay/internal/infra/security"
	"gowaay/internal/infra/storage/fallback"
	"gowaay/internal/infra/storage/local"
	"gowaay/internal/infra/storage/memory"
	"gowaay/internal/infra/storage/redisstore"
	s3store "gowaay/internal/infra/storage/s3"
	"gowaay/internal/infra/validation"
)

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	metrics  *obs.Metrics
	auth     *authsvc.Service
	relay    *infraoutbox.Worker
	closers  []func(ctx context.Context) error
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

// persistence is the storage side of the application, Mongo or in-memory.
type persistence struct {
	factory     uow.UoWFactory
	users       domainuser.Repository
	outbox      appoutbox.Outbox
	queue       infraoutbox.Queue
	idempotency middleware.IdempotencyStore
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		metrics: obs.Default(),
		health:  obs.HealthHandlers{Checks: map[string]func(ctx context.Context) error{}},
	}

	store, err := app.buildPersistence(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sessions, limiter := app.buildSessionLayer(cfg, logger)
	app.auth = &authsvc.Service{
		Users:      store.users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{Size: 32},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	adminRule, err := pricing.RuleByName(cfg.AdminRoomRule)
	if err != nil {
		return nil, err
	}
	rules := policies.CommissionRules{HostRoom: pricing.TieredRule{}, AdminRoom: adminRule}

	gateway := sslcommerz.NewClient(sslcommerz.Config{
		StoreID:       cfg.SSLCommerz.StoreID,
		StorePassword: cfg.SSLCommerz.StorePassword,
		Sandbox:       cfg.SSLCommerz.Sandbox,
		ProductName:   "Room booking",
	}.CallbackURLs(cfg.SSLCommerz.FrontendURL, cfg.SSLCommerz.BackendURL), logger, app.metrics)

	images, err := buildImageStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	registerHandlers(commandBus, queryBus, handlerDeps{
		factory:        store.factory,
		outbox:         store.outbox,
		rules:          rules,
		gateway:        gateway,
		gatewayTimeout: cfg.GatewayTimeout,
		images:         images,
		processor:      imageproc.NewProcessor(),
		metrics:        app.metrics,
		logger:         logger,
	})
	logger.Debug("buses ready", "commands", commandBus.Keys(), "queries", queryBus.Keys())

	validator := validation.New()
	commandsWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Instrumentation(logger, app.metrics),
		middleware.Authorization(middleware.RoleAuthorizer{}),
		middleware.Validation(validator),
		middleware.Idempotency(store.idempotency, nil),
		middleware.Transaction(store.factory, nil),
		middleware.OutboxFlush(store.outbox),
	)
	queriesWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryInstrumentation(logger, app.metrics),
		middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
		middleware.QueryValidation(validator),
	)

	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: app.auth, Logger: logger},
		Hosts:          ginserver.HostHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Rooms:          ginserver.RoomHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Bookings:       ginserver.BookingHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Payments:       ginserver.PaymentHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Uploads:        ginserver.UploadHandler{Commands: commandsWithMiddleware, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: app.auth, Logger: logger}.Handle,
		RateLimit:      ginserver.RateLimit(limiter, logger),
		Metrics:        promhttp.Handler(),
		UploadDir:      cfg.UploadDir,
	}

	if len(cfg.KafkaBrokers) > 0 && store.queue != nil {
		producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, "gowaay-api")
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		app.relay = &infraoutbox.Worker{
			Store:       store.queue,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
	} else if len(cfg.KafkaBrokers) > 0 {
		logger.Warn("kafka relay disabled: outbox requires MONGO_URI")
	}
	return app, nil
}

// buildPersistence connects to Mongo when MONGO_URI is set and otherwise keeps
// everything in process memory.
func (a *application) buildPersistence(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence, error) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI not set, using in-memory storage")
		users := memory.NewUserRepository()
		return persistence{
			factory:     memory.NewFactory(users),
			users:       users,
			outbox:      memory.NewOutbox(),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		}, nil
	}

	client, err := retry.Value(ctx, retry.Policy{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2},
		func(ctx context.Context) (*mongostore.Client, error) {
			c, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return nil, err
			}
			if err := c.Ping(ctx); err != nil {
				_ = c.Disconnect(ctx)
				logger.Warn("mongo not reachable yet", "error", err)
				return nil, err
			}
			return c, nil
		})
	if err != nil {
		return persistence{}, fmt.Errorf("mongo connect: %w", err)
	}
	a.closers = append(a.closers, client.Disconnect)
	a.health.Checks["mongo"] = client.Ping

	if err := client.EnsureIndexes(ctx); err != nil {
		return persistence{}, fmt.Errorf("mongo indexes: %w", err)
	}
	transactions := client.SupportsTransactions(ctx)
	if !transactions {
		logger.Warn("mongo deployment has no transactions, writes are not atomic across collections")
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return persistence{}, fmt.Errorf("idempotency store: %w", err)
	}
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return persistence{}, fmt.Errorf("outbox store: %w", err)
	}
	factory := mongostore.NewFactory(client.DB, transactions)
	logger.Info("mongo storage ready", "database", cfg.MongoDB, "transactions", transactions)
	return persistence{
		factory:     factory,
		users:       factory.UsersRepo,
		outbox:      box,
		queue:       box,
		idempotency: idem,
	}, nil
}

// buildSessionLayer keeps sessions and rate-limit counters in Redis when it is
// configured so every replica shares them.
func (a *application) buildSessionLayer(cfg config.Config, logger *slog.Logger) (domainauth.SessionStore, ratelimit.Limiter) {
	if !cfg.Redis.Enabled() {
		return memory.NewSessionStore(), ratelimit.NewLocal(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	client := redisstore.NewClient(redisstore.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.health.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	logger.Info("redis sessions enabled", "addr", cfg.Redis.Addr)
	return redisstore.NewSessionStore(client), redisLimiter(client, cfg.RateLimit)
}

func redisLimiter(client *redis.Client, rl config.RateLimitConfig) ratelimit.Limiter {
	return &ratelimit.Redis{Client: client, Requests: rl.Requests, Window: rl.Window, Prefix: "ratelimit:"}
}

// buildImageStore prefers object storage and keeps local disk as the fallback.
func buildImageStore(cfg config.Config, logger *slog.Logger) (policies.ImageStore, error) {
	disk, err := local.NewStore(cfg.UploadDir, cfg.PublicBaseURL, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.S3.Enabled() {
		return disk, nil
	}
	bucket, err := s3store.NewStore(s3store.Options{
		Endpoint:       cfg.S3.Endpoint,
		PublicEndpoint: cfg.S3.PublicEndpoint,
		AccessKey:      cfg.S3.AccessKey,
		SecretKey:      cfg.S3.SecretKey,
		Bucket:         cfg.S3.Bucket,
		Region:         cfg.S3.Region,
		UseSSL:         cfg.S3.UseSSL,
		Logger:         logger,
	})
	if err != nil {
		logger.Warn("object storage unavailable, storing images on disk", "error", err)
		return disk, nil
	}
	return &fallback.Store{Primary: bucket, Secondary: disk, Logger: logger}, nil
}
