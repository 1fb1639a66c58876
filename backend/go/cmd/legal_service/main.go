package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database"
	kafkadb "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/kafka"
	miniodb "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/minio"
	qdrantdb "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/qdrant"
	redisdb "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/redis"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/embedding"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/api"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/publisher"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/loaders"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/pipeline"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/splitters"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/storages/vectorstore"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/service"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/storage"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/store"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/llm"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	userapi "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/api"
	userservice "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/service"
	userstore "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/store"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/ginmiddleware"
	httpserver "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/http"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New(cfg.App.Name, "", "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) error {
	db, err := database.Open(&cfg.Databases)
	if err != nil {
		return err
	}
	defer database.Close(db)

	users := userstore.NewStore(db)
	legal := store.New(db)
	if err := users.Migrate(); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := legal.Migrate(); err != nil {
		return fmt.Errorf("migrate legal store: %w", err)
	}
	appLogger.Info("database migration completed")

	userService := userservice.NewService(users, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL, cfg.Auth.RefreshTokenTTL)
	if err := ensureAdmin(ctx, userService, appLogger); err != nil {
		return err
	}

	embedder, err := embedding.NewFromConfig(ctx, cfg.Embedding)
	if err != nil {
		return fmt.Errorf("create embedding model: %w", err)
	}
	index, err := vectorstore.New(ctx, cfg, embedder, appLogger)
	if err != nil {
		return fmt.Errorf("open vector index: %w", err)
	}

	model, selection, err := selectModel(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	blobs, err := newBlobStorage(ctx, cfg)
	if err != nil {
		return err
	}
	pub, closePub, err := newPublisher(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closePub()

	if key := os.Getenv("UNIDOC_LICENSE_API_KEY"); key != "" {
		if err := loaders.SetOfficeLicense(key); err != nil {
			appLogger.WithError(models.NewErrorInfo("config_error", err)).Warn("unidoc license rejected, .docx uploads may fail")
		}
	}

	engine := pipeline.NewEngine(index, model, cfg.RAG.TopK, appLogger)
	ingester := pipeline.NewIndexingPipeline(
		loaders.NewRegistry(),
		splitters.NewFixedSplitter(cfg.RAG.ChunkSize, cfg.RAG.MinChunkLen),
		index,
		appLogger,
	)
	legalService := service.New(service.Deps{
		Store:     legal,
		Engine:    engine,
		Ingester:  ingester,
		Index:     index,
		Blobs:     blobs,
		Publisher: pub,
		Selection: selection,
	}, service.Options{
		AnswerTimeout: cfg.RAG.AnswerTimeout,
		IngestTimeout: cfg.RAG.IngestTimeout,
	}, appLogger)

	router, err := newRouter(ctx, cfg, appLogger, userService, legalService)
	if err != nil {
		return err
	}
	defer redisdb.Close()
	defer qdrantdb.Close()
	return httpserver.NewServer(cfg.Server, router, appLogger).Run(ctx)
}

func newRouter(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger, users *userservice.Service, legal *service.Service) (*gin.Engine, error) {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var rdb *redis.Client
	if cfg.Middleware.RateLimiter.Enabled && cfg.Middleware.RateLimiter.Algorithm == "redisFixedWindow" {
		var err error
		if rdb, err = redisdb.GetClient(ctx, &cfg.Databases.Redis); err != nil {
			return nil, err
		}
	}
	chain, err := ginmiddleware.FromConfig(cfg.Middleware, rdb, appLogger)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(chain...)

	handler := api.NewHandler(legal, cfg.Server.MaxUploadBytes, appLogger)
	group := router.Group("/api")
	userapi.RegisterRoutes(group, userapi.NewHandler(users))
	api.RegisterRoutes(group, handler, userapi.AuthMiddleware(users), userapi.AdminOnly())
	api.RegisterHealth(router, handler)
	return router, nil
}

// selectModel picks the generation model once for the whole process.
func selectModel(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) (llm.LLM, llm.Selection, error) {
	factory, err := llm.NewFactory(cfg.LLM)
	if err != nil {
		return nil, llm.Selection{}, err
	}
	model, selection, err := llm.Select(ctx, cfg.LLM.Models(), factory, cfg.LLM.SkipProbe)
	if err != nil {
		return nil, selection, err
	}
	appLogger.WithPayload(map[string]interface{}{
		"model":    selection.Model,
		"fallback": selection.Fallback,
		"skipped":  selection.Skipped,
		"reasons":  selection.Reasons,
	}).Info("generation model selected")

	if cfg.Middleware.CircuitBreaker.Enabled {
		breaker, err := ginmiddleware.NewBreaker(cfg.Middleware.CircuitBreaker, appLogger, "llm")
		if err != nil {
			return nil, selection, err
		}
		model = llm.WithBreaker(model, breaker)
	}
	return model, selection, nil
}

func newBlobStorage(ctx context.Context, cfg *config.AppConfig) (storage.BlobStorage, error) {
	if cfg.Storage.Provider == "minio" {
		client, err := miniodb.GetClient(ctx, &cfg.Databases.MinIO)
		if err != nil {
			return nil, err
		}
		return storage.NewMinIO(client, cfg.Databases.MinIO.Bucket), nil
	}
	return storage.NewLocal(cfg.Storage.LocalDir)
}

func newPublisher(cfg *config.AppConfig, appLogger *logger.Logger) (publisher.Publisher, func(), error) {
	if len(cfg.Databases.Kafka.Brokers) == 0 {
		appLogger.Info("no Kafka brokers configured, document events are not published")
		return publisher.Noop{}, func() {}, nil
	}
	kc, err := kafkadb.GetClient(&cfg.Databases.Kafka)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := kc.Close(); err != nil {
			appLogger.Warn(err.Error())
		}
	}
	return publisher.NewKafka(kc.Writer), closeFn, nil
}

// ensureAdmin creates the bootstrap admin from ADMIN_USERNAME, ADMIN_EMAIL and
// ADMIN_PASSWORD when they are set. Public registration only creates citizens.
func ensureAdmin(ctx context.Context, users *userservice.Service, appLogger *logger.Logger) error {
	username, password := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}
	if _, err := users.EnsureAdmin(ctx, username, os.Getenv("ADMIN_EMAIL"), password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	appLogger.Info("admin account " + username + " is ready")
	return nil
}
