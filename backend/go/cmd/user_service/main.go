package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/api"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/service"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/store"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/ginmiddleware"
	httpserver "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/http"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// user_service runs only the account endpoints, for deployments that split
// authentication from the legal assistant.
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration")
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("user_service", "", "")

	db, err := database.Open(&cfg.Databases)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer database.Close(db)

	userStore := store.NewStore(db)
	if err := userStore.Migrate(); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("database migration completed")

	userService := service.NewService(userStore, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL, cfg.Auth.RefreshTokenTTL)

	chain, err := ginmiddleware.FromConfig(cfg.Middleware, nil, appLogger)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	router := gin.New()
	router.Use(chain...)
	api.RegisterRoutes(router.Group("/api"), api.NewHandler(userService))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := httpserver.NewServer(cfg.Server, router, appLogger).Run(ctx); err != nil {
		appLogger.Fatal(err.Error())
	}
}
