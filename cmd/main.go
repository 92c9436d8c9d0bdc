package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gomonuka/cafe-management/internal/handler"
	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/internal/router"
	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/internal/ws"
	"github.com/Gomonuka/cafe-management/pkg/database"
	"github.com/Gomonuka/cafe-management/pkg/envconfig"
	"github.com/Gomonuka/cafe-management/pkg/flags"
	"github.com/Gomonuka/cafe-management/pkg/logger"
	"github.com/Gomonuka/cafe-management/pkg/shutdownsetup"
)

func main() {
	flagConfig := flags.Parse()

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting cafe management application",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level,
		"storage", flagConfig.Storage,
		"cart_backend", flagConfig.CartBackend)

	var (
		inventoryRepo repositories.InventoryRepositoryInterface
		menuRepo      repositories.MenuRepositoryInterface
		orderRepo     repositories.OrderRepositoryInterface
	)

	switch flagConfig.Storage {
	case flags.StorageMemory:
		store := repositories.NewMemoryStore(appLogger)
		inventoryRepo = store
		menuRepo = store
		orderRepo = store
		appLogger.Info("Using in-memory storage backend")

	default:
		db, err := database.NewConnection(envconfig.LoadDatabaseConfig(), appLogger)
		if err != nil {
			appLogger.Fatal("Failed to establish database connection", "error", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("Failed to close database connection", "error", err)
			}
		}()

		if err := db.HealthCheck(); err != nil {
			appLogger.Error("Database health check failed", "error", err)
		} else {
			appLogger.Info("Database health check passed")
		}

		inventoryRepo = repositories.NewInventoryRepository(appLogger, db)
		menuRepo = repositories.NewMenuRepository(appLogger, db)
		orderRepo = repositories.NewOrderRepository(appLogger, db)
	}

	var cartStore repositories.CartStoreInterface
	switch flagConfig.CartBackend {
	case flags.CartRedis:
		redisClient := redis.NewClient(envconfig.LoadRedisOptions())
		cartStore = repositories.NewRedisCartStore(appLogger, redisClient, envconfig.LoadCartTTL())
		appLogger.Info("Using redis cart store")
	default:
		cartStore = repositories.NewMemoryCartStore(appLogger)
	}

	hub := ws.NewHub(appLogger)
	go hub.Run()

	menuService := service.NewMenuService(menuRepo, inventoryRepo, appLogger)
	inventoryService := service.NewInventoryService(inventoryRepo, appLogger)
	cartService := service.NewCartService(cartStore, menuService, appLogger)
	orderService := service.NewOrderService(orderRepo, menuService, cartStore, hub,
		envconfig.LoadDoneVisibleFor(), appLogger)
	statsService := service.NewStatsService(orderRepo, appLogger)

	orderHandler := handler.NewOrderHandler(orderService, appLogger)
	menuHandler := handler.NewMenuHandler(menuService, appLogger)
	cartHandler := handler.NewCartHandler(cartService, appLogger)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, appLogger)
	statsHandler := handler.NewStatsHandler(statsService, appLogger)
	boardHandler := handler.NewBoardHandler(hub, appLogger)

	mux := router.NewRouter(orderHandler, menuHandler, cartHandler, inventoryHandler, statsHandler, boardHandler)

	httpHandler := appLogger.HTTPMiddleware(mux)

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum, _ := strconv.Atoi(port)
				port = fmt.Sprintf("%d", portNum+1)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}
