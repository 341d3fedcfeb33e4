package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"github.com/satvik8373/Rentieo/internal/adapter/api"
	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	apimiddleware "github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
	"github.com/satvik8373/Rentieo/internal/adapter/api/router"
	"github.com/satvik8373/Rentieo/internal/adapter/repository"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/infrastructure/firebase"
	fsstore "github.com/satvik8373/Rentieo/internal/infrastructure/firestore"
	"github.com/satvik8373/Rentieo/internal/infrastructure/memstore"
	"github.com/satvik8373/Rentieo/internal/infrastructure/ratelimit"
	"github.com/satvik8373/Rentieo/internal/infrastructure/storage"
	"github.com/satvik8373/Rentieo/internal/infrastructure/websocket"
	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/config"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.IsDevelopment(), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := clientOptions(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Auth: %v", err)
	}
	identity := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseAPIKey)

	var store service.DocumentStore
	backend := "firestore"
	if cfg.UseMemoryStore() {
		logger.Warn("Using the in-memory document store; data is lost on restart")
		store = memstore.New()
		backend = "memory"
	} else {
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			logger.Fatal("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		store = fsstore.NewStore(firestoreClient)
	}

	var objects service.ObjectStore
	if cfg.StorageBucket == "" {
		logger.Warn("STORAGE_BUCKET not set, uploads are kept in memory")
		objects = storage.NewMemoryStore()
	} else {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		objects = storageClient
	}

	userRepo := repository.NewUserRepository(store)
	listingRepo := repository.NewListingRepository(store)
	chatRepo := repository.NewChatRepository(store)

	rateLimiter := ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		ratelimit.ActionSendMessage: ratelimit.PerMinute(cfg.MessagesPerMinute),
	})
	rateLimiter.StartCleanupRoutine(ctx)

	authUseCase := usecase.NewAuthUseCase(identity, userRepo)
	listingUseCase := usecase.NewListingUseCase(listingRepo, userRepo, objects)
	chatUseCase := usecase.NewChatUseCase(chatRepo, rateLimiter)
	mediaUseCase := usecase.NewMediaUseCase(objects, cfg.UploadFolder, cfg.MaxUploadFiles)

	wsManager := websocket.NewManager(handler.NewLiveFeeds(chatUseCase, listingUseCase, userRepo))
	wsManager.Start(ctx)

	handler.Setup(authUseCase, listingUseCase, chatUseCase, mediaUseCase)
	handler.SetupHealthHandler(backend, wsManager.ConnectedClients)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware, rateLimiter)
	router.SetupWebSocketRouter(e, handler.NewWebSocketHandler(ctx, wsManager, cfg.AllowedOrigins), authMiddleware)

	go func() {
		logger.Info("Starting server on port %s (store: %s)", cfg.ServerPort, backend)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// clientOptions prefers inline service account JSON over a key file. With
// neither set the Google clients fall back to application default
// credentials.
func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}
	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			logger.Fatal("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}
	logger.Info("Using application default credentials")
	return nil
}
