package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"petadopt/internal/adapter/api"
	"petadopt/internal/adapter/api/handler"
	apimiddleware "petadopt/internal/adapter/api/middleware"
	"petadopt/internal/adapter/api/router"
	"petadopt/internal/adapter/repository"
	"petadopt/internal/adapter/repository/memory"
	"petadopt/internal/domain/entity"
	domainrepo "petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
	"petadopt/internal/infrastructure/cache"
	"petadopt/internal/infrastructure/firebase"
	"petadopt/internal/infrastructure/ratelimit"
	"petadopt/internal/infrastructure/storage"
	"petadopt/internal/infrastructure/websocket"
	"petadopt/internal/usecase"
	"petadopt/pkg/config"
	"petadopt/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users      domainrepo.UserRepository
	animals    domainrepo.AnimalRepository
	watchlists domainrepo.WatchlistRepository
	chats      domainrepo.ChatRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	switch {
	case cfg.FirebaseServiceAccountJSON != "":
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)))
	case cfg.FirebaseServiceAccountPath != "":
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
	default:
		log.Printf("Using application default credentials")
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}
	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	var repos repositories
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Printf("Using in-memory document store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{store.Users(), store.Animals(), store.Watchlists(), store.Chats()}
	case config.StoreDriverFirestore:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		repos = repositories{
			users:      repository.NewFirestoreUserRepository(firestoreClient),
			animals:    repository.NewFirestoreAnimalRepository(firestoreClient),
			watchlists: repository.NewFirestoreWatchlistRepository(firestoreClient),
			chats:      repository.NewFirestoreChatRepository(firestoreClient),
		}
	default:
		log.Fatalf("Unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	var caches service.CacheProvider
	switch cfg.CacheDriver {
	case config.CacheDriverRedis:
		caches, err = cache.NewRedisProvider(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.CachePrefix,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	case config.CacheDriverMemory:
		caches = cache.NewMemoryProvider(cfg.CachePrefix)
	default:
		log.Fatalf("Unknown CACHE_DRIVER %q", cfg.CacheDriver)
	}
	defer caches.Close()

	var media service.MediaUploadService
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		media = storageClient
	} else {
		log.Printf("STORAGE_BUCKET not set; media uploads are disabled")
	}

	notifier := firebase.NewNoopNotifier()
	if cfg.PushNotifications {
		messagingClient, err := firebaseApp.Messaging(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
		}
		notifier = firebase.NewMessagingNotifier(messagingClient)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter(int(cfg.ChatRatePerMinute))
	rateLimiter.StartCleanupRoutine(ctx)

	catalogSync := usecase.NewCatalogSynchronizer(repos.animals, func(animals []*entity.Animal) {
		wsManager.PublishToAll(service.EventCatalogUpdate, map[string]int{"count": len(animals)})
	})
	if err := catalogSync.Start(ctx); err != nil {
		log.Fatalf("Failed to subscribe to the animal catalog: %v", err)
	}
	defer catalogSync.Stop()

	sessionUseCase := usecase.NewSessionUseCase(repos.users, firebaseAuthClient, caches, wsManager)
	catalogUseCase := usecase.NewCatalogUseCase(repos.animals, catalogSync, sessionUseCase, media)
	watchlistUseCase := usecase.NewWatchlistUseCase(repos.watchlists, catalogSync, wsManager)
	chatUseCase := usecase.NewChatUseCase(repos.chats, repos.users, sessionUseCase, rateLimiter, notifier, wsManager)
	sessionUseCase.OnLogout(watchlistUseCase.Release, chatUseCase.Release)

	handlers := handler.Setup(handler.Dependencies{
		Session:        sessionUseCase,
		Catalog:        catalogUseCase,
		CatalogState:   catalogSync,
		Watchlist:      watchlistUseCase,
		Chat:           chatUseCase,
		Media:          media,
		Verifier:       firebaseAuthClient,
		WSManager:      wsManager,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	router.Setup(e, handlers, apimiddleware.NewAuthMiddleware(firebaseAuthClient), rateLimiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on port %s (%s, store=%s, cache=%s)...", cfg.ServerPort, cfg.Environment, cfg.StoreDriver, cfg.CacheDriver)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Printf("Shutting down server...")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
